package summarizer

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker open")

type CircuitState string

const (
	StateClosed   CircuitState = "closed"
	StateOpen     CircuitState = "open"
	StateHalfOpen CircuitState = "half-open"
)

// CircuitBreaker stops calling the summarization API after repeated failures
// and lets a single probe through once the cooldown has passed.
type CircuitBreaker struct {
	mu           sync.Mutex
	state        CircuitState
	failureCount int
	openedAt     time.Time
	probing      bool

	failureThreshold int
	cooldown         time.Duration
	now              func() time.Time
	log              *zap.Logger
}

func NewCircuitBreaker(failureThreshold int, cooldown time.Duration) *CircuitBreaker {
	if failureThreshold < 1 {
		failureThreshold = 3
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &CircuitBreaker{
		state:            StateClosed,
		failureThreshold: failureThreshold,
		cooldown:         cooldown,
		now:              time.Now,
		log:              zap.L().Named("breaker"),
	}
}

// Call runs fn unless the circuit is open. Calls whose ctx was cancelled or
// timed out are not counted for or against the service.
func (cb *CircuitBreaker) Call(ctx context.Context, fn func() error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}
	err := fn()
	if ctx.Err() != nil {
		cb.release()
		return err
	}
	cb.afterRequest(err)
	return err
}

// release frees a half-open probe slot without recording a result.
func (cb *CircuitBreaker) release() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.probing = false
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.cooldown {
			return ErrCircuitOpen
		}
		cb.setState(StateHalfOpen)
		cb.probing = true
		return nil
	case StateHalfOpen:
		// one probe at a time
		if cb.probing {
			return ErrCircuitOpen
		}
		cb.probing = true
		return nil
	default:
		return nil
	}
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.probing = false
	if err != nil {
		cb.failureCount++
		if cb.state == StateHalfOpen || cb.failureCount >= cb.failureThreshold {
			cb.openedAt = cb.now()
			cb.setState(StateOpen)
		}
		return
	}
	cb.failureCount = 0
	if cb.state != StateClosed {
		cb.setState(StateClosed)
	}
}

func (cb *CircuitBreaker) setState(next CircuitState) {
	if cb.state != next {
		cb.log.Warn("circuit breaker state change",
			zap.String("from", string(cb.state)),
			zap.String("to", string(next)),
			zap.Int("failures", cb.failureCount))
	}
	cb.state = next
}

func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

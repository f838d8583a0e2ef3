package summarizer

import (
	"context"
	"errors"
	"time"

	"geo-news/internal/config"

	"go.uber.org/zap"
)

// Summarizer condenses article text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// ErrEmptyText is returned for blank input.
var ErrEmptyText = errors.New("empty text")

// Fallback tries Primary and falls back to Secondary when it fails.
type Fallback struct {
	Primary   Summarizer
	Secondary Summarizer
	log       *zap.Logger
}

func NewFallback(primary, secondary Summarizer) *Fallback {
	return &Fallback{Primary: primary, Secondary: secondary, log: zap.L().Named("summarizer")}
}

// Summarize never fails: when both summarizers fail the returned summary is
// the error text prefixed with "Error: ".
func (f *Fallback) Summarize(ctx context.Context, text string) (string, error) {
	summary, err := f.Primary.Summarize(ctx, text)
	if err == nil {
		return summary, nil
	}
	f.log.Warn("primary summarizer failed, using fallback", zap.Error(err))

	if f.Secondary == nil {
		return "Error: " + err.Error(), nil
	}
	summary, err2 := f.Secondary.Summarize(ctx, text)
	if err2 != nil {
		f.log.Error("fallback summarizer failed", zap.Error(err2))
		return "Error: " + err.Error(), nil
	}
	return summary, nil
}

// New builds the summarizer the server runs with. Without an API URL only the
// local extractive summarizer is used.
func New(cfg config.SummarizerConfig) Summarizer {
	extractive := NewExtractive(cfg.FallbackSentences)
	if cfg.APIURL == "" {
		return NewFallback(extractive, nil)
	}
	breaker := NewCircuitBreaker(cfg.BreakerFailures, time.Duration(cfg.BreakerCooldown)*time.Second)
	return NewFallback(NewHuggingFace(cfg, breaker), extractive)
}

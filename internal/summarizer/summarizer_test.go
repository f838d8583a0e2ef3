package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"geo-news/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSummarizer struct {
	summary string
	err     error
	calls   int
}

func (s *stubSummarizer) Summarize(context.Context, string) (string, error) {
	s.calls++
	return s.summary, s.err
}

func hfConfig(url string) config.SummarizerConfig {
	return config.SummarizerConfig{
		APIURL:            url,
		APIToken:          "hf_test",
		MaxInputChars:     20,
		MaxLength:         500,
		MinLength:         30,
		TimeoutSeconds:    5,
		BreakerFailures:   2,
		BreakerCooldown:   60,
		FallbackSentences: 2,
	}
}

func TestHuggingFace_Request(t *testing.T) {
	var got hfRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`[{"summary_text":"Short summary."}]`))
	}))
	defer srv.Close()

	h := NewHuggingFace(hfConfig(srv.URL), nil)
	summary, err := h.Summarize(context.Background(), strings.Repeat("a", 50))
	require.NoError(t, err)
	assert.Equal(t, "Short summary.", summary)

	assert.Equal(t, strings.Repeat("a", 20), got.Inputs)
	assert.Equal(t, 500, got.Parameters.MaxLength)
	assert.Equal(t, 30, got.Parameters.MinLength)
	assert.False(t, got.Parameters.DoSample)
	assert.True(t, got.Options.UseCache)
	assert.True(t, got.Options.WaitForModel)
}

func TestHuggingFace_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Model is loading"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	h := NewHuggingFace(hfConfig(srv.URL), nil)
	_, err := h.Summarize(context.Background(), "Some text.")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "Model is loading")
}

func TestHuggingFace_EmptyText(t *testing.T) {
	h := NewHuggingFace(hfConfig("http://127.0.0.1:0"), nil)
	_, err := h.Summarize(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestHuggingFace_BreakerOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	h := NewHuggingFace(hfConfig(srv.URL), NewCircuitBreaker(2, time.Minute))
	for i := 0; i < 2; i++ {
		_, err := h.Summarize(context.Background(), "Some text.")
		require.Error(t, err)
	}
	_, err := h.Summarize(context.Background(), "Some text.")
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), hits.Load())
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker(1, time.Minute)
	cb.now = func() time.Time { return now }

	fail := errors.New("boom")
	assert.Equal(t, fail, cb.Call(context.Background(), func() error { return fail }))
	assert.Equal(t, StateOpen, cb.State())
	assert.ErrorIs(t, cb.Call(context.Background(), func() error { return nil }), ErrCircuitOpen)

	now = now.Add(2 * time.Minute)
	assert.NoError(t, cb.Call(context.Background(), func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker(1, time.Minute)
	cb.now = func() time.Time { return now }

	fail := errors.New("boom")
	cb.Call(context.Background(), func() error { return fail })
	now = now.Add(2 * time.Minute)
	cb.Call(context.Background(), func() error { return fail })
	assert.Equal(t, StateOpen, cb.State())
	assert.ErrorIs(t, cb.Call(context.Background(), func() error { return nil }), ErrCircuitOpen)
}

func TestCircuitBreaker_CancelledCallsAreNotFailures(t *testing.T) {
	cb := NewCircuitBreaker(1, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 3; i++ {
		err := cb.Call(ctx, func() error { return ctx.Err() })
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, StateClosed, cb.State())
	assert.NoError(t, cb.Call(context.Background(), func() error { return nil }))
}

func TestCircuitBreaker_CancelledProbeFreesSlot(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker(1, time.Minute)
	cb.now = func() time.Time { return now }
	cb.Call(context.Background(), func() error { return errors.New("boom") })
	now = now.Add(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cb.Call(ctx, func() error { return ctx.Err() })
	assert.Equal(t, StateHalfOpen, cb.State())

	assert.NoError(t, cb.Call(context.Background(), func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestHuggingFace_ClientDisconnectDoesNotOpenBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	breaker := NewCircuitBreaker(1, time.Minute)
	h := NewHuggingFace(hfConfig(srv.URL), breaker)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := h.Summarize(ctx, "Some text.")
	require.Error(t, err)
	assert.Equal(t, StateClosed, breaker.State())
}

func TestFallback(t *testing.T) {
	ctx := context.Background()

	primary := &stubSummarizer{summary: "from model"}
	secondary := &stubSummarizer{summary: "from text"}
	s, err := NewFallback(primary, secondary).Summarize(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "from model", s)
	assert.Equal(t, 0, secondary.calls)

	primary.err = errors.New("API request failed with status code 500")
	s, err = NewFallback(primary, secondary).Summarize(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "from text", s)

	secondary.err = errors.New("also broken")
	s, err = NewFallback(primary, secondary).Summarize(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "Error: API request failed with status code 500", s)

	s, err = NewFallback(primary, nil).Summarize(ctx, "x")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s, "Error: "))
}

func TestNew_WithoutAPIUsesExtractive(t *testing.T) {
	cfg := hfConfig("")
	s := New(cfg)
	f, ok := s.(*Fallback)
	require.True(t, ok)
	assert.IsType(t, &Extractive{}, f.Primary)
	assert.Nil(t, f.Secondary)

	s = New(hfConfig("http://hf.local/model"))
	f = s.(*Fallback)
	assert.IsType(t, &HuggingFace{}, f.Primary)
	assert.IsType(t, &Extractive{}, f.Secondary)
}

func TestExtractive(t *testing.T) {
	text := "The city council approved the new transport budget on Monday evening. " +
		"Council members said the transport budget would fund new buses across the city. " +
		"It rained. " +
		"The transport budget also covers road repairs in the old city centre districts. " +
		"Critics argued the council ignored cycling lanes in the approved budget plan."

	e := NewExtractive(2)
	summary, err := e.Summarize(context.Background(), text)
	require.NoError(t, err)
	assert.NotContains(t, summary, "It rained.")

	first := strings.Index(text, strings.SplitN(summary, ". ", 2)[0])
	assert.GreaterOrEqual(t, first, 0, "summary sentences come from the text")
}

func TestExtractive_ShortSentencesFallBackToLead(t *testing.T) {
	got := summarizeText("One. Two. Three.", 2)
	assert.Equal(t, "One. Two.", got)
}

func TestExtractive_NoPunctuation(t *testing.T) {
	long := strings.Repeat("word ", 200)
	got := summarizeText(long, 3)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, 503, len([]rune(got)))

	_, err := NewExtractive(3).Summarize(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestJaccardSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, jaccardSimilarity("a b c", "C B A"))
	assert.Equal(t, 0.0, jaccardSimilarity("one two", "three four"))
	assert.Equal(t, 0.0, jaccardSimilarity("", ""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "ab", truncate("abc", 2))
	// é is two bytes; never cut inside it
	assert.Equal(t, "a", truncate("aé", 2))
}

package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"geo-news/internal/config"
)

type hfParameters struct {
	MaxLength int  `json:"max_length"`
	MinLength int  `json:"min_length"`
	DoSample  bool `json:"do_sample"`
}

type hfOptions struct {
	UseCache     bool `json:"use_cache"`
	WaitForModel bool `json:"wait_for_model"`
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
	Options    hfOptions    `json:"options"`
}

type hfSummary struct {
	SummaryText string `json:"summary_text"`
}

// HuggingFace calls a hosted summarization model through the inference API.
type HuggingFace struct {
	cfg     config.SummarizerConfig
	client  *http.Client
	breaker *CircuitBreaker
}

func NewHuggingFace(cfg config.SummarizerConfig, breaker *CircuitBreaker) *HuggingFace {
	return &HuggingFace{
		cfg:     cfg,
		client:  &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		breaker: breaker,
	}
}

func (h *HuggingFace) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	var summary string
	call := func() error {
		s, err := h.request(ctx, text)
		summary = s
		return err
	}
	if h.breaker == nil {
		return summary, call()
	}
	if err := h.breaker.Call(ctx, call); err != nil {
		return "", err
	}
	return summary, nil
}

func (h *HuggingFace) request(ctx context.Context, text string) (string, error) {
	if h.cfg.MaxInputChars > 0 && len(text) > h.cfg.MaxInputChars {
		text = truncate(text, h.cfg.MaxInputChars)
	}
	payload := hfRequest{
		Inputs:     text,
		Parameters: hfParameters{MaxLength: h.cfg.MaxLength, MinLength: h.cfg.MinLength},
		Options:    hfOptions{UseCache: true, WaitForModel: true},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+h.cfg.APIToken)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("summarization request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status code %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var out []hfSummary
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("invalid summarization response: %w", err)
	}
	if len(out) == 0 {
		return "", fmt.Errorf("summarization response was empty")
	}
	return out[0].SummaryText, nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	for n > 0 && n < len(s) && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

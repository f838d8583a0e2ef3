package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type ScrapeRequest struct {
	URL string `json:"url"`
}

type ScrapeResponse struct {
	Message     string   `json:"message"`
	ScrapedURLs []string `json:"scraped_urls"`
}

type FetchRequest struct {
	URL string `json:"url"`
}

type FetchResponse struct {
	Title     string `json:"title"`
	Date      string `json:"date"`
	Text      string `json:"text"`
	ImagePath string `json:"image_path,omitempty"`
	Error     string `json:"error,omitempty"`
}

type SummarizeRequest struct {
	Text string `json:"text"`
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// Client posts JSON to the news backend. Status codes are not inspected:
// every body is decoded as JSON and a body that does not decode is an error.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// NewClient returns a client for the backend at baseURL. A nil httpClient
// means http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     zap.L().Named("dispatcher.client"),
	}
}

// Scrape posts to /scrape.
func (c *Client) Scrape(ctx context.Context, req ScrapeRequest) (*ScrapeResponse, error) {
	var out ScrapeResponse
	if err := c.post(ctx, "/scrape", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Fetch posts to /fetch. An error field in the body is not an error here.
func (c *Client) Fetch(ctx context.Context, req FetchRequest) (*FetchResponse, error) {
	var out FetchResponse
	if err := c.post(ctx, "/fetch", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Summarize posts to /summarize.
func (c *Client) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	var out SummarizeResponse
	if err := c.post(ctx, "/summarize", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("response", zap.String("path", path), zap.Int("status", resp.StatusCode))
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

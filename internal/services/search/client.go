package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storyreel/internal/match"
)

const defaultHTTPTimeout = 30 * time.Second

// Config captures the runtime settings required to talk to the service.
type Config struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
}

// Client queries a remote search index.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a search client. The base URL is required.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("search: base url required")
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			BaseURL:        baseURL,
			APIKey:         strings.TrimSpace(cfg.APIKey),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type searchRequest struct {
	Query       string `json:"query"`
	Limit       int    `json:"limit"`
	Granularity string `json:"granularity"`
	Project     string `json:"project,omitempty"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
	Error   string         `json:"error,omitempty"`
}

type searchResult struct {
	VideoPath        string   `json:"video_path"`
	TimestampStart   float64  `json:"timestamp_start"`
	TimestampEnd     float64  `json:"timestamp_end"`
	FrameDescription string   `json:"frame_description"`
	Transcript       string   `json:"transcript"`
	Score            float64  `json:"score"`
	People           []string `json:"people,omitempty"`
	Location         string   `json:"location,omitempty"`
}

// Search queries the remote index. Implements match.Searcher.
func (c *Client) Search(ctx context.Context, query string, limit int, granularity match.Granularity, project string) ([]match.Hit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	encoded, err := json.Marshal(searchRequest{
		Query:       query,
		Limit:       limit,
		Granularity: string(granularity),
		Project:     project,
	})
	if err != nil {
		return nil, fmt.Errorf("search request: encode body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/search", bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("search request: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("search request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("search request: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("search request: decode response: %w", err)
	}
	if decoded.Error != "" {
		return nil, fmt.Errorf("search request: service error: %s", decoded.Error)
	}

	hits := make([]match.Hit, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		hits = append(hits, match.Hit{
			VideoPath:   r.VideoPath,
			Start:       r.TimestampStart,
			End:         r.TimestampEnd,
			Description: r.FrameDescription,
			Transcript:  r.Transcript,
			Score:       r.Score,
			People:      r.People,
			Location:    r.Location,
		})
	}
	return hits, nil
}

// HealthCheck verifies the service is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("search health: new request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("search health: http error: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("search health: http %d", resp.StatusCode)
	}
	return nil
}

var _ match.Searcher = (*Client)(nil)

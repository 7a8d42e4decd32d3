// Package api implements the classified fetch client for the upstream API.
//
// This package contains:
//   - Client: HTTP transport with credentials, health tracking and metrics
//   - Fetch: the orchestrator turning one request/response cycle into a Result
//   - the closed FetchError taxonomy and its transport classifier
//   - request/response envelopes, pagination helpers and schema validation
//   - ShouldRetry and Retry for caller-side retry loops
//   - Displayer, which turns fetch errors into user-facing messages
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// TokenSource supplies the bearer credential attached to outgoing requests.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// Config holds the transport settings of a Client.
type Config struct {
	BaseURL  string
	HostName string
	Timeout  time.Duration
}

// HealthStatus represents the observed health of the upstream API.
type HealthStatus struct {
	Available     bool          `json:"available"`
	Latency       time.Duration `json:"latency"`
	ErrorRate     float64       `json:"error_rate"`
	LastSuccessAt time.Time     `json:"last_success_at"`
	LastFailureAt time.Time     `json:"last_failure_at"`
}

// Client sends requests to the upstream API.
type Client struct {
	baseURL    string
	hostName   string
	httpClient *http.Client
	tokens     TokenSource
	log        *slog.Logger

	mu           sync.RWMutex
	health       HealthStatus
	totalLatency time.Duration
	successCount int
	failureCount int
	requestCount int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenSource sets the credential provider consulted on every request.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a new API client.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		baseURL:  cfg.BaseURL,
		hostName: cfg.HostName,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		log: slog.Default(),
		health: HealthStatus{
			Available:     true,
			LastSuccessAt: time.Now(),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HostName is the host name sent in request envelopes.
func (c *Client) HostName() string {
	return c.hostName
}

// GetHealth returns the health observed from recent fetches.
func (c *Client) GetHealth() HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.health
}

// Close cleans up idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// send performs one HTTP exchange. A non-2xx response is returned as an
// *HTTPError whose body the caller must close; otherwise the body is read and
// returned.
func (c *Client) send(
	ctx context.Context,
	method, url string,
	body any,
	header http.Header,
) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if token, ok := c.tokens.Token(ctx); ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newHTTPError(resp)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

func (c *Client) resolveURL(baseURL, path string) string {
	if baseURL == "" {
		baseURL = c.baseURL
	}
	if baseURL == "" {
		return path
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) recordSuccess(latency time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.successCount++
	c.requestCount++
	c.totalLatency += latency
	c.health.LastSuccessAt = time.Now()
	c.health.Available = true

	c.health.ErrorRate = float64(c.failureCount) / float64(c.requestCount)
	c.health.Latency = c.totalLatency / time.Duration(c.successCount)
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failureCount++
	c.requestCount++
	c.health.LastFailureAt = time.Now()

	c.health.ErrorRate = float64(c.failureCount) / float64(c.requestCount)
	if c.health.ErrorRate > 0.5 {
		c.health.Available = false
	}
}

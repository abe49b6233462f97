// Package client provides the public Go SDK for the crime analytics API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// SessionHeader carries the chat session id in both directions.
const SessionHeader = "X-Session-ID"

// Client is the public SDK client for the crime analytics API. It remembers
// the chat session id the server hands out so follow-up questions share
// conversational memory.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu        sync.Mutex
	sessionID string
}

// ClientConfig holds client configuration.
type ClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	SessionID string
}

// NewClient creates a new crime analytics client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:5000"
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		sessionID:  cfg.SessionID,
	}, nil
}

// SessionID returns the current chat session id, if any.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Envelope is a chat answer. Data is left raw because its shape depends on
// Type.
type Envelope struct {
	Type    string          `json:"type"`
	Title   string          `json:"title,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Summary string          `json:"summary,omitempty"`
	Insight string          `json:"insight,omitempty"`
	Source  string          `json:"source,omitempty"`
}

// IsError reports whether the server could not answer the question.
func (e *Envelope) IsError() bool {
	return e.Type == "error"
}

// ChatRequest is one chat question.
type ChatRequest struct {
	Message string `json:"message"`
	Insight *bool  `json:"insight,omitempty"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("crime analytics api: %d %s: %s", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("crime analytics api: %d %s", e.StatusCode, e.Message)
}

// Chat asks one question.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*Envelope, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	var env Envelope
	if err := c.do(ctx, http.MethodPost, "/chat", bytes.NewReader(body), &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// Cities lists the cities of a year, or of every year for "all".
func (c *Client) Cities(ctx context.Context, year string) ([]string, error) {
	var resp struct {
		Cities []string `json:"cities"`
	}
	path := "/api/cities"
	if year != "" {
		path += "?year=" + url.QueryEscape(year)
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Cities, nil
}

// YearTrend returns total arrests per loaded year.
func (c *Client) YearTrend(ctx context.Context) (map[string]int64, error) {
	var trend map[string]int64
	if err := c.do(ctx, http.MethodGet, "/api/year-trend", nil, &trend); err != nil {
		return nil, err
	}
	return trend, nil
}

// Health checks if the service is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := c.SessionID(); id != "" {
		req.Header.Set(SessionHeader, id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if id := resp.Header.Get(SessionHeader); id != "" {
		c.mu.Lock()
		c.sessionID = id
		c.mu.Unlock()
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// Package base provides the shared HTTP transport for both wiki API dialects.
package base

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/olgasafonova/wikibridge/metrics"
)

const (
	// DefaultTimeout for API requests
	DefaultTimeout = 30 * time.Second

	// MaxConcurrentRequests limits parallel API calls. History translation
	// fans out per-revision sub-fetches; the semaphore keeps that fan-out
	// from overwhelming the server.
	MaxConcurrentRequests = 5
)

// Client issues single HTTP requests with bounded concurrency. It performs
// no retries and no response caching: failures surface to the caller at the
// point of first detection.
type Client struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
	UserAgent  string
	Semaphore  chan struct{}
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.HTTPClient = c
	}
}

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) ClientOption {
	return func(client *Client) {
		client.Logger = l
	}
}

// WithUserAgent sets the User-Agent header for all requests
func WithUserAgent(ua string) ClientOption {
	return func(client *Client) {
		client.UserAgent = ua
	}
}

// WithTimeout replaces the HTTP client timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(client *Client) {
		client.HTTPClient.Timeout = d
	}
}

// NewClient creates a new transport with default settings
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		HTTPClient: newHTTPClient(DefaultTimeout),
		Logger:     slog.Default(),
		UserAgent:  "wikibridge/1.0",
		Semaphore:  make(chan struct{}, MaxConcurrentRequests),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Request describes a single API request.
type Request struct {
	// Method defaults to GET.
	Method string

	// URL is the fully built request URL, query string included.
	URL string

	// Form, when non-nil, is sent urlencoded as the request body and
	// forces Content-Type: application/x-www-form-urlencoded.
	Form url.Values

	// JSON, when non-nil, is marshaled as the request body and forces
	// Content-Type: application/json. Mutually exclusive with Form.
	JSON interface{}

	// Authorization, when set, is attached verbatim (e.g. "Bearer x").
	Authorization string
}

// Do performs one HTTP request and returns the response body and status
// code. The caller handles response parsing and error classification.
func (c *Client) Do(ctx context.Context, r Request) ([]byte, int, error) {
	select {
	case c.Semaphore <- struct{}{}:
		defer func() { <-c.Semaphore }()
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("context canceled while waiting for request slot: %w", ctx.Err())
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	switch {
	case r.Form != nil:
		body = strings.NewReader(r.Form.Encode())
	case r.JSON != nil:
		encoded, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.URL, body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)
	switch {
	case r.Form != nil:
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	case r.JSON != nil:
		req.Header.Set("Content-Type", "application/json")
	}
	if r.Authorization != "" {
		req.Header.Set("Authorization", r.Authorization)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		metrics.HTTPRequestsTotal.WithLabelValues(method, "transport_error").Inc()
		c.Logger.Warn("API request failed",
			"method", method,
			"url", r.URL,
			"error", err)
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}

	respBody, err := readAndClose(resp)
	metrics.HTTPRequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	return respBody, resp.StatusCode, nil
}

// readAndClose reads the response body and closes it
func readAndClose(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return body, err
}

// newHTTPClient creates an HTTP client with optimized transport settings
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       120 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		DisableCompression:    false,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

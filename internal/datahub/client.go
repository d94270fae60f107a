// Package datahub is a small client for the DataHub GMS API.
// It covers the three calls the impact analysis makes: a Rest.li entity
// search, an aspect fetch, and a GraphQL query.
package datahub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultTimeout applies to each HTTP request when none is configured.
	DefaultTimeout = 30 * time.Second

	// maxBodySize limits how much of a response is read.
	maxBodySize = 64 << 20
)

// Options configures a Client.
type Options struct {
	// Server is the GMS base URL, e.g. https://acme.acryl.io/gms.
	Server string
	// Token is sent as a bearer token when set.
	Token string
	// Timeout for each request (default DefaultTimeout).
	Timeout time.Duration
	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// HTTPClient replaces the default client; Timeout is ignored when set.
	HTTPClient *http.Client
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Client talks to a DataHub GMS server.
type Client struct {
	server    string
	token     string
	userAgent string
	http      *http.Client
	logger    *slog.Logger
}

// APIError is a non-2xx response from GMS.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, body)
}

// NewClient creates a GMS client.
func NewClient(opts Options) (*Client, error) {
	server := strings.TrimRight(strings.TrimSpace(opts.Server), "/")
	if server == "" {
		return nil, fmt.Errorf("datahub server is required")
	}
	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		return nil, fmt.Errorf("datahub server %q must start with http:// or https://", server)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "leapimpact"
	}

	return &Client{
		server:    server,
		token:     opts.Token,
		userAgent: userAgent,
		http:      httpClient,
		logger:    logger,
	}, nil
}

// Server returns the normalized GMS base URL.
func (c *Client) Server() string {
	return c.server
}

// do sends a request and returns the response body.
// A nil body sends no payload; otherwise it is encoded as JSON.
// Responses with status 404 are returned as *APIError like other failures.
func (c *Client) do(ctx context.Context, method, path string, body any, headers map[string]string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	url := c.server + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("datahub request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Method: method, URL: url, StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

// Package api is the client for the mataroo backend REST API. Every call
// obtains a bearer token from the session before touching the network.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	apperrors "github.com/mataroo/mataroo/internal/shared/errors"
	"github.com/mataroo/mataroo/internal/shared/logger"
)

const requestIDHeader = "X-Request-ID"

// Client is the backend API client.
type Client struct {
	baseURL    string
	tokens     oauth2.TokenSource
	httpClient *http.Client
	// verifyClient has no timeout; payment verification is bounded only by
	// the caller's context.
	verifyClient *http.Client
	logger       logger.Interface
}

// Option is a function that configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the HTTP client timeout for every call except payment
// verification.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

// NewClient creates a new backend API client.
//
// Parameters:
//   - baseURL: The API base URL (e.g., "http://localhost:8000")
//   - tokens: Supplies the session access token for the Authorization header
func NewClient(baseURL string, tokens oauth2.TokenSource, log logger.Interface, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	untimed := *c.httpClient
	untimed.Timeout = 0
	c.verifyClient = &untimed
	return c
}

// errorBody is the backend's error payload. detail is a string for handled
// errors and a list of objects for request validation failures.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

func (b errorBody) message() string {
	if len(b.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(b.Detail, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(b.Detail, &items); err == nil && len(items) > 0 {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			msgs = append(msgs, it.Msg)
		}
		return strings.Join(msgs, "; ")
	}
	return string(b.Detail)
}

// bearer returns the access token or an unauthenticated error. No request is
// built when this fails.
func (c *Client) bearer() (string, error) {
	if c.tokens == nil {
		return "", apperrors.NewUnauthenticatedError()
	}
	tok, err := c.tokens.Token()
	if err != nil {
		if apperrors.IsUnauthenticated(err) {
			return "", err
		}
		return "", apperrors.NewUnauthenticatedError(err.Error())
	}
	if !tok.Valid() {
		return "", apperrors.NewUnauthenticatedError()
	}
	return tok.AccessToken, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, result any) error {
	return c.do(ctx, c.httpClient, method, path, body, result)
}

// do performs an authenticated request and decodes a 2xx JSON body into result.
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body any, result any) error {
	token, err := c.bearer()
	if err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.logger.Warnw("backend request failed",
			"method", method,
			"path", path,
			"request_id", requestID,
			"error", err,
		)
		return apperrors.NewUpstreamError(0, "Network error, please try again", err.Error()).WithCause(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewUpstreamError(resp.StatusCode, "Failed to read response", err.Error()).WithCause(err)
	}

	c.logger.Debugw("backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"latency", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(respBody, &eb)
		return statusError(resp.StatusCode, eb.message())
	}

	if result == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return apperrors.NewUpstreamError(resp.StatusCode, "Unexpected response from server", err.Error()).WithCause(err)
	}
	return nil
}

// statusError maps a non-2xx answer into the error taxonomy. detail, when
// present, is kept verbatim as the user-facing message.
func statusError(status int, detail string) error {
	switch status {
	case http.StatusUnauthorized:
		if detail == "" {
			return apperrors.NewSessionExpiredError()
		}
		return apperrors.NewSessionExpiredError(detail)
	case http.StatusNotFound:
		return apperrors.NewNotFoundError(orDefault(detail, "Not found"))
	case http.StatusTooManyRequests:
		return apperrors.NewRateLimitedError(orDefault(detail, "Too many requests"))
	default:
		return apperrors.NewUpstreamError(status, orDefault(detail, "Request failed"), fmt.Sprintf("status %d", status))
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

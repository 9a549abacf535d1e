package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/mataroo/mataroo/internal/shared/errors"
	"github.com/mataroo/mataroo/internal/shared/logger"
)

// SupabaseConfig holds the auth provider project settings.
type SupabaseConfig struct {
	URL     string
	AnonKey string
	Timeout time.Duration
}

// SupabaseClient talks to the provider's GoTrue endpoints.
type SupabaseClient struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	logger     logger.Interface
}

func NewSupabaseClient(cfg SupabaseConfig, log logger.Interface) *SupabaseClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SupabaseClient{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		anonKey:    cfg.AnonKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type gotrueError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (e gotrueError) text() string {
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// SignInWithPassword exchanges email and password for a session.
func (c *SupabaseClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	sess, status, err := c.token(ctx, "password", body)
	if err != nil {
		if status == http.StatusBadRequest || status == http.StatusUnauthorized {
			return nil, apperrors.NewInvalidCredentialsError()
		}
		return nil, err
	}
	return sess, nil
}

// Refresh trades a refresh token for a new session. Refresh tokens are
// single use; the returned session carries the replacement.
func (c *SupabaseClient) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	body := map[string]string{"refresh_token": refreshToken}
	sess, status, err := c.token(ctx, "refresh_token", body)
	if err != nil {
		if status == http.StatusBadRequest || status == http.StatusUnauthorized {
			return nil, apperrors.NewSessionExpiredError()
		}
		return nil, err
	}
	return sess, nil
}

// SignOut revokes the session server-side.
func (c *SupabaseClient) SignOut(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewUpstreamError(0, "Network error, please try again", err.Error()).WithCause(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	// an already invalid token is as good as signed out
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
		return apperrors.NewUpstreamError(resp.StatusCode, "Failed to sign out")
	}
	return nil
}

func (c *SupabaseClient) token(ctx context.Context, grantType string, body map[string]string) (*Session, int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/auth/v1/token?grant_type=%s", c.baseURL, grantType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warnw("auth provider request failed", "grant_type", grantType, "error", err)
		return nil, 0, apperrors.NewUpstreamError(0, "Network error, please try again", err.Error()).WithCause(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ge gotrueError
		_ = json.Unmarshal(respBody, &ge)
		c.logger.Infow("auth provider rejected token request",
			"grant_type", grantType,
			"status", resp.StatusCode,
			"reason", ge.text(),
		)
		return nil, resp.StatusCode, apperrors.NewUpstreamError(resp.StatusCode, orDefault(ge.text(), "Authentication failed"))
	}

	var tr tokenResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("unmarshal token response: %w", err)
	}
	sess, err := NewSession(tr.AccessToken, tr.RefreshToken, tr.TokenType)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return sess, resp.StatusCode, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mataroo/mataroo/internal/domain/connection"
	"github.com/mataroo/mataroo/internal/domain/content"
	"github.com/mataroo/mataroo/internal/domain/payment"
	"github.com/mataroo/mataroo/internal/domain/subscription"
	apperrors "github.com/mataroo/mataroo/internal/shared/errors"
)

// GetSubscription retrieves the current plan and usage.
func (c *Client) GetSubscription(ctx context.Context) (*subscription.Subscription, error) {
	var resp subscriptionResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/subscription/status", nil, &resp); err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	sub, err := resp.Subscription.toDomain()
	if err != nil {
		return nil, apperrors.NewUpstreamError(http.StatusOK, "Unexpected subscription data", err.Error()).WithCause(err)
	}
	return sub, nil
}

// CreateOrder asks the backend to open a gateway order for the pro plan.
func (c *Client) CreateOrder(ctx context.Context) (*payment.Order, error) {
	var resp createOrderResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/payments/create-order", nil, &resp); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	order, err := resp.Order.toDomain()
	if err != nil {
		return nil, apperrors.NewUpstreamError(http.StatusOK, "Unexpected order data", err.Error()).WithCause(err)
	}
	return order, nil
}

// VerifyPayment forwards the gateway tokens for server-side signature
// verification. It has no client timeout of its own.
func (c *Client) VerifyPayment(ctx context.Context, v payment.Verification) error {
	body := verifyRequest{
		OrderID:   v.OrderID,
		PaymentID: v.PaymentID,
		Signature: v.Signature,
	}
	var resp successResponse
	if err := c.do(ctx, c.verifyClient, http.MethodPost, "/api/payments/verify", body, &resp); err != nil {
		return fmt.Errorf("verify payment: %w", err)
	}
	if !resp.Success {
		return apperrors.NewVerificationRejectedError("Payment verification was rejected", orDefault(resp.Error, resp.Message))
	}
	return nil
}

// ListConnections retrieves the user's linked accounts.
func (c *Client) ListConnections(ctx context.Context) (connection.List, error) {
	var resp connectionsResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/connections", nil, &resp); err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	list := make(connection.List, 0, len(resp.Connections))
	for _, dto := range resp.Connections {
		conn, err := dto.toDomain()
		if err != nil {
			return nil, apperrors.NewUpstreamError(http.StatusOK, "Unexpected connection data", err.Error()).WithCause(err)
		}
		list = append(list, conn)
	}
	return list, nil
}

// ConnectURL returns the provider authorization URL for platform.
func (c *Client) ConnectURL(ctx context.Context, platform connection.Platform) (string, error) {
	var resp authURLResponse
	path := "/api/auth/" + url.PathEscape(platform.String()) + "/login"
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", fmt.Errorf("connect %s: %w", platform, err)
	}
	if resp.AuthURL == "" {
		return "", apperrors.NewUpstreamError(http.StatusOK, "Server did not return an authorization URL")
	}
	return resp.AuthURL, nil
}

// Disconnect removes the linked account for platform and returns the
// backend's confirmation message.
func (c *Client) Disconnect(ctx context.Context, platform connection.Platform) (string, error) {
	var resp successResponse
	path := "/api/connections/" + url.PathEscape(platform.String())
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, &resp); err != nil {
		return "", fmt.Errorf("disconnect %s: %w", platform, err)
	}
	return resp.Message, nil
}

// Generate asks the backend to draft a post for prompt.
func (c *Client) Generate(ctx context.Context, prompt string, platform connection.Platform) (*content.Draft, error) {
	var resp generateResponse
	body := generateRequest{Prompt: prompt, Platform: platform.String()}
	if err := c.doRequest(ctx, http.MethodPost, "/api/generate", body, &resp); err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	if !resp.Success || resp.Data == nil {
		return nil, apperrors.NewUpstreamError(http.StatusOK, orDefault(resp.Error, "Failed to generate content"))
	}
	p := connection.Platform(resp.Data.Platform)
	if p == "" {
		p = platform
	}
	return &content.Draft{
		Platform:     p,
		Prompt:       prompt,
		Content:      resp.Data.Content,
		Hashtags:     resp.Data.Hashtags,
		FinalContent: resp.Data.FinalContent,
		CharCount:    resp.Data.CharCount,
	}, nil
}

// Publish posts body to platform. Hashtags are stored with the history
// entry.
func (c *Client) Publish(ctx context.Context, body, userPrompt string, hashtags []string, platform connection.Platform) (*content.Published, error) {
	var resp postResponse
	if hashtags == nil {
		hashtags = []string{}
	}
	req := postRequest{Content: body, UserPrompt: userPrompt, Hashtags: hashtags, Platform: platform.String()}
	if err := c.doRequest(ctx, http.MethodPost, "/api/post", req, &resp); err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}
	if !resp.Success {
		return nil, apperrors.NewUpstreamError(http.StatusOK, orDefault(resp.Error, "Failed to publish post"))
	}
	return &content.Published{Platform: platform, PostID: resp.TweetID, URL: resp.URL}, nil
}

// History lists previously generated posts, newest first. An empty platform
// returns all platforms.
func (c *Client) History(ctx context.Context, platform connection.Platform, limit int) ([]content.HistoryItem, error) {
	q := url.Values{}
	if platform != "" {
		q.Set("platform", platform.String())
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/history"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp historyResponse
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	if !resp.Success {
		return nil, apperrors.NewUpstreamError(http.StatusOK, orDefault(resp.Error, "Failed to load history"))
	}
	items := make([]content.HistoryItem, 0, len(resp.Posts))
	for _, p := range resp.Posts {
		items = append(items, p.toDomain())
	}
	return items, nil
}

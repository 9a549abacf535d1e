package api

import (
	"fmt"
	"time"

	"github.com/mataroo/mataroo/internal/domain/connection"
	"github.com/mataroo/mataroo/internal/domain/content"
	"github.com/mataroo/mataroo/internal/domain/payment"
	payvo "github.com/mataroo/mataroo/internal/domain/payment/valueobjects"
	"github.com/mataroo/mataroo/internal/domain/subscription"
	subvo "github.com/mataroo/mataroo/internal/domain/subscription/valueobjects"
	"github.com/mataroo/mataroo/internal/shared/biztime"
)

type subscriptionResponse struct {
	Success      bool            `json:"success"`
	Subscription subscriptionDTO `json:"subscription"`
}

type subscriptionDTO struct {
	PlanType         string               `json:"plan_type"`
	Status           string               `json:"status"`
	PostsUsed        int                  `json:"posts_used"`
	PostsLimit       int                  `json:"posts_limit"`
	Remaining        *subvo.PostAllowance `json:"remaining"`
	CurrentPeriodEnd *string              `json:"current_period_end"`
}

func (d subscriptionDTO) toDomain() (*subscription.Subscription, error) {
	planType, err := subvo.NewPlanType(d.PlanType)
	if err != nil {
		return nil, err
	}
	status, err := subvo.NewSubscriptionStatus(d.Status)
	if err != nil {
		return nil, err
	}
	periodEnd, err := parseOptionalTime(d.CurrentPeriodEnd)
	if err != nil {
		return nil, fmt.Errorf("current_period_end: %w", err)
	}
	return subscription.ReconstructSubscription(
		planType,
		status,
		d.PostsUsed,
		subvo.AllowanceFromLimit(d.PostsLimit),
		d.Remaining,
		periodEnd,
	)
}

type createOrderResponse struct {
	Order orderDTO `json:"order"`
}

type orderDTO struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

func (d orderDTO) toDomain() (*payment.Order, error) {
	return payment.NewOrder(d.ID, payvo.NewMoney(d.Amount, d.Currency), d.KeyID)
}

type verifyRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type connectionsResponse struct {
	Success     bool            `json:"success"`
	Connections []connectionDTO `json:"connections"`
}

type connectionDTO struct {
	Platform         string  `json:"platform"`
	PlatformUsername *string `json:"platform_username"`
	IsActive         *bool   `json:"is_active"`
	ConnectedAt      *string `json:"connected_at"`
}

func (d connectionDTO) toDomain() (connection.Connection, error) {
	connectedAt, err := parseOptionalTime(d.ConnectedAt)
	if err != nil {
		return connection.Connection{}, fmt.Errorf("connected_at: %w", err)
	}
	// the backend defaults is_active to true when the column is empty
	active := true
	if d.IsActive != nil {
		active = *d.IsActive
	}
	return connection.Connection{
		Platform:         connection.Platform(d.Platform),
		PlatformUsername: d.PlatformUsername,
		IsActive:         active,
		ConnectedAt:      connectedAt,
	}, nil
}

type authURLResponse struct {
	AuthURL string `json:"auth_url"`
}

type generateRequest struct {
	Prompt   string `json:"prompt"`
	Platform string `json:"platform"`
}

type generateResponse struct {
	Success bool         `json:"success"`
	Data    *generateDTO `json:"data"`
	Error   string       `json:"error"`
}

type generateDTO struct {
	Platform     string   `json:"platform"`
	Content      string   `json:"content"`
	Hashtags     []string `json:"hashtags"`
	FinalContent string   `json:"final_content"`
	CharCount    int      `json:"char_count"`
}

type postRequest struct {
	Content    string   `json:"content"`
	UserPrompt string   `json:"user_prompt"`
	Hashtags   []string `json:"hashtags"`
	Platform   string   `json:"platform"`
}

type postResponse struct {
	Success bool   `json:"success"`
	TweetID string `json:"tweet_id"`
	URL     string `json:"url"`
	Error   string `json:"error"`
}

type historyResponse struct {
	Success bool         `json:"success"`
	Posts   []historyDTO `json:"posts"`
	Error   string       `json:"error"`
}

type historyDTO struct {
	ID               string   `json:"id"`
	Platform         string   `json:"platform"`
	UserPrompt       string   `json:"user_prompt"`
	GeneratedContent string   `json:"generated_content"`
	Hashtags         []string `json:"hashtags"`
	PlatformPostID   *string  `json:"platform_post_id"`
	PlatformPostURL  *string  `json:"platform_post_url"`
	Status           string   `json:"status"`
	CreatedAt        *string  `json:"created_at"`
}

func (d historyDTO) toDomain() content.HistoryItem {
	item := content.HistoryItem{
		ID:               d.ID,
		Platform:         connection.Platform(d.Platform),
		UserPrompt:       d.UserPrompt,
		GeneratedContent: d.GeneratedContent,
		Hashtags:         d.Hashtags,
		Status:           d.Status,
	}
	if d.PlatformPostID != nil {
		item.PlatformPostID = *d.PlatformPostID
	}
	if d.PlatformPostURL != nil {
		item.PlatformPostURL = *d.PlatformPostURL
	}
	// a malformed timestamp is not worth failing the whole page
	if t, err := parseOptionalTime(d.CreatedAt); err == nil {
		item.CreatedAt = t
	}
	return item
}

func parseOptionalTime(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := biztime.ParseTimestamp(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

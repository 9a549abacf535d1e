package dto

import (
	"time"

	"github.com/mataroo/mataroo/internal/domain/subscription"
	"github.com/mataroo/mataroo/internal/shared/biztime"
)

const (
	MessageUnlimited    = "Unlimited posts on your Pro plan"
	MessageLimitReached = "You've reached your monthly post limit. Upgrade to Pro for unlimited posts."
)

// UsageDTO is the dashboard's subscription card.
type UsageDTO struct {
	PlanType         string  `json:"plan_type"`
	PlanName         string  `json:"plan_name"`
	Status           string  `json:"status"`
	PostsUsed        int     `json:"posts_used"`
	PostsLimit       string  `json:"posts_limit"`
	Remaining        string  `json:"remaining"`
	UsagePercent     int     `json:"usage_percent"`
	IsUnlimited      bool    `json:"is_unlimited"`
	IsAtLimit        bool    `json:"is_at_limit"`
	CanPost          bool    `json:"can_post"`
	CanUpgrade       bool    `json:"can_upgrade"`
	CurrentPeriodEnd *string `json:"current_period_end,omitempty"`
	Message          string  `json:"message"`
}

func ToUsageDTO(s *subscription.Subscription) *UsageDTO {
	if s == nil {
		return nil
	}
	d := &UsageDTO{
		PlanType:     s.PlanType().String(),
		PlanName:     s.PlanType().DisplayName(),
		Status:       s.Status().String(),
		PostsUsed:    s.PostsUsed(),
		PostsLimit:   s.PostsLimit().String(),
		Remaining:    s.Remaining().String(),
		UsagePercent: s.UsagePercent(),
		IsUnlimited:  s.IsUnlimited(),
		IsAtLimit:    s.IsAtLimit(),
		CanPost:      s.CanPost(),
		CanUpgrade:   !s.PlanType().IsPro(),
	}
	if end := s.CurrentPeriodEnd(); end != nil {
		formatted := biztime.FormatInBizTimezone(*end, time.DateOnly)
		d.CurrentPeriodEnd = &formatted
	}
	switch {
	case d.IsUnlimited:
		d.Message = MessageUnlimited
	case d.IsAtLimit:
		d.Message = MessageLimitReached
	default:
		d.Message = s.Remaining().String() + " posts remaining this month"
	}
	return d
}

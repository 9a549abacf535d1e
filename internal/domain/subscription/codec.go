package subscription

import (
	"encoding/json"
	"time"

	vo "github.com/mataroo/mataroo/internal/domain/subscription/valueobjects"
)

// unlimitedLimit is the posts_limit sentinel used on the wire.
const unlimitedLimit = -1

type subscriptionJSON struct {
	PlanType         vo.PlanType           `json:"plan_type"`
	Status           vo.SubscriptionStatus `json:"status"`
	PostsUsed        int                   `json:"posts_used"`
	PostsLimit       int                   `json:"posts_limit"`
	Remaining        vo.PostAllowance      `json:"remaining"`
	CurrentPeriodEnd *time.Time            `json:"current_period_end,omitempty"`
}

// MarshalJSON encodes the subscription in the backend's status shape so a
// cached copy decodes back through the same validation.
func (s *Subscription) MarshalJSON() ([]byte, error) {
	limit := unlimitedLimit
	if !s.postsLimit.IsUnlimited() {
		limit = s.postsLimit.Count()
	}
	return json.Marshal(subscriptionJSON{
		PlanType:         s.planType,
		Status:           s.status,
		PostsUsed:        s.postsUsed,
		PostsLimit:       limit,
		Remaining:        s.remaining,
		CurrentPeriodEnd: s.currentPeriodEnd,
	})
}

func (s *Subscription) UnmarshalJSON(data []byte) error {
	var raw subscriptionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := ReconstructSubscription(
		raw.PlanType,
		raw.Status,
		raw.PostsUsed,
		vo.AllowanceFromLimit(raw.PostsLimit),
		&raw.Remaining,
		raw.CurrentPeriodEnd,
	)
	if err != nil {
		return err
	}
	*s = *decoded
	return nil
}

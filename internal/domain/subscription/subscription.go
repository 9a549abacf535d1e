package subscription

import (
	"fmt"
	"time"

	vo "github.com/mataroo/mataroo/internal/domain/subscription/valueobjects"
)

// Subscription is the client's read-only view of the server-owned plan.
// The client never mutates it; transitions happen server-side and reach the
// client through a refetch.
type Subscription struct {
	planType         vo.PlanType
	status           vo.SubscriptionStatus
	postsUsed        int
	postsLimit       vo.PostAllowance
	remaining        vo.PostAllowance
	currentPeriodEnd *time.Time
}

// ReconstructSubscription rebuilds a Subscription from backend data.
// When remaining is nil it is derived from used and limit.
func ReconstructSubscription(
	planType vo.PlanType,
	status vo.SubscriptionStatus,
	postsUsed int,
	postsLimit vo.PostAllowance,
	remaining *vo.PostAllowance,
	currentPeriodEnd *time.Time,
) (*Subscription, error) {
	if !planType.IsValid() {
		return nil, fmt.Errorf("%w: plan_type %q", ErrInvalidSubscription, planType)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: status %q", ErrInvalidSubscription, status)
	}
	if postsUsed < 0 {
		return nil, fmt.Errorf("%w: posts_used %d", ErrInvalidSubscription, postsUsed)
	}
	if !postsLimit.IsUnlimited() && postsLimit.Count() == 0 {
		return nil, fmt.Errorf("%w: posts_limit must be positive or unlimited", ErrInvalidSubscription)
	}

	s := &Subscription{
		planType:         planType,
		status:           status,
		postsUsed:        postsUsed,
		postsLimit:       postsLimit,
		currentPeriodEnd: currentPeriodEnd,
	}
	if remaining != nil {
		s.remaining = *remaining
	} else {
		s.remaining = deriveRemaining(postsUsed, postsLimit)
	}
	return s, nil
}

func deriveRemaining(used int, limit vo.PostAllowance) vo.PostAllowance {
	if limit.IsUnlimited() {
		return vo.Unlimited()
	}
	return vo.Limited(limit.Count() - used)
}

func (s *Subscription) PlanType() vo.PlanType {
	return s.planType
}

func (s *Subscription) Status() vo.SubscriptionStatus {
	return s.status
}

func (s *Subscription) PostsUsed() int {
	return s.postsUsed
}

func (s *Subscription) PostsLimit() vo.PostAllowance {
	return s.postsLimit
}

func (s *Subscription) Remaining() vo.PostAllowance {
	return s.remaining
}

func (s *Subscription) CurrentPeriodEnd() *time.Time {
	return s.currentPeriodEnd
}

func (s *Subscription) IsUnlimited() bool {
	return s.postsLimit.IsUnlimited()
}

// IsAtLimit is true iff the limit is finite and already consumed.
// posts_used is never compared against an unlimited plan.
func (s *Subscription) IsAtLimit() bool {
	if s.postsLimit.IsUnlimited() {
		return false
	}
	return s.postsUsed >= s.postsLimit.Count()
}

// UsagePercent returns 0..100; unlimited plans always report 0.
func (s *Subscription) UsagePercent() int {
	if s.postsLimit.IsUnlimited() {
		return 0
	}
	pct := s.postsUsed * 100 / s.postsLimit.Count()
	if pct > 100 {
		return 100
	}
	return pct
}

// CanPost mirrors the backend's gate: an active plan with allowance left.
func (s *Subscription) CanPost() bool {
	return s.status.CanPost() && !s.IsAtLimit()
}

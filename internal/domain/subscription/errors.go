package subscription

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSubscription  = errors.New("invalid subscription")
	ErrSubscriptionInactive = errors.New("subscription inactive")
	ErrPostLimitReached     = errors.New("monthly post limit reached")
)

func ErrLimitReached(limit int) error {
	return fmt.Errorf("%w: limit=%d", ErrPostLimitReached, limit)
}

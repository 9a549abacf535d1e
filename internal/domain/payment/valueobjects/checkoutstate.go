package valueobjects

// CheckoutState is the lifecycle of a single upgrade attempt.
type CheckoutState string

const (
	CheckoutIdle               CheckoutState = "idle"
	CheckoutOrderCreated       CheckoutState = "order_created"
	CheckoutWidgetOpen         CheckoutState = "widget_open"
	CheckoutVerifying          CheckoutState = "verifying"
	CheckoutVerified           CheckoutState = "verified"
	CheckoutVerificationFailed CheckoutState = "verification_failed"
	CheckoutDismissed          CheckoutState = "dismissed"
	CheckoutPaymentFailed      CheckoutState = "payment_failed"
)

func (s CheckoutState) String() string {
	return string(s)
}

// InFlight is true while the upgrade trigger must stay disabled.
func (s CheckoutState) InFlight() bool {
	return s == CheckoutOrderCreated || s == CheckoutWidgetOpen || s == CheckoutVerifying
}

// IsTerminal is true for the outcomes of an attempt.
func (s CheckoutState) IsTerminal() bool {
	switch s {
	case CheckoutVerified, CheckoutVerificationFailed, CheckoutDismissed, CheckoutPaymentFailed:
		return true
	}
	return false
}

// ReturnsToIdle is true for every terminal state except verified.
func (s CheckoutState) ReturnsToIdle() bool {
	return s.IsTerminal() && s != CheckoutVerified
}

func (s CheckoutState) CanTransitionTo(target CheckoutState) bool {
	transitions := map[CheckoutState][]CheckoutState{
		CheckoutIdle:               {CheckoutOrderCreated},
		CheckoutOrderCreated:       {CheckoutWidgetOpen, CheckoutIdle},
		CheckoutWidgetOpen:         {CheckoutVerifying, CheckoutDismissed, CheckoutPaymentFailed},
		CheckoutVerifying:          {CheckoutVerified, CheckoutVerificationFailed},
		CheckoutVerified:           {},
		CheckoutVerificationFailed: {CheckoutIdle},
		CheckoutDismissed:          {CheckoutIdle},
		CheckoutPaymentFailed:      {CheckoutIdle},
	}

	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

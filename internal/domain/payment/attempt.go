package payment

import (
	"time"

	vo "github.com/mataroo/mataroo/internal/domain/payment/valueobjects"
)

// Attempt is one pass through the checkout state machine. Terminal states
// other than verified fall straight back to idle; the outcome that caused it
// is kept for display.
type Attempt struct {
	id        string
	state     vo.CheckoutState
	outcome   vo.CheckoutState
	order     *Order
	message   string
	updatedAt time.Time
}

func NewAttempt(id string, now time.Time) *Attempt {
	return &Attempt{
		id:        id,
		state:     vo.CheckoutIdle,
		updatedAt: now,
	}
}

func (a *Attempt) ID() string {
	return a.id
}

func (a *Attempt) State() vo.CheckoutState {
	return a.state
}

// Outcome is the last terminal state reached, or empty while none has been.
func (a *Attempt) Outcome() vo.CheckoutState {
	return a.outcome
}

func (a *Attempt) Order() *Order {
	return a.order
}

func (a *Attempt) Message() string {
	return a.message
}

func (a *Attempt) UpdatedAt() time.Time {
	return a.updatedAt
}

// AttachOrder records the backend order and moves idle → order_created.
func (a *Attempt) AttachOrder(o *Order, now time.Time) error {
	if o == nil {
		return ErrInvalidOrder
	}
	if err := a.TransitionTo(vo.CheckoutOrderCreated, "", now); err != nil {
		return err
	}
	a.order = o
	return nil
}

// TransitionTo moves the attempt to target. Reaching a terminal state that
// returns to idle also performs that second step and drops the order.
func (a *Attempt) TransitionTo(target vo.CheckoutState, message string, now time.Time) error {
	if !a.state.CanTransitionTo(target) {
		return ErrTransition(a.state, target)
	}
	a.state = target
	a.updatedAt = now
	if message != "" {
		a.message = message
	}
	if target.IsTerminal() {
		a.outcome = target
	}
	if target.ReturnsToIdle() {
		a.state = vo.CheckoutIdle
		a.order = nil
	}
	return nil
}

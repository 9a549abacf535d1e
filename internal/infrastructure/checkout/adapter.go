// Package checkout is the boundary to the payment gateway's browser widget.
// Callers see three events per opened widget: completion, failure and
// dismissal. Exactly one of them is delivered for each Open.
package checkout

import (
	"context"
	"errors"
)

var (
	ErrUnknownOrder = errors.New("no open checkout for order")
	ErrClosed       = errors.New("checkout adapter closed")
)

// Prefill seeds the widget's customer fields.
type Prefill struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Options are the widget constructor arguments.
type Options struct {
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	OrderID     string  `json:"order_id"`
	Prefill     Prefill `json:"prefill"`
	ThemeColor  string  `json:"-"`
}

// Response carries the three tokens the gateway hands to the completion handler.
type Response struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}

// Failure is the payload of the widget's payment.failed event.
type Failure struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

// Handlers receive the widget's events. OnComplete and OnFailed return the
// outcome shown to the user on the checkout page.
type Handlers struct {
	OnComplete func(ctx context.Context, resp Response) error
	OnFailed   func(ctx context.Context, f Failure) error
	OnDismiss  func(ctx context.Context)
}

// Adapter opens the gateway widget for an order.
type Adapter interface {
	Open(ctx context.Context, opts Options, h Handlers) error
	// Close tears the adapter down. Widgets still open are abandoned
	// without an event.
	Close() error
}

package payment

import (
	"errors"
	"fmt"
	"strings"

	vo "github.com/mataroo/mataroo/internal/domain/payment/valueobjects"
)

var (
	ErrInvalidOrder        = errors.New("invalid payment order")
	ErrInvalidVerification = errors.New("invalid payment verification")
	ErrInvalidTransition   = errors.New("invalid checkout transition")
)

func ErrTransition(from, to vo.CheckoutState) error {
	return fmt.Errorf("%w: from %s to %s", ErrInvalidTransition, from, to)
}

// Order is a gateway order created by the backend for one checkout attempt.
// It is never persisted by the client.
type Order struct {
	id     string
	amount vo.Money
	keyID  string
}

func NewOrder(id string, amount vo.Money, keyID string) (*Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: order id is required", ErrInvalidOrder)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidOrder)
	}
	if strings.TrimSpace(keyID) == "" {
		return nil, fmt.Errorf("%w: gateway key id is required", ErrInvalidOrder)
	}
	return &Order{id: id, amount: amount, keyID: keyID}, nil
}

func (o *Order) ID() string {
	return o.id
}

func (o *Order) Amount() vo.Money {
	return o.amount
}

// KeyID is the gateway's public key used to initialize the checkout widget.
func (o *Order) KeyID() string {
	return o.keyID
}

// Verification carries the three gateway-issued tokens from the widget callback.
// The client treats them as opaque and untrusted; only the backend checks the signature.
type Verification struct {
	OrderID   string
	PaymentID string
	Signature string
}

func (v Verification) Validate() error {
	if v.OrderID == "" || v.PaymentID == "" || v.Signature == "" {
		return fmt.Errorf("%w: order_id, payment_id and signature are required", ErrInvalidVerification)
	}
	return nil
}

// MatchesOrder guards against a callback for a different attempt being relayed.
func (v Verification) MatchesOrder(o *Order) bool {
	return o != nil && v.OrderID == o.id
}

package usecases

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mataroo/mataroo/internal/application/payment/dto"
	"github.com/mataroo/mataroo/internal/domain/payment"
	vo "github.com/mataroo/mataroo/internal/domain/payment/valueobjects"
	"github.com/mataroo/mataroo/internal/infrastructure/checkout"
	"github.com/mataroo/mataroo/internal/shared/biztime"
	"github.com/mataroo/mataroo/internal/shared/errors"
	"github.com/mataroo/mataroo/internal/shared/logger"
)

const (
	MessageVerificationFailed  = "Payment verification failed. Please contact support."
	MessagePaymentFailed       = "Payment failed. Please try again."
	MessageCheckoutUnavailable = "Could not open the payment checkout. Please try again."
	MessageUpgraded            = "Payment successful! Welcome to Mataroo Pro."
	MessageDismissed           = "Checkout closed before payment."
)

// PaymentGateway is the backend side of the checkout handshake.
type PaymentGateway interface {
	CreateOrder(ctx context.Context) (*payment.Order, error)
	VerifyPayment(ctx context.Context, v payment.Verification) error
}

// SubscriptionInvalidator marks the cached subscription stale.
type SubscriptionInvalidator interface {
	Invalidate(ctx context.Context) error
}

// CheckoutSettings are the merchant details shown in the widget.
type CheckoutSettings struct {
	MerchantName string
	Description  string
	ThemeColor   string
	Prefill      checkout.Prefill
}

// UpgradeFlow drives one upgrade attempt at a time from order creation to
// backend verification. The backend's verdict is the only acceptance point;
// nothing here marks the plan as upgraded.
type UpgradeFlow struct {
	gateway      PaymentGateway
	checkout     checkout.Adapter
	subscription SubscriptionInvalidator
	settings     CheckoutSettings
	logger       logger.Interface
	now          func() time.Time
	newID        func() string

	mu       sync.Mutex
	attempt  *payment.Attempt
	creating bool
}

func NewUpgradeFlow(
	gateway PaymentGateway,
	adapter checkout.Adapter,
	subscription SubscriptionInvalidator,
	settings CheckoutSettings,
	logger logger.Interface,
) *UpgradeFlow {
	return &UpgradeFlow{
		gateway:      gateway,
		checkout:     adapter,
		subscription: subscription,
		settings:     settings,
		logger:       logger,
		now:          biztime.NowUTC,
		newID:        uuid.NewString,
	}
}

// Busy is true while an order is being created or an attempt is in flight.
func (f *UpgradeFlow) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busyLocked()
}

func (f *UpgradeFlow) busyLocked() bool {
	return f.creating || (f.attempt != nil && f.attempt.State().InFlight())
}

// Current returns the latest attempt.
func (f *UpgradeFlow) Current() *dto.AttemptDTO {
	f.mu.Lock()
	defer f.mu.Unlock()
	return dto.ToAttemptDTO(f.attempt, f.busyLocked())
}

// Start creates an order and opens the checkout widget for it.
func (f *UpgradeFlow) Start(ctx context.Context) (*dto.AttemptDTO, error) {
	f.mu.Lock()
	if f.busyLocked() {
		f.mu.Unlock()
		return nil, errors.NewConflictError("An upgrade is already in progress")
	}
	attempt := payment.NewAttempt(f.newID(), f.now())
	f.attempt = attempt
	f.creating = true
	f.mu.Unlock()

	order, err := f.gateway.CreateOrder(ctx)

	f.mu.Lock()
	f.creating = false
	if err != nil {
		f.mu.Unlock()
		f.logger.Warnw("failed to create payment order", "attempt_id", attempt.ID(), "error", err)
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}
	if err := attempt.AttachOrder(order, f.now()); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	// the widget can report back as soon as it is open
	if err := attempt.TransitionTo(vo.CheckoutWidgetOpen, "", f.now()); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	f.mu.Unlock()

	f.logger.Infow("payment order created",
		"attempt_id", attempt.ID(),
		"order_id", order.ID(),
		"amount", order.Amount().String(),
	)

	opts := checkout.Options{
		Key:         order.KeyID(),
		Amount:      order.Amount().MinorUnits(),
		Currency:    order.Amount().Currency(),
		Name:        f.settings.MerchantName,
		Description: f.settings.Description,
		OrderID:     order.ID(),
		Prefill:     f.settings.Prefill,
		ThemeColor:  f.settings.ThemeColor,
	}
	handlers := checkout.Handlers{
		OnComplete: func(ctx context.Context, resp checkout.Response) error {
			return f.complete(ctx, attempt, resp)
		},
		OnFailed: func(ctx context.Context, failure checkout.Failure) error {
			return f.failed(attempt, failure)
		},
		OnDismiss: func(ctx context.Context) {
			f.dismiss(attempt)
		},
	}

	if err := f.checkout.Open(ctx, opts, handlers); err != nil {
		f.mu.Lock()
		_ = attempt.TransitionTo(vo.CheckoutPaymentFailed, MessageCheckoutUnavailable, f.now())
		f.mu.Unlock()
		f.logger.Errorw("failed to open checkout", "attempt_id", attempt.ID(), "order_id", order.ID(), "error", err)
		return nil, errors.NewGatewayFailedError(MessageCheckoutUnavailable, err.Error()).WithCause(err)
	}

	return f.Current(), nil
}

func (f *UpgradeFlow) complete(ctx context.Context, attempt *payment.Attempt, resp checkout.Response) error {
	f.mu.Lock()
	if err := attempt.TransitionTo(vo.CheckoutVerifying, "", f.now()); err != nil {
		f.mu.Unlock()
		f.logger.Warnw("ignoring completion event", "attempt_id", attempt.ID(), "error", err)
		return errors.NewConflictError("This checkout is no longer active")
	}
	order := attempt.Order()
	f.mu.Unlock()

	v := payment.Verification{
		OrderID:   resp.OrderID,
		PaymentID: resp.PaymentID,
		Signature: resp.Signature,
	}

	// closing the checkout page must not abort a verification in progress
	// or the invalidation that follows it
	detached := context.WithoutCancel(ctx)

	var verifyErr error
	switch {
	case v.Validate() != nil:
		verifyErr = v.Validate()
	case !v.MatchesOrder(order):
		verifyErr = fmt.Errorf("%w: callback for order %s", payment.ErrInvalidVerification, v.OrderID)
	default:
		verifyErr = f.gateway.VerifyPayment(detached, v)
	}

	if verifyErr != nil {
		f.mu.Lock()
		_ = attempt.TransitionTo(vo.CheckoutVerificationFailed, MessageVerificationFailed, f.now())
		f.mu.Unlock()
		f.logger.Errorw("payment verification failed",
			"attempt_id", attempt.ID(),
			"order_id", v.OrderID,
			"payment_id", v.PaymentID,
			"error", verifyErr,
		)
		return errors.NewVerificationRejectedError(MessageVerificationFailed).WithCause(verifyErr)
	}

	// invalidate before reporting verified so a reader that sees the new
	// state never gets the pre-upgrade subscription from the cache
	if err := f.subscription.Invalidate(detached); err != nil {
		f.logger.Warnw("failed to invalidate subscription after upgrade", "error", err)
	}

	f.mu.Lock()
	_ = attempt.TransitionTo(vo.CheckoutVerified, MessageUpgraded, f.now())
	f.mu.Unlock()

	f.logger.Infow("payment verified", "attempt_id", attempt.ID(), "order_id", v.OrderID, "payment_id", v.PaymentID)
	return nil
}

func (f *UpgradeFlow) failed(attempt *payment.Attempt, failure checkout.Failure) error {
	f.mu.Lock()
	err := attempt.TransitionTo(vo.CheckoutPaymentFailed, MessagePaymentFailed, f.now())
	f.mu.Unlock()
	if err != nil {
		f.logger.Warnw("ignoring payment.failed event", "attempt_id", attempt.ID(), "error", err)
	} else {
		f.logger.Infow("payment failed in checkout",
			"attempt_id", attempt.ID(),
			"code", failure.Code,
			"reason", failure.Reason,
		)
	}
	return errors.NewGatewayFailedError(MessagePaymentFailed, failure.Description)
}

func (f *UpgradeFlow) dismiss(attempt *payment.Attempt) {
	f.mu.Lock()
	err := attempt.TransitionTo(vo.CheckoutDismissed, MessageDismissed, f.now())
	f.mu.Unlock()
	if err != nil {
		f.logger.Warnw("ignoring dismiss event", "attempt_id", attempt.ID(), "error", err)
		return
	}
	f.logger.Infow("checkout dismissed", "attempt_id", attempt.ID())
}

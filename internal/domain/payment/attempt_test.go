package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/mataroo/mataroo/internal/domain/payment/valueobjects"
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder("order_1", vo.NewMoney(49900, "INR"), "rzp_test")
	require.NoError(t, err)
	return o
}

func TestAttempt_HappyPath(t *testing.T) {
	now := time.Now()
	a := NewAttempt("a1", now)

	require.NoError(t, a.AttachOrder(newTestOrder(t), now))
	require.NoError(t, a.TransitionTo(vo.CheckoutWidgetOpen, "", now))
	require.NoError(t, a.TransitionTo(vo.CheckoutVerifying, "", now))
	require.NoError(t, a.TransitionTo(vo.CheckoutVerified, "done", now))

	assert.Equal(t, vo.CheckoutVerified, a.State())
	assert.Equal(t, vo.CheckoutVerified, a.Outcome())
	assert.NotNil(t, a.Order())
	assert.Equal(t, "done", a.Message())
}

func TestAttempt_NonVerifiedTerminalsReturnToIdle(t *testing.T) {
	for _, terminal := range []vo.CheckoutState{vo.CheckoutDismissed, vo.CheckoutPaymentFailed} {
		t.Run(terminal.String(), func(t *testing.T) {
			now := time.Now()
			a := NewAttempt("a1", now)
			require.NoError(t, a.AttachOrder(newTestOrder(t), now))
			require.NoError(t, a.TransitionTo(vo.CheckoutWidgetOpen, "", now))
			require.NoError(t, a.TransitionTo(terminal, "", now))

			assert.Equal(t, vo.CheckoutIdle, a.State())
			assert.Equal(t, terminal, a.Outcome())
			assert.Nil(t, a.Order(), "no partial order state lingers")
		})
	}
}

func TestAttempt_VerificationFailedReturnsToIdle(t *testing.T) {
	now := time.Now()
	a := NewAttempt("a1", now)
	require.NoError(t, a.AttachOrder(newTestOrder(t), now))
	require.NoError(t, a.TransitionTo(vo.CheckoutWidgetOpen, "", now))
	require.NoError(t, a.TransitionTo(vo.CheckoutVerifying, "", now))
	require.NoError(t, a.TransitionTo(vo.CheckoutVerificationFailed, "failed", now))

	assert.Equal(t, vo.CheckoutIdle, a.State())
	assert.Equal(t, vo.CheckoutVerificationFailed, a.Outcome())
}

func TestAttempt_RejectsOutOfOrderEvents(t *testing.T) {
	now := time.Now()
	a := NewAttempt("a1", now)

	err := a.TransitionTo(vo.CheckoutVerifying, "", now)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, a.AttachOrder(newTestOrder(t), now))
	assert.ErrorIs(t, a.AttachOrder(newTestOrder(t), now), ErrInvalidTransition)
}

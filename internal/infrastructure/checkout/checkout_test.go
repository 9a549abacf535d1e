package checkout

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mataroo/mataroo/internal/shared/logger"
)

const testScriptURL = "https://checkout.razorpay.com/v1/checkout.js"

func testOptions(orderID string) Options {
	return Options{
		Key:         "rzp_test",
		Amount:      49900,
		Currency:    "INR",
		Name:        "Mataroo",
		Description: "Mataroo Pro Subscription - Monthly",
		OrderID:     orderID,
		ThemeColor:  "#6366f1",
	}
}

type recorder struct {
	completed []Response
	failed    []Failure
	dismissed int
}

func (r *recorder) handlers() Handlers {
	return Handlers{
		OnComplete: func(ctx context.Context, resp Response) error {
			r.completed = append(r.completed, resp)
			return nil
		},
		OnFailed: func(ctx context.Context, f Failure) error {
			r.failed = append(r.failed, f)
			return errors.New("payment failed")
		},
		OnDismiss: func(ctx context.Context) { r.dismissed++ },
	}
}

func TestScript_LoadIsIdempotentAndUnloadOnlyIfPresent(t *testing.T) {
	s := NewScript(testScriptURL)

	assert.False(t, s.Unload(), "nothing to remove before load")
	assert.True(t, s.Load())
	assert.False(t, s.Load())
	assert.Contains(t, string(s.Tag()), testScriptURL)

	assert.True(t, s.Unload())
	assert.False(t, s.Unload())
	assert.Empty(t, s.Tag())
}

func TestBrowserAdapter_OpenRendersPageAndOpensBrowser(t *testing.T) {
	var openedURL string
	b := NewBrowserAdapter(BrowserConfig{BaseURL: "http://127.0.0.1:3000/", ScriptURL: testScriptURL}, func(u string) error {
		openedURL = u
		return nil
	}, logger.NewNopLogger())

	rec := &recorder{}
	require.NoError(t, b.Open(context.Background(), testOptions("order_1"), rec.handlers()))
	assert.Equal(t, "http://127.0.0.1:3000/checkout/order_1", openedURL)
	assert.True(t, b.IsOpen("order_1"))

	page, err := b.RenderPage("order_1")
	require.NoError(t, err)
	html := string(page)
	assert.Equal(t, 1, strings.Count(html, testScriptURL), "script injected once")
	assert.Contains(t, html, `"order_id":"order_1"`)
	assert.Contains(t, html, `"amount":49900`)
	assert.Contains(t, html, "payment.failed")
	assert.Contains(t, html, "ondismiss")

	_, err = b.RenderPage("order_unknown")
	assert.ErrorIs(t, err, ErrUnknownOrder)
}

func TestBrowserAdapter_OpenerFailureIsNotFatal(t *testing.T) {
	b := NewBrowserAdapter(BrowserConfig{BaseURL: "http://localhost", ScriptURL: testScriptURL}, func(string) error {
		return errors.New("no display")
	}, logger.NewNopLogger())

	assert.NoError(t, b.Open(context.Background(), testOptions("order_1"), (&recorder{}).handlers()))
}

func TestBrowserAdapter_DeliversExactlyOneEventPerOpen(t *testing.T) {
	ctx := context.Background()
	b := NewBrowserAdapter(BrowserConfig{BaseURL: "http://localhost", ScriptURL: testScriptURL}, nil, logger.NewNopLogger())
	rec := &recorder{}
	require.NoError(t, b.Open(ctx, testOptions("order_1"), rec.handlers()))

	resp := Response{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig"}
	require.NoError(t, b.Complete(ctx, "order_1", resp))

	assert.ErrorIs(t, b.Complete(ctx, "order_1", resp), ErrUnknownOrder)
	assert.ErrorIs(t, b.Dismiss(ctx, "order_1"), ErrUnknownOrder)
	assert.Equal(t, []Response{resp}, rec.completed)
	assert.Zero(t, rec.dismissed)
}

func TestBrowserAdapter_FailAndDismiss(t *testing.T) {
	ctx := context.Background()
	b := NewBrowserAdapter(BrowserConfig{BaseURL: "http://localhost", ScriptURL: testScriptURL}, nil, logger.NewNopLogger())
	rec := &recorder{}

	require.NoError(t, b.Open(ctx, testOptions("o1"), rec.handlers()))
	require.NoError(t, b.Open(ctx, testOptions("o2"), rec.handlers()))

	err := b.Fail(ctx, "o1", Failure{Code: "BAD_REQUEST_ERROR", Description: "card declined"})
	assert.EqualError(t, err, "payment failed")
	require.NoError(t, b.Dismiss(ctx, "o2"))

	assert.Len(t, rec.failed, 1)
	assert.Equal(t, 1, rec.dismissed)
}

func TestBrowserAdapter_FailedPaymentClosesWidgetBeforeReporting(t *testing.T) {
	ctx := context.Background()
	b := NewBrowserAdapter(BrowserConfig{BaseURL: "http://localhost", ScriptURL: testScriptURL}, nil, logger.NewNopLogger())
	rec := &recorder{}
	require.NoError(t, b.Open(ctx, testOptions("order_1"), rec.handlers()))

	page, err := b.RenderPage("order_1")
	require.NoError(t, err)
	html := string(page)
	failedAt := strings.Index(html, `rzp.on("payment.failed"`)
	require.GreaterOrEqual(t, failedAt, 0)
	handler := html[failedAt:]
	closeAt := strings.Index(handler, "rzp.close()")
	postAt := strings.Index(handler, `post("/failed"`)
	require.GreaterOrEqual(t, closeAt, 0, "widget closed on payment.failed")
	assert.Less(t, closeAt, postAt, "widget closed before the failure is reported")

	require.Error(t, b.Fail(ctx, "order_1", Failure{Code: "BAD_REQUEST_ERROR", Description: "card declined"}))
	assert.False(t, b.IsOpen("order_1"))
	assert.ErrorIs(t, b.Complete(ctx, "order_1", Response{OrderID: "order_1", PaymentID: "pay_2", Signature: "sig"}), ErrUnknownOrder)
	assert.Empty(t, rec.completed)
}

func TestBrowserAdapter_CloseUnloadsScriptAndAbandonsWidgets(t *testing.T) {
	ctx := context.Background()
	b := NewBrowserAdapter(BrowserConfig{BaseURL: "http://localhost", ScriptURL: testScriptURL}, nil, logger.NewNopLogger())
	rec := &recorder{}
	require.NoError(t, b.Open(ctx, testOptions("o1"), rec.handlers()))
	require.True(t, b.script.Loaded())

	require.NoError(t, b.Close())
	assert.False(t, b.script.Loaded())
	assert.ErrorIs(t, b.Dismiss(ctx, "o1"), ErrClosed)
	assert.ErrorIs(t, b.Open(ctx, testOptions("o2"), rec.handlers()), ErrClosed)
	assert.Zero(t, rec.dismissed)
}

func TestFakeAdapter(t *testing.T) {
	ctx := context.Background()
	f := NewFakeAdapter()
	rec := &recorder{}

	require.NoError(t, f.Open(ctx, testOptions("o1"), rec.handlers()))
	assert.Len(t, f.Opened(), 1)
	require.NoError(t, f.Dismiss(ctx, "o1"))
	assert.ErrorIs(t, f.Dismiss(ctx, "o1"), ErrUnknownOrder)

	f.OpenErr = errors.New("script blocked")
	assert.Error(t, f.Open(ctx, testOptions("o2"), rec.handlers()))
}

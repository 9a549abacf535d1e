package checkout

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"sync"

	"github.com/mataroo/mataroo/internal/shared/logger"
)

// Opener shows a URL to the user, usually by launching their browser.
type Opener func(url string) error

// BrowserConfig configures the hosted checkout page.
type BrowserConfig struct {
	// BaseURL is where the local dashboard server is reachable.
	BaseURL   string
	ScriptURL string
}

type pendingCheckout struct {
	opts     Options
	handlers Handlers
}

// BrowserAdapter serves a checkout page per order from the local dashboard
// and relays the widget's events posted back by that page.
type BrowserAdapter struct {
	baseURL string
	script  *Script
	opener  Opener
	tmpl    *template.Template
	logger  logger.Interface

	mu      sync.Mutex
	pending map[string]*pendingCheckout
	closed  bool
}

func NewBrowserAdapter(cfg BrowserConfig, opener Opener, log logger.Interface) *BrowserAdapter {
	return &BrowserAdapter{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		script:  NewScript(cfg.ScriptURL),
		opener:  opener,
		tmpl:    template.Must(template.New("checkout").Parse(pageTemplate)),
		logger:  log,
		pending: make(map[string]*pendingCheckout),
	}
}

// CheckoutURL is the page that opens the widget for orderID.
func (b *BrowserAdapter) CheckoutURL(orderID string) string {
	return b.baseURL + "/checkout/" + url.PathEscape(orderID)
}

func (b *BrowserAdapter) Open(ctx context.Context, opts Options, h Handlers) error {
	if opts.OrderID == "" || opts.Key == "" {
		return fmt.Errorf("checkout options need an order id and key")
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	if b.script.Load() {
		b.logger.Debugw("checkout script loaded", "src", b.script.Src())
	}
	b.pending[opts.OrderID] = &pendingCheckout{opts: opts, handlers: h}
	b.mu.Unlock()

	target := b.CheckoutURL(opts.OrderID)
	b.logger.Infow("checkout opened", "order_id", opts.OrderID, "url", target)
	if b.opener != nil {
		if err := b.opener(target); err != nil {
			b.logger.Warnw("failed to open browser, visit the checkout URL manually", "url", target, "error", err)
		}
	}
	return nil
}

// Close abandons open widgets and unloads the gateway script.
func (b *BrowserAdapter) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if n := len(b.pending); n > 0 {
		b.logger.Infow("abandoning open checkouts", "count", n)
	}
	b.pending = make(map[string]*pendingCheckout)
	if b.script.Unload() {
		b.logger.Debugw("checkout script unloaded", "src", b.script.Src())
	}
	return nil
}

// IsOpen reports whether a widget for orderID is awaiting an event.
func (b *BrowserAdapter) IsOpen(orderID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.pending[orderID]
	return ok
}

type pageData struct {
	ScriptTag    template.HTML
	Options      Options
	ThemeColor   string
	CallbackBase string
}

// RenderPage renders the HTML page for an open checkout.
func (b *BrowserAdapter) RenderPage(orderID string) ([]byte, error) {
	b.mu.Lock()
	p, ok := b.pending[orderID]
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	if !ok {
		return nil, ErrUnknownOrder
	}

	var buf bytes.Buffer
	err := b.tmpl.Execute(&buf, pageData{
		ScriptTag:    b.script.Tag(),
		Options:      p.opts,
		ThemeColor:   p.opts.ThemeColor,
		CallbackBase: "/checkout/" + url.PathEscape(orderID),
	})
	if err != nil {
		return nil, fmt.Errorf("render checkout page: %w", err)
	}
	return buf.Bytes(), nil
}

// take removes the pending checkout so only the first event is delivered.
// The page closes the widget on payment.failed, so no completion can follow
// a failure for the same order.
func (b *BrowserAdapter) take(orderID string) (Handlers, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return Handlers{}, ErrClosed
	}
	p, ok := b.pending[orderID]
	if !ok {
		return Handlers{}, ErrUnknownOrder
	}
	delete(b.pending, orderID)
	return p.handlers, nil
}

func (b *BrowserAdapter) Complete(ctx context.Context, orderID string, resp Response) error {
	h, err := b.take(orderID)
	if err != nil {
		return err
	}
	return h.OnComplete(ctx, resp)
}

func (b *BrowserAdapter) Fail(ctx context.Context, orderID string, failure Failure) error {
	h, err := b.take(orderID)
	if err != nil {
		return err
	}
	return h.OnFailed(ctx, failure)
}

func (b *BrowserAdapter) Dismiss(ctx context.Context, orderID string) error {
	h, err := b.take(orderID)
	if err != nil {
		return err
	}
	h.OnDismiss(ctx)
	return nil
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Options.Name}} checkout</title>
{{.ScriptTag}}
</head>
<body style="font-family: system-ui, sans-serif; text-align: center; padding-top: 4rem">
<p id="status">Opening secure checkout...</p>
<script>
(function () {
  var base = {{.CallbackBase}};
  var opts = {{.Options}};
  var ended = false;
  function show(msg) { document.getElementById("status").textContent = msg; }
  function errorText(r, fallback) { return (r && r.error && r.error.message) || fallback; }
  function post(path, body) {
    return fetch(base + path, {
      method: "POST",
      headers: { "Content-Type": "application/json" },
      body: JSON.stringify(body || {})
    }).then(function (r) { return r.json(); });
  }
  opts.theme = { color: {{.ThemeColor}} };
  opts.handler = function (resp) {
    ended = true;
    show("Verifying payment...");
    post("/complete", resp).then(function (r) {
      show(r.success ? r.message : errorText(r, "Payment verification failed. Please contact support."));
    }, function () { show("Payment verification failed. Please contact support."); });
  };
  opts.modal = {
    ondismiss: function () {
      if (ended) { return; }
      ended = true;
      post("/dismiss").then(function () { show("Checkout closed. You can upgrade again from the dashboard."); });
    }
  };
  var rzp = new Razorpay(opts);
  // a failed payment ends this checkout; the widget must not accept a retry
  // for an order the dashboard has already released
  rzp.on("payment.failed", function (r) {
    if (ended) { return; }
    ended = true;
    rzp.close();
    post("/failed", r.error).then(function (x) { show(errorText(x, "Payment failed. Please try again.")); });
  });
  rzp.open();
})();
</script>
</body>
</html>
`

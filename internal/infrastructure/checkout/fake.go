package checkout

import (
	"context"
	"sync"
)

// FakeAdapter records opened widgets and lets tests fire their events.
type FakeAdapter struct {
	mu      sync.Mutex
	OpenErr error
	opened  []Options
	pending map[string]Handlers
	closed  bool
}

func NewFakeAdapter() *FakeAdapter {
	return &FakeAdapter{pending: make(map[string]Handlers)}
}

func (f *FakeAdapter) Open(ctx context.Context, opts Options, h Handlers) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	if f.OpenErr != nil {
		return f.OpenErr
	}
	f.opened = append(f.opened, opts)
	f.pending[opts.OrderID] = h
	return nil
}

func (f *FakeAdapter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.pending = make(map[string]Handlers)
	return nil
}

// Opened returns the options of every widget opened so far.
func (f *FakeAdapter) Opened() []Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Options, len(f.opened))
	copy(out, f.opened)
	return out
}

func (f *FakeAdapter) take(orderID string) (Handlers, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.pending[orderID]
	delete(f.pending, orderID)
	return h, ok
}

// Complete fires the completion handler for orderID.
func (f *FakeAdapter) Complete(ctx context.Context, orderID string, resp Response) error {
	h, ok := f.take(orderID)
	if !ok {
		return ErrUnknownOrder
	}
	return h.OnComplete(ctx, resp)
}

// Fail fires payment.failed for orderID.
func (f *FakeAdapter) Fail(ctx context.Context, orderID string, failure Failure) error {
	h, ok := f.take(orderID)
	if !ok {
		return ErrUnknownOrder
	}
	return h.OnFailed(ctx, failure)
}

// Dismiss closes the widget for orderID without paying.
func (f *FakeAdapter) Dismiss(ctx context.Context, orderID string) error {
	h, ok := f.take(orderID)
	if !ok {
		return ErrUnknownOrder
	}
	h.OnDismiss(ctx)
	return nil
}

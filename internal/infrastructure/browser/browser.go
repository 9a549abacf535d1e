// Package browser hands URLs to the user's desktop browser.
package browser

import (
	"context"
	"fmt"
	"io"

	pkgbrowser "github.com/pkg/browser"

	"github.com/mataroo/mataroo/internal/shared/logger"
)

func init() {
	// the launcher's own chatter would interleave with CLI output
	pkgbrowser.Stdout = io.Discard
	pkgbrowser.Stderr = io.Discard
}

var openURL = pkgbrowser.OpenURL

// Open launches the platform's URL handler for url.
func Open(url string) error {
	if err := openURL(url); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

// Redirector sends the user to an external page by opening it in the
// browser. When no browser can be launched the URL is still handed to
// Fallback so it can be shown for manual copy.
type Redirector struct {
	Open     func(url string) error
	Fallback func(url string)
	logger   logger.Interface
}

func NewRedirector(open func(url string) error, fallback func(url string), log logger.Interface) *Redirector {
	return &Redirector{Open: open, Fallback: fallback, logger: log}
}

func (r *Redirector) Redirect(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.Open == nil {
		r.fallback(url)
		return nil
	}
	if err := r.Open(url); err != nil {
		r.logger.Warnw("could not launch browser", "error", err)
		r.fallback(url)
	}
	return nil
}

func (r *Redirector) fallback(url string) {
	if r.Fallback != nil {
		r.Fallback(url)
	}
}

package usecases

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mataroo/mataroo/internal/domain/connection"
	"github.com/mataroo/mataroo/internal/shared/errors"
)

const (
	MessageTooManyRequests = "Too many requests. Please wait a moment and try again."
)

// ConnectionsQuery is the cached connection list.
type ConnectionsQuery interface {
	Get(ctx context.Context) (connection.List, error)
	Peek(ctx context.Context) (connection.List, bool)
	Refetch(ctx context.Context) (connection.List, error)
	Invalidate(ctx context.Context) error
	OptimisticUpdate(ctx context.Context, apply func(connection.List) connection.List, mutate func(ctx context.Context) error) error
}

// ConnectionAPI is the backend side of linking and unlinking accounts.
type ConnectionAPI interface {
	ConnectURL(ctx context.Context, platform connection.Platform) (string, error)
	Disconnect(ctx context.Context, platform connection.Platform) (string, error)
}

// Redirector hands the user to an external authorization page.
type Redirector interface {
	Redirect(ctx context.Context, url string) error
}

// friendlyError rewrites the two backend answers the connections card
// explains in its own words: throttling and "not connected".
func friendlyError(err error, platform connection.Platform) error {
	appErr := errors.GetAppError(err)
	if appErr == nil {
		return err
	}
	switch {
	case appErr.Type == errors.ErrorTypeRateLimited:
		return errors.NewRateLimitedError(MessageTooManyRequests, appErr.Message).WithCause(err)
	case platform != "" && isNotConnected(appErr):
		msg := fmt.Sprintf("%s is not connected", platform.DisplayName())
		return errors.NewNotFoundError(msg, appErr.Message).WithCause(err)
	}
	return err
}

func isNotConnected(appErr *errors.AppError) bool {
	if appErr.Type == errors.ErrorTypeNotFound {
		return true
	}
	msg := strings.ToLower(appErr.Message)
	return appErr.Code == http.StatusBadRequest && strings.Contains(msg, "not connected")
}

func parsePlatform(s string) (connection.Platform, error) {
	p, err := connection.ParsePlatform(s)
	if err != nil {
		return "", errors.NewValidationError("Unsupported platform", s)
	}
	return p, nil
}

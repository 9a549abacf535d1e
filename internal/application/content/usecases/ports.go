package usecases

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"github.com/mataroo/mataroo/internal/domain/connection"
	"github.com/mataroo/mataroo/internal/domain/content"
	"github.com/mataroo/mataroo/internal/shared/errors"
)

// ContentAPI is the backend's generation and publishing surface.
type ContentAPI interface {
	Generate(ctx context.Context, prompt string, platform connection.Platform) (*content.Draft, error)
	Publish(ctx context.Context, body, userPrompt string, hashtags []string, platform connection.Platform) (*content.Published, error)
	History(ctx context.Context, platform connection.Platform, limit int) ([]content.HistoryItem, error)
}

// ConnectionLister is the cached connection list. Get fetches when the
// entry is missing or stale.
type ConnectionLister interface {
	Get(ctx context.Context) (connection.List, error)
}

// SubscriptionInvalidator marks the cached subscription stale.
type SubscriptionInvalidator interface {
	Invalidate(ctx context.Context) error
}

var (
	validate = validator.New(validator.WithRequiredStructEnabled())
	// model output is shown in a browser page and a terminal; no markup survives
	textPolicy = bluemonday.StrictPolicy()
)

func sanitize(s string) string {
	return textPolicy.Sanitize(s)
}

func validationError(err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return errors.NewValidationError("Invalid "+fe.Field(), fe.Tag()+" "+fe.Param())
	}
	return errors.NewValidationError("Invalid request", err.Error())
}

func resolvePlatform(s string, def connection.Platform) (connection.Platform, error) {
	if s == "" {
		return def, nil
	}
	p, err := connection.ParsePlatform(s)
	if err != nil {
		return "", errors.NewValidationError("Unsupported platform", s)
	}
	return p, nil
}

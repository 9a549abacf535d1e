package usecases

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/mataroo/mataroo/internal/domain/connection"
	"github.com/mataroo/mataroo/internal/domain/content"
	"github.com/mataroo/mataroo/internal/shared/errors"
	"github.com/mataroo/mataroo/internal/shared/logger"
)

type PublishCommand struct {
	Content    string `validate:"required,min=1"`
	UserPrompt string
	Hashtags   []string
	Platform   string
}

// PublishUseCase posts a reviewed draft. Posting consumes allowance, so the
// subscription is invalidated after every successful publish.
type PublishUseCase struct {
	api             ContentAPI
	connections     ConnectionLister
	subscription    SubscriptionInvalidator
	defaultPlatform connection.Platform
	logger          logger.Interface
}

func NewPublishUseCase(
	api ContentAPI,
	connections ConnectionLister,
	subscription SubscriptionInvalidator,
	defaultPlatform connection.Platform,
	logger logger.Interface,
) *PublishUseCase {
	return &PublishUseCase{
		api:             api,
		connections:     connections,
		subscription:    subscription,
		defaultPlatform: defaultPlatform,
		logger:          logger,
	}
}

func (uc *PublishUseCase) Execute(ctx context.Context, cmd PublishCommand) (*content.Published, error) {
	cmd.Content = strings.TrimSpace(html.UnescapeString(sanitize(cmd.Content)))
	if err := validate.Struct(cmd); err != nil {
		return nil, validationError(err)
	}
	platform, err := resolvePlatform(cmd.Platform, uc.defaultPlatform)
	if err != nil {
		return nil, err
	}

	if limit := content.MaxLength(platform); limit > 0 && len([]rune(cmd.Content)) > limit {
		return nil, errors.NewValidationError(
			fmt.Sprintf("Post is too long for %s", platform.DisplayName()),
			fmt.Sprintf("%d characters, limit %d", len([]rune(cmd.Content)), limit),
		)
	}

	linked, err := uc.connections.Get(ctx)
	if err != nil {
		uc.logger.Warnw("failed to load connections before publish", "platform", platform, "error", err)
		return nil, fmt.Errorf("failed to check %s connection: %w", platform, err)
	}
	if !linked.IsConnected(platform) {
		return nil, errors.NewValidationError(fmt.Sprintf("Connect your %s account before posting", platform.DisplayName()))
	}

	published, err := uc.api.Publish(ctx, cmd.Content, cmd.UserPrompt, cmd.Hashtags, platform)
	if err != nil {
		uc.logger.Warnw("publish failed", "platform", platform, "error", err)
		return nil, fmt.Errorf("failed to publish: %w", err)
	}

	if err := uc.subscription.Invalidate(ctx); err != nil {
		uc.logger.Warnw("failed to invalidate subscription after publish", "error", err)
	}

	uc.logger.Infow("post published", "platform", platform, "post_id", published.PostID)
	return published, nil
}

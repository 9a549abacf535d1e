package usecases

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/mataroo/mataroo/internal/domain/connection"
	"github.com/mataroo/mataroo/internal/domain/content"
	"github.com/mataroo/mataroo/internal/shared/logger"
)

type GenerateCommand struct {
	Prompt   string `validate:"required,min=1,max=500"`
	Platform string
}

type GenerateUseCase struct {
	api             ContentAPI
	defaultPlatform connection.Platform
	logger          logger.Interface
}

func NewGenerateUseCase(api ContentAPI, defaultPlatform connection.Platform, logger logger.Interface) *GenerateUseCase {
	return &GenerateUseCase{
		api:             api,
		defaultPlatform: defaultPlatform,
		logger:          logger,
	}
}

func (uc *GenerateUseCase) Execute(ctx context.Context, cmd GenerateCommand) (*content.Draft, error) {
	cmd.Prompt = strings.TrimSpace(cmd.Prompt)
	if err := validate.Struct(cmd); err != nil {
		return nil, validationError(err)
	}
	platform, err := resolvePlatform(cmd.Platform, uc.defaultPlatform)
	if err != nil {
		return nil, err
	}

	draft, err := uc.api.Generate(ctx, cmd.Prompt, platform)
	if err != nil {
		uc.logger.Warnw("content generation failed", "platform", platform, "error", err)
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	// strict sanitising escapes entities; the draft is plain text
	draft.Content = html.UnescapeString(sanitize(draft.Content))
	draft.FinalContent = html.UnescapeString(sanitize(draft.FinalContent))
	for i, tag := range draft.Hashtags {
		draft.Hashtags[i] = html.UnescapeString(sanitize(tag))
	}
	draft.CharCount = len([]rune(draft.Body()))

	uc.logger.Infow("content generated", "platform", platform, "chars", draft.CharCount)
	return draft, nil
}

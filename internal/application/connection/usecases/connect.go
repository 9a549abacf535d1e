package usecases

import (
	"context"
	"fmt"

	"github.com/mataroo/mataroo/internal/application/connection/dto"
	"github.com/mataroo/mataroo/internal/shared/logger"
)

type ConnectCommand struct {
	Platform string
}

// ConnectUseCase starts the provider OAuth flow. It leaves the cache alone;
// the flow finishes when the provider redirects back to the dashboard.
type ConnectUseCase struct {
	api        ConnectionAPI
	redirector Redirector
	logger     logger.Interface
}

func NewConnectUseCase(api ConnectionAPI, redirector Redirector, logger logger.Interface) *ConnectUseCase {
	return &ConnectUseCase{
		api:        api,
		redirector: redirector,
		logger:     logger,
	}
}

func (uc *ConnectUseCase) Execute(ctx context.Context, cmd ConnectCommand) (*dto.ConnectResultDTO, error) {
	platform, err := parsePlatform(cmd.Platform)
	if err != nil {
		return nil, err
	}

	authURL, err := uc.api.ConnectURL(ctx, platform)
	if err != nil {
		uc.logger.Warnw("failed to start connect flow", "platform", platform, "error", err)
		return nil, friendlyError(err, "")
	}

	if uc.redirector != nil {
		if err := uc.redirector.Redirect(ctx, authURL); err != nil {
			return nil, fmt.Errorf("failed to open authorization page: %w", err)
		}
	}

	uc.logger.Infow("connect flow started", "platform", platform)
	return &dto.ConnectResultDTO{Platform: platform.String(), AuthURL: authURL}, nil
}

package usecases

import (
	"context"
	"strings"

	"github.com/mataroo/mataroo/internal/application/connection/dto"
	"github.com/mataroo/mataroo/internal/domain/connection"
	"github.com/mataroo/mataroo/internal/shared/logger"
)

// OAuthReturnCommand carries the query of the provider's redirect back to
// the settings page: ?connected=<platform> or ?error=<message>.
type OAuthReturnCommand struct {
	Connected string
	Error     string
}

type HandleOAuthReturnUseCase struct {
	query  ConnectionsQuery
	logger logger.Interface
}

func NewHandleOAuthReturnUseCase(query ConnectionsQuery, logger logger.Interface) *HandleOAuthReturnUseCase {
	return &HandleOAuthReturnUseCase{
		query:  query,
		logger: logger,
	}
}

func (uc *HandleOAuthReturnUseCase) Execute(ctx context.Context, cmd OAuthReturnCommand) *dto.OAuthReturnDTO {
	// the provider may have changed the list whatever it reported
	if err := uc.query.Invalidate(ctx); err != nil {
		uc.logger.Warnw("failed to invalidate connections", "error", err)
	}

	if msg := strings.TrimSpace(cmd.Error); msg != "" {
		uc.logger.Warnw("oauth connect failed", "error", msg)
		return &dto.OAuthReturnDTO{Success: false, Message: "Failed to connect account: " + msg}
	}

	raw := strings.TrimSpace(cmd.Connected)
	if raw == "" {
		return &dto.OAuthReturnDTO{Success: false, Message: "No account was connected"}
	}
	p, err := connection.ParsePlatform(raw)
	if err != nil {
		uc.logger.Warnw("oauth return for unsupported platform", "platform", raw)
		return &dto.OAuthReturnDTO{Success: false, Message: "Unsupported platform: " + raw}
	}
	uc.logger.Infow("oauth connect completed", "platform", p)
	return &dto.OAuthReturnDTO{
		Platform: p.String(),
		Success:  true,
		Message:  p.DisplayName() + " account connected",
	}
}

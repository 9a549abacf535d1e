package usecases

import (
	"context"

	"github.com/mataroo/mataroo/internal/application/connection/dto"
	"github.com/mataroo/mataroo/internal/domain/connection"
	"github.com/mataroo/mataroo/internal/shared/logger"
)

type DisconnectCommand struct {
	Platform string
}

// DisconnectUseCase removes a linked account optimistically: the entry
// disappears from the cache before the backend answers, an error restores
// the exact previous list, and the list is refetched either way.
//
// Concurrent disconnects of the same platform are not deduplicated.
type DisconnectUseCase struct {
	query  ConnectionsQuery
	api    ConnectionAPI
	logger logger.Interface
}

func NewDisconnectUseCase(query ConnectionsQuery, api ConnectionAPI, logger logger.Interface) *DisconnectUseCase {
	return &DisconnectUseCase{
		query:  query,
		api:    api,
		logger: logger,
	}
}

func (uc *DisconnectUseCase) Execute(ctx context.Context, cmd DisconnectCommand) (*dto.DisconnectResultDTO, error) {
	platform, err := parsePlatform(cmd.Platform)
	if err != nil {
		return nil, err
	}

	var serverMessage string
	err = uc.query.OptimisticUpdate(ctx,
		func(current connection.List) connection.List {
			return current.Without(platform)
		},
		func(ctx context.Context) error {
			msg, err := uc.api.Disconnect(ctx, platform)
			serverMessage = msg
			return err
		},
	)
	if err != nil {
		uc.logger.Warnw("disconnect failed, rolled back", "platform", platform, "error", err)
		return nil, friendlyError(err, platform)
	}

	message := serverMessage
	if message == "" {
		message = platform.DisplayName() + " account disconnected"
	}
	uc.logger.Infow("account disconnected", "platform", platform)
	return &dto.DisconnectResultDTO{Platform: platform.String(), Message: message}, nil
}

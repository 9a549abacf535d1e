package usecases

import (
	"context"

	"github.com/mataroo/mataroo/internal/application/connection/dto"
	"github.com/mataroo/mataroo/internal/domain/connection"
	"github.com/mataroo/mataroo/internal/shared/logger"
)

type ListConnectionsQuery struct {
	Fresh bool
}

type ListConnectionsUseCase struct {
	query  ConnectionsQuery
	logger logger.Interface
}

func NewListConnectionsUseCase(query ConnectionsQuery, logger logger.Interface) *ListConnectionsUseCase {
	return &ListConnectionsUseCase{
		query:  query,
		logger: logger,
	}
}

func (uc *ListConnectionsUseCase) Execute(ctx context.Context, q ListConnectionsQuery) (*dto.ConnectionsDTO, error) {
	var (
		list connection.List
		err  error
	)
	if q.Fresh {
		list, err = uc.query.Refetch(ctx)
	} else {
		list, err = uc.query.Get(ctx)
	}
	if err != nil {
		uc.logger.Warnw("failed to list connections", "error", err)
		return nil, friendlyError(err, "")
	}
	return dto.ToConnectionsDTO(list), nil
}

// IsConnected answers from the cache only. It is false while the list is
// empty, still loading, or unreadable, and never fails.
func (uc *ListConnectionsUseCase) IsConnected(ctx context.Context, platform connection.Platform) bool {
	list, ok := uc.query.Peek(ctx)
	if !ok {
		return false
	}
	return list.IsConnected(platform)
}

package usecases

import (
	"context"
	"fmt"

	"github.com/mataroo/mataroo/internal/domain/content"
	"github.com/mataroo/mataroo/internal/shared/logger"
)

type HistoryQuery struct {
	Platform string
	Limit    int `validate:"gte=0,lte=200"`
}

type HistoryUseCase struct {
	api          ContentAPI
	defaultLimit int
	logger       logger.Interface
}

func NewHistoryUseCase(api ContentAPI, defaultLimit int, logger logger.Interface) *HistoryUseCase {
	return &HistoryUseCase{
		api:          api,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

func (uc *HistoryUseCase) Execute(ctx context.Context, q HistoryQuery) ([]content.HistoryItem, error) {
	if err := validate.Struct(q); err != nil {
		return nil, validationError(err)
	}
	// an empty platform lists every platform
	platform, err := resolvePlatform(q.Platform, "")
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit == 0 {
		limit = uc.defaultLimit
	}

	items, err := uc.api.History(ctx, platform, limit)
	if err != nil {
		uc.logger.Warnw("failed to load history", "platform", platform, "error", err)
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return items, nil
}

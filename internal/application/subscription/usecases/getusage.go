package usecases

import (
	"context"
	"fmt"

	"github.com/mataroo/mataroo/internal/application/subscription/dto"
	"github.com/mataroo/mataroo/internal/domain/subscription"
	"github.com/mataroo/mataroo/internal/shared/logger"
)

// SubscriptionQuery is the cached subscription status.
type SubscriptionQuery interface {
	Get(ctx context.Context) (*subscription.Subscription, error)
	Refetch(ctx context.Context) (*subscription.Subscription, error)
	Invalidate(ctx context.Context) error
}

type GetUsageQuery struct {
	// Fresh bypasses the staleness window.
	Fresh bool
}

type GetUsageUseCase struct {
	query  SubscriptionQuery
	logger logger.Interface
}

func NewGetUsageUseCase(query SubscriptionQuery, logger logger.Interface) *GetUsageUseCase {
	return &GetUsageUseCase{
		query:  query,
		logger: logger,
	}
}

func (uc *GetUsageUseCase) Execute(ctx context.Context, q GetUsageQuery) (*dto.UsageDTO, error) {
	var (
		sub *subscription.Subscription
		err error
	)
	if q.Fresh {
		sub, err = uc.query.Refetch(ctx)
	} else {
		sub, err = uc.query.Get(ctx)
	}
	if err != nil {
		uc.logger.Warnw("failed to load subscription", "error", err)
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	return dto.ToUsageDTO(sub), nil
}

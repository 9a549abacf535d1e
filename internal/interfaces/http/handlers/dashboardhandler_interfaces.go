package handlers

import (
	"context"

	conndto "github.com/mataroo/mataroo/internal/application/connection/dto"
	connusecases "github.com/mataroo/mataroo/internal/application/connection/usecases"
	paydto "github.com/mataroo/mataroo/internal/application/payment/dto"
	subdto "github.com/mataroo/mataroo/internal/application/subscription/dto"
	subusecases "github.com/mataroo/mataroo/internal/application/subscription/usecases"
	"github.com/mataroo/mataroo/internal/infrastructure/checkout"
)

// Use case interfaces for DashboardHandler

type getUsageUseCase interface {
	Execute(ctx context.Context, q subusecases.GetUsageQuery) (*subdto.UsageDTO, error)
}

type listConnectionsUseCase interface {
	Execute(ctx context.Context, q connusecases.ListConnectionsQuery) (*conndto.ConnectionsDTO, error)
}

type connectUseCase interface {
	Execute(ctx context.Context, cmd connusecases.ConnectCommand) (*conndto.ConnectResultDTO, error)
}

type disconnectUseCase interface {
	Execute(ctx context.Context, cmd connusecases.DisconnectCommand) (*conndto.DisconnectResultDTO, error)
}

type upgradeFlow interface {
	Start(ctx context.Context) (*paydto.AttemptDTO, error)
	Current() *paydto.AttemptDTO
}

// Interfaces for CheckoutHandler and SettingsHandler

type checkoutPage interface {
	RenderPage(orderID string) ([]byte, error)
	CheckoutURL(orderID string) string
	Complete(ctx context.Context, orderID string, resp checkout.Response) error
	Fail(ctx context.Context, orderID string, failure checkout.Failure) error
	Dismiss(ctx context.Context, orderID string) error
}

type oauthReturnUseCase interface {
	Execute(ctx context.Context, cmd connusecases.OAuthReturnCommand) *conndto.OAuthReturnDTO
}

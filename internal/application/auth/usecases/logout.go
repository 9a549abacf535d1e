package usecases

import (
	"context"
	"fmt"

	"github.com/mataroo/mataroo/internal/infrastructure/auth"
	"github.com/mataroo/mataroo/internal/shared/logger"
)

type LogoutUseCase struct {
	provider IdentityProvider
	store    auth.SessionStore
	logger   logger.Interface
}

func NewLogoutUseCase(provider IdentityProvider, store auth.SessionStore, logger logger.Interface) *LogoutUseCase {
	return &LogoutUseCase{
		provider: provider,
		store:    store,
		logger:   logger,
	}
}

// Execute revokes the session server-side when possible and always forgets
// it locally.
func (uc *LogoutUseCase) Execute(ctx context.Context) error {
	sess, err := uc.store.Load()
	if err != nil {
		uc.logger.Warnw("failed to read session before logout", "error", err)
	}
	if sess != nil {
		if err := uc.provider.SignOut(ctx, sess.AccessToken); err != nil {
			uc.logger.Warnw("server-side sign out failed", "error", err)
		}
	}

	if err := uc.store.Clear(); err != nil {
		uc.logger.Errorw("failed to delete session", "error", err)
		return fmt.Errorf("failed to logout: %w", err)
	}

	uc.logger.Infow("user logged out successfully")
	return nil
}

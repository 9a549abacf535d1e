package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mataroo/mataroo/internal/infrastructure/auth"
	"github.com/mataroo/mataroo/internal/shared/errors"
	"github.com/mataroo/mataroo/internal/shared/logger"
)

// IdentityProvider signs users in and out of the auth provider.
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*auth.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

type LoginCommand struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type LoginResult struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

type LoginUseCase struct {
	provider IdentityProvider
	store    auth.SessionStore
	validate *validator.Validate
	logger   logger.Interface
}

func NewLoginUseCase(provider IdentityProvider, store auth.SessionStore, logger logger.Interface) *LoginUseCase {
	return &LoginUseCase{
		provider: provider,
		store:    store,
		validate: validator.New(),
		logger:   logger,
	}
}

func (uc *LoginUseCase) Execute(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	cmd.Email = strings.TrimSpace(cmd.Email)
	if err := uc.validate.Struct(cmd); err != nil {
		return nil, errors.NewValidationError("Email and password are required", err.Error())
	}

	sess, err := uc.provider.SignInWithPassword(ctx, cmd.Email, cmd.Password)
	if err != nil {
		return nil, err
	}
	if sess.Email == "" {
		sess.Email = cmd.Email
	}
	if err := uc.store.Save(sess); err != nil {
		uc.logger.Errorw("failed to save session", "error", err)
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	uc.logger.Infow("user logged in successfully", "user_id", sess.UserID)
	return &LoginResult{UserID: sess.UserID, Email: sess.Email, ExpiresAt: sess.ExpiresAt}, nil
}

package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/mataroo/mataroo/internal/shared/biztime"
	apperrors "github.com/mataroo/mataroo/internal/shared/errors"
	"github.com/mataroo/mataroo/internal/shared/logger"
)

// Refresher renews a session from its refresh token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
}

// SessionTokenSource yields the stored session's access token, refreshing it
// when it is within leeway of expiry. With no stored session it fails with an
// unauthenticated error.
type SessionTokenSource struct {
	ctx       context.Context
	store     SessionStore
	refresher Refresher
	leeway    time.Duration
	now       func() time.Time
	logger    logger.Interface
	mu        sync.Mutex
}

// NewSessionTokenSource returns the raw source. Most callers want
// NewTokenSource, which also caches the token in memory.
func NewSessionTokenSource(ctx context.Context, store SessionStore, refresher Refresher, leeway time.Duration, log logger.Interface) *SessionTokenSource {
	return &SessionTokenSource{
		ctx:       ctx,
		store:     store,
		refresher: refresher,
		leeway:    leeway,
		now:       biztime.NowUTC,
		logger:    log,
	}
}

// NewTokenSource wraps the session source so the file is only re-read once
// the cached token nears expiry.
func NewTokenSource(ctx context.Context, store SessionStore, refresher Refresher, leeway time.Duration, log logger.Interface) oauth2.TokenSource {
	return oauth2.ReuseTokenSourceWithExpiry(nil, NewSessionTokenSource(ctx, store, refresher, leeway, log), leeway)
}

func (s *SessionTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.store.Load()
	if err != nil {
		s.logger.Warnw("failed to load session", "error", err)
		return nil, apperrors.NewUnauthenticatedError(err.Error())
	}
	if sess == nil {
		return nil, apperrors.NewUnauthenticatedError()
	}
	if !sess.ExpiresWithin(s.leeway, s.now()) {
		return sess.Token(), nil
	}

	if sess.RefreshToken == "" || s.refresher == nil {
		return nil, apperrors.NewSessionExpiredError()
	}

	refreshed, err := s.refresher.Refresh(s.ctx, sess.RefreshToken)
	if err != nil {
		s.logger.Warnw("session refresh failed", "user_id", sess.UserID, "error", err)
		if apperrors.IsUnauthenticated(err) {
			// the refresh token is spent; force a fresh login
			if clearErr := s.store.Clear(); clearErr != nil {
				s.logger.Warnw("failed to clear session", "error", clearErr)
			}
		}
		return nil, err
	}
	if err := s.store.Save(refreshed); err != nil {
		s.logger.Errorw("failed to persist refreshed session", "error", err)
	}

	s.logger.Debugw("session refreshed", "user_id", refreshed.UserID, "expires_at", refreshed.ExpiresAt)
	return refreshed.Token(), nil
}

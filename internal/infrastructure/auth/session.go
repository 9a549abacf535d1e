package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Session is the auth provider session persisted between CLI invocations.
type Session struct {
	AccessToken  string    `yaml:"access_token"`
	RefreshToken string    `yaml:"refresh_token"`
	TokenType    string    `yaml:"token_type"`
	ExpiresAt    time.Time `yaml:"expires_at"`
	UserID       string    `yaml:"user_id,omitempty"`
	Email        string    `yaml:"email,omitempty"`
}

// sessionClaims are the fields read from the provider's access token.
// The signature is not checked here; the backend verifies every token.
type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// NewSession builds a session from a token pair, taking expiry, subject and
// email from the access token's claims.
func NewSession(accessToken, refreshToken, tokenType string) (*Session, error) {
	claims := &sessionClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("access token has no expiry")
	}
	if tokenType == "" {
		tokenType = "bearer"
	}
	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    tokenType,
		ExpiresAt:    exp.Time.UTC(),
		UserID:       claims.Subject,
		Email:        claims.Email,
	}, nil
}

// ExpiresWithin reports whether the access token is expired or will be within d.
func (s *Session) ExpiresWithin(d time.Duration, now time.Time) bool {
	return !now.Add(d).Before(s.ExpiresAt)
}

// Token converts the session into an oauth2 token for request signing.
func (s *Session) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		TokenType:    s.TokenType,
		RefreshToken: s.RefreshToken,
		Expiry:       s.ExpiresAt,
	}
}

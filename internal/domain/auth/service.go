package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const SessionTTL = 12 * time.Hour

// UserContext is the authenticated identity attached to a request by
// the HTTP middleware.
type UserContext struct {
	UserID    string
	Role      string
	SessionID string
	Token     string
}

type LoginResult struct {
	Token   string  `json:"token"`
	Profile Profile `json:"profile"`
	// Home is the role landing page the SPA navigates to after login
	// when no last path is remembered.
	Home string `json:"home"`
}

type Service struct {
	Store  *Store
	Secret string
}

func NewService(store *Store, secret string) *Service {
	return &Service{Store: store, Secret: secret}
}

// Login verifies credentials, opens a session, and returns a signed
// access token. Unknown emails and wrong passwords are indistinguishable
// to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.Store.FindActiveUserByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}

	if err := CheckPassword(user.Password, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.Secret, Claims{UserID: user.ID, Role: user.Role}, SessionTTL)
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.Store.CreateSession(ctx, user.ID, HashToken(token), time.Now().Add(SessionTTL)); err != nil {
		return LoginResult{}, err
	}

	if err := s.Store.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("last login update failed", "err", err)
	}

	profile, err := s.Store.Profile(ctx, user.ID)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{Token: token, Profile: profile, Home: "/" + user.Role}, nil
}

func (s *Service) Logout(ctx context.Context, user UserContext) error {
	return s.Store.RevokeSession(ctx, user.UserID, HashToken(user.Token))
}

func (s *Service) Profile(ctx context.Context, userID string) (Profile, error) {
	return s.Store.Profile(ctx, userID)
}

// SessionValid checks that the presented token still backs a live,
// unrevoked session. Called by the middleware on every request so a
// logout takes effect immediately, not at token expiry.
func (s *Service) SessionValid(ctx context.Context, userID, token string) (bool, error) {
	return s.Store.SessionValid(ctx, userID, HashToken(token))
}

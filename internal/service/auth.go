package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arca-mz/storefront/internal/arca"
	"github.com/arca-mz/storefront/internal/repository"
	apperrors "github.com/arca-mz/storefront/pkg/errors"
)

// AuthAPI is the slice of the core API client the auth flow needs.
type AuthAPI interface {
	Login(ctx context.Context, creds arca.Credentials) (*arca.TokenResponse, error)
	Register(ctx context.Context, reg arca.Registration) (*arca.TokenResponse, error)
	Me(ctx context.Context, token string) (*arca.User, error)
}

// AuthService exchanges credentials with the core API and keeps the
// resulting bearer token under the session, so the browser never holds it.
type AuthService struct {
	core   AuthAPI
	tokens repository.TokenRepository
	logger *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(core AuthAPI, tokens repository.TokenRepository, logger *slog.Logger) *AuthService {
	return &AuthService{
		core:   core,
		tokens: tokens,
		logger: logger,
	}
}

// Login authenticates against the core API and stores the token for the
// session. The profile of the freshly logged-in account is returned.
func (s *AuthService) Login(ctx context.Context, sessionID string, creds arca.Credentials) (*arca.User, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	tok, err := s.core.Login(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("core api login: %w", err)
	}

	if err := s.tokens.Save(ctx, sessionID, tok.AccessToken); err != nil {
		return nil, fmt.Errorf("save session token: %w", err)
	}

	user, err := s.core.Me(ctx, tok.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch profile after login: %w", err)
	}

	s.logger.InfoContext(ctx, "session logged in",
		slog.String("session_id", sessionID),
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// Register creates an account on the core API and logs the session in.
func (s *AuthService) Register(ctx context.Context, sessionID string, reg arca.Registration) (*arca.User, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	tok, err := s.core.Register(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("core api register: %w", err)
	}

	if err := s.tokens.Save(ctx, sessionID, tok.AccessToken); err != nil {
		return nil, fmt.Errorf("save session token: %w", err)
	}

	user, err := s.core.Me(ctx, tok.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch profile after register: %w", err)
	}

	s.logger.InfoContext(ctx, "session registered",
		slog.String("session_id", sessionID),
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// Logout drops the session's token. Logging out a session that was never
// logged in is a no-op.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.InvalidInput("session id is required")
	}

	if err := s.tokens.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session token: %w", err)
	}

	s.logger.InfoContext(ctx, "session logged out",
		slog.String("session_id", sessionID),
	)

	return nil
}

// Me returns the profile behind the session's token.
func (s *AuthService) Me(ctx context.Context, sessionID string) (*arca.User, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	token, err := s.tokens.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	user, err := s.core.Me(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	return user, nil
}

// Token returns the session's raw bearer token for proxied account calls.
func (s *AuthService) Token(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", apperrors.InvalidInput("session id is required")
	}
	return s.tokens.Get(ctx, sessionID)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"splitshare/internal/auth"
	"splitshare/internal/models"
	"splitshare/internal/storage"
)

// AuthService implements registration and login, issuing session tokens.
type AuthService struct {
	authenticator auth.Authenticator
	tokens        *auth.JWTManager
	store         storage.Store
}

// NewAuthService creates a new AuthService.
func NewAuthService(authenticator auth.Authenticator, tokens *auth.JWTManager, store storage.Store) *AuthService {
	return &AuthService{authenticator: authenticator, tokens: tokens, store: store}
}

// Register creates a new account and returns the user with a session
// token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	if name == "" || email == "" {
		return nil, "", validationError("name and email are required")
	}
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.authenticator.Register(ctx, email, name, password)
	if errors.Is(err, auth.ErrWeakPassword) || errors.Is(err, auth.ErrEmailExists) {
		return nil, "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to register: %w", err)
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	slog.Info("user registered", "user_id", user.ID)
	return user, token, nil
}

// Login verifies credentials and returns the user with a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.authenticator.Authenticate(ctx, email, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return nil, "", ErrNotAuthorized
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to authenticate: %w", err)
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	slog.Info("user logged in", "user_id", user.ID)
	return user, token, nil
}

// CurrentUser returns the account behind an authenticated user id.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

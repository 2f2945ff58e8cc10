package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/a-bjn/sudexpert-storefront/internal/storefront/backend"
	"github.com/a-bjn/sudexpert-storefront/internal/storefront/domain"
	"github.com/a-bjn/sudexpert-storefront/internal/storefront/repository"
	apperrors "github.com/a-bjn/sudexpert-storefront/pkg/errors"
)

// RegisterInput holds the parameters for creating a new account.
type RegisterInput struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

// LoginInput holds the parameters for authenticating.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthService manages the session's backend credentials.
//
// The token and email are written and removed together so a session never
// observes a token without its matching account email.
type AuthService struct {
	store   repository.KeyValueStore
	backend *backend.Client
	logger  *slog.Logger
	now     func() time.Time
}

// NewAuthService creates a new auth service.
func NewAuthService(store repository.KeyValueStore, backend *backend.Client, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:   store,
		backend: backend,
		logger:  logger,
		now:     time.Now,
	}
}

// Register creates a backend account and stores the returned credentials.
func (s *AuthService) Register(ctx context.Context, sessionID string, input RegisterInput) (*domain.Credentials, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	resp, err := s.backend.Register(ctx, backend.RegisterInput{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  input.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("register account: %w", err)
	}

	creds := &domain.Credentials{Token: resp.Token, Email: input.Email}
	if err := s.saveCredentials(ctx, sessionID, creds); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "account registered",
		slog.String("session_id", sessionID),
		slog.String("email", input.Email),
	)

	return creds, nil
}

// Login authenticates against the backend and stores the returned credentials.
func (s *AuthService) Login(ctx context.Context, sessionID string, input LoginInput) (*domain.Credentials, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	resp, err := s.backend.Authenticate(ctx, input.Email, input.Password)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	creds := &domain.Credentials{Token: resp.Token, Email: input.Email}
	if err := s.saveCredentials(ctx, sessionID, creds); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "session logged in",
		slog.String("session_id", sessionID),
		slog.String("email", input.Email),
	)

	return creds, nil
}

// Logout discards the session's credentials. Logging out a session that is
// not logged in is a no-op.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.InvalidInput("session id is required")
	}

	if err := s.ClearCredentials(ctx, sessionID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "session logged out", slog.String("session_id", sessionID))

	return nil
}

// Session returns the stored credentials for the session. A session with no
// stored token, or with a token whose expiry has passed, yields unauthenticated
// credentials; an expired token is removed from the store on sight.
func (s *AuthService) Session(ctx context.Context, sessionID string) (*domain.Credentials, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	token, err := s.store.Read(ctx, repository.KeyPrefixToken+sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.Credentials{}, nil
		}
		return nil, fmt.Errorf("read token: %w", err)
	}

	if s.tokenExpired(token) {
		s.logger.InfoContext(ctx, "discarding expired token", slog.String("session_id", sessionID))
		if err := s.ClearCredentials(ctx, sessionID); err != nil {
			return nil, err
		}
		return &domain.Credentials{}, nil
	}

	email, err := s.store.Read(ctx, repository.KeyPrefixEmail+sessionID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("read email: %w", err)
	}

	return &domain.Credentials{Token: token, Email: email}, nil
}

// Token returns the stored bearer token for the session, or an empty string
// when the session is not authenticated.
func (s *AuthService) Token(ctx context.Context, sessionID string) (string, error) {
	creds, err := s.Session(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return creds.Token, nil
}

// ClearCredentials removes the session's token and email together.
func (s *AuthService) ClearCredentials(ctx context.Context, sessionID string) error {
	if err := s.store.Remove(ctx, repository.KeyPrefixToken+sessionID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("remove token: %w", err)
	}
	if err := s.store.Remove(ctx, repository.KeyPrefixEmail+sessionID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("remove email: %w", err)
	}
	return nil
}

func (s *AuthService) saveCredentials(ctx context.Context, sessionID string, creds *domain.Credentials) error {
	if err := s.store.Write(ctx, repository.KeyPrefixToken+sessionID, creds.Token); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	if err := s.store.Write(ctx, repository.KeyPrefixEmail+sessionID, creds.Email); err != nil {
		// Roll back the token so the pair stays consistent.
		if rmErr := s.store.Remove(ctx, repository.KeyPrefixToken+sessionID); rmErr != nil && !errors.Is(rmErr, apperrors.ErrNotFound) {
			s.logger.ErrorContext(ctx, "failed to roll back token after email write failure",
				slog.String("error", rmErr.Error()),
			)
		}
		return fmt.Errorf("write email: %w", err)
	}
	return nil
}

// tokenExpired inspects the token's exp claim without verifying the signature.
// The backend verifies signatures on every request; here we only want to drop
// tokens the backend is guaranteed to reject. Tokens that do not parse or carry
// no exp claim are left for the backend to judge.
func (s *AuthService) tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(s.now())
}

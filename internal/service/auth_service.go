package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/school-api/internal/auth"
	"github.com/spec-kit/school-api/internal/config"
	"github.com/spec-kit/school-api/internal/domain"
	"github.com/spec-kit/school-api/internal/events"
	"github.com/spec-kit/school-api/internal/repository"
	"github.com/spec-kit/school-api/internal/validation"
	apperrors "github.com/spec-kit/school-api/pkg/util"
)

// LoginResult bundles the minted token with the sanitized principal summary.
type LoginResult struct {
	Principal domain.Principal
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates the login flow.
type AuthService struct {
	principals repository.PrincipalRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, principals repository.PrincipalRepository, dispatcher events.Dispatcher) *AuthService {
	return &AuthService{
		principals: principals,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLHours),
		dispatcher: dispatcher,
	}
}

// Login authenticates a principal against its role table and mints a token.
// Lookup misses and hash mismatches produce the same uniform failure.
func (s *AuthService) Login(ctx context.Context, email, password, userType string) (*LoginResult, error) {
	if email == "" || password == "" || userType == "" {
		return nil, apperrors.NewValidationError("email, password, and userType are required", nil)
	}
	if !validation.ValidEmail(email) {
		return nil, apperrors.NewValidationError("invalid email format", nil)
	}
	role, err := domain.ParseRole(userType)
	if err != nil {
		return nil, apperrors.NewUnknownUserType(userType)
	}

	cred, err := s.principals.GetCredentialByEmail(ctx, role, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(cred.PasswordHash, password); err != nil {
		return nil, apperrors.NewInvalidCredentials()
	}

	token, expiresAt, err := s.tokenMgr.GenerateToken(cred.ID, role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventUserLoggedIn,
			Actor:     events.Actor{Role: role, ID: cred.ID},
			Timestamp: time.Now(),
			Payload:   events.UserLoggedInPayload{Email: cred.Email, Role: role},
		})
	}

	return &LoginResult{
		Principal: domain.Principal{
			ID:      cred.ID,
			Email:   cred.Email,
			Name:    cred.Name,
			Surname: cred.Surname,
			Role:    role,
		},
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

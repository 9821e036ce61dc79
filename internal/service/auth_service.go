package service

import (
	"context"
	"strings"

	"github.com/gastos-app/gastos-gateway/internal/domain"
	"github.com/gastos-app/gastos-gateway/internal/port"
	"github.com/gastos-app/gastos-gateway/internal/session"

	"go.uber.org/zap"
)

const minPasswordLength = 6

// AuthService validates credential payloads and forwards them upstream.
// Passwords are never stored, hashed or logged here.
type AuthService struct {
	gateway port.AuthGateway
	logger  *zap.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(gateway port.AuthGateway, logger *zap.Logger) *AuthService {
	return &AuthService{gateway: gateway, logger: logger}
}

// validEmail does the same cheap shape check a login form does. Real
// verification is the backend's job.
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return strings.Contains(email[at+1:], ".")
}

// Login exchanges credentials for a session token.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	if !validEmail(req.Email) {
		return nil, &domain.ErrValidation{Field: "email", Message: "invalid email address"}
	}
	if req.Password == "" {
		return nil, &domain.ErrValidation{Field: "password", Message: "required"}
	}

	resp, err := s.gateway.Login(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.Email == "" {
		// Best effort; many backends issue opaque tokens with no claims.
		resp.Email = session.DecodeEmailClaim(resp.Token)
	}

	s.logger.Info("login succeeded", zap.String("email", req.Email))
	return resp, nil
}

// Register creates a new account.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.RegisterResponse, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Register")
	defer span.End()

	if !validEmail(req.Email) {
		return nil, &domain.ErrValidation{Field: "email", Message: "invalid email address"}
	}
	if len(req.Password) < minPasswordLength {
		return nil, &domain.ErrValidation{Field: "password", Message: "must be at least 6 characters"}
	}

	resp, err := s.gateway.Register(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("account registered", zap.String("email", req.Email))
	return resp, nil
}

// UpdateProfile changes the account email and optionally the password.
func (s *AuthService) UpdateProfile(ctx context.Context, token string, req domain.UpdateProfileRequest) (*domain.UpdateProfileResponse, error) {
	ctx, span := tracer.Start(ctx, "AuthService.UpdateProfile")
	defer span.End()

	if !validEmail(req.Email) {
		return nil, &domain.ErrValidation{Field: "email", Message: "invalid email address"}
	}
	if req.Password != "" && len(req.Password) < minPasswordLength {
		return nil, &domain.ErrValidation{Field: "password", Message: "must be at least 6 characters"}
	}

	return s.gateway.UpdateProfile(ctx, token, req)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/blood_bank_app/internal/apperrors"
	portssvc "github.com/SscSPs/blood_bank_app/internal/core/ports/services"
	"github.com/SscSPs/blood_bank_app/internal/dto"
	"github.com/SscSPs/blood_bank_app/internal/platform/config"
	"github.com/SscSPs/blood_bank_app/internal/utils"
)

// authService issues access tokens for directory accounts.
type authService struct {
	BaseService
	cfg        *config.Config
	accountSvc portssvc.AccountAuthenticatorSvc
}

// NewAuthService creates a new instance of authService.
func NewAuthService(cfg *config.Config, accountSvc portssvc.AccountAuthenticatorSvc) portssvc.AuthSvcFacade {
	return &authService{
		cfg:        cfg,
		accountSvc: accountSvc,
	}
}

// Login verifies credentials and returns a signed access token.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	account, err := s.accountSvc.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			s.LogInfo(ctx, "Login rejected")
		}
		return nil, err
	}

	token, expiresAt, err := utils.GenerateJWT(account.AccountID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate access token", slog.String("account_id", account.AccountID))
		return nil, fmt.Errorf("%w: failed to generate access token", apperrors.ErrInternal)
	}

	s.LogInfo(ctx, "Login succeeded", slog.String("account_id", account.AccountID))
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Account:   dto.ToAccountResponse(account),
	}, nil
}

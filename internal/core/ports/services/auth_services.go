package services

import (
	"context"

	"github.com/SscSPs/blood_bank_app/internal/dto"
)

// AuthSvcFacade issues bearer tokens for directory accounts.
type AuthSvcFacade interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
}

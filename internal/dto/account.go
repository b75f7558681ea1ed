package dto

import (
	"time"

	"github.com/SscSPs/blood_bank_app/internal/core/domain"
)

// RegisterAccountRequest defines the data needed to self-register an organisation, hospital or donor.
type RegisterAccountRequest struct {
	Role      domain.Role `json:"role" binding:"required,oneof=organisation hospital donor"`
	Name      string      `json:"name" binding:"required"`
	Email     string      `json:"email" binding:"required,email"`
	Password  string      `json:"password" binding:"required,min=8"`
	Phone     string      `json:"phone" binding:"required"`
	Address   string      `json:"address" binding:"required"`
	BloodType *string     `json:"bloodType" binding:"omitempty,bloodtype"` // Required for donors
}

// NewDonorRequest describes a walk-in donor registered during an in transaction.
type NewDonorRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	BloodType string `json:"bloodType" binding:"required,bloodtype"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID string            `json:"accountID"`
	Role      domain.Role       `json:"role"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Phone     string            `json:"phone"`
	Address   string            `json:"address"`
	BloodType *domain.BloodType `json:"bloodType,omitempty"`
	Eligible  bool              `json:"eligible"`
	CreatedAt time.Time         `json:"createdAt"`
}

// ToAccountResponse converts a domain account to its API shape.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID: acc.AccountID,
		Role:      acc.Role,
		Name:      acc.Name,
		Email:     acc.Email,
		Phone:     acc.Phone,
		Address:   acc.Address,
		BloodType: acc.BloodType,
		Eligible:  acc.Eligible,
		CreatedAt: acc.CreatedAt,
	}
}

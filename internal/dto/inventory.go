package dto

import (
	"time"

	"github.com/SscSPs/blood_bank_app/internal/core/domain"
)

// RecordTransactionRequest is the body of POST /inventory.
type RecordTransactionRequest struct {
	Direction      domain.Direction `json:"direction" binding:"required,oneof=in out"`
	BloodType      string           `json:"bloodType" binding:"required,bloodtype"`
	Quantity       int64            `json:"quantity" binding:"required,gt=0,max=100000"`
	DonorID        *string          `json:"donorId" binding:"omitempty,min=1"`
	NewDonor       *NewDonorRequest `json:"newDonor"`
	HospitalID     *string          `json:"hospitalId" binding:"omitempty,min=1"`
	OrganisationID *string          `json:"organisationId" binding:"omitempty,min=1"`
}

// TransactionResponse defines the data returned for a ledger entry.
type TransactionResponse struct {
	TransactionID  string                   `json:"transactionID"`
	Direction      domain.Direction         `json:"direction"`
	BloodType      domain.BloodType         `json:"bloodType"`
	Quantity       int64                    `json:"quantity"`
	DonorID        *string                  `json:"donorId,omitempty"`
	OrganisationID string                   `json:"organisationId"`
	HospitalID     *string                  `json:"hospitalId,omitempty"`
	ContactEmail   string                   `json:"contactEmail"`
	Status         domain.TransactionStatus `json:"status"`
	CreatedAt      time.Time                `json:"createdAt"`
	ExpiresAt      *time.Time               `json:"expiresAt,omitempty"`
}

// ToTransactionResponse converts a domain entry to its API shape.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		TransactionID:  t.TransactionID,
		Direction:      t.Direction,
		BloodType:      t.BloodType,
		Quantity:       t.Quantity,
		DonorID:        t.DonorID,
		OrganisationID: t.OrganisationID,
		HospitalID:     t.HospitalID,
		ContactEmail:   t.ContactEmail,
		Status:         t.Status,
		CreatedAt:      t.CreatedAt,
	}
	if t.Direction == domain.DirectionIn {
		expiresAt := t.ExpiresAt()
		resp.ExpiresAt = &expiresAt
	}
	return resp
}

// ToListTransactionResponse converts a slice of domain entries.
func ToListTransactionResponse(txns []domain.Transaction) []TransactionResponse {
	list := make([]TransactionResponse, len(txns))
	for i := range txns {
		list[i] = ToTransactionResponse(&txns[i])
	}
	return list
}

// ListTransactionsParams are the query parameters of GET /inventory.
type ListTransactionsParams struct {
	BloodType      string     `form:"bloodType" binding:"omitempty,bloodtype"`
	Direction      string     `form:"direction" binding:"omitempty,oneof=in out"`
	From           *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To             *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	OrganisationID *string    `form:"organisationId"`
	DonorID        *string    `form:"donorId"`
	HospitalID     *string    `form:"hospitalId"`
	Order          string     `form:"order" binding:"omitempty,oneof=asc desc"`
	Limit          int        `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken      *string    `form:"nextToken"`
}

// ListTransactionsResponse wraps a page of ledger entries.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// AvailabilityParams are the query parameters of GET /inventory/availability.
type AvailabilityParams struct {
	BloodType string `form:"bloodType" binding:"required"`
	Scope     string `form:"scope"`
}

// AvailabilityResponse reports derived availability for one blood type.
type AvailabilityResponse struct {
	Scope     string           `json:"scope"`
	BloodType domain.BloodType `json:"bloodType"`
	TotalIn   int64            `json:"totalIn"`
	TotalOut  int64            `json:"totalOut"`
	ExpiredIn int64            `json:"expiredIn"`
	Available int64            `json:"available"`
}

// ToAvailabilityResponse converts a domain availability to its API shape.
func ToAvailabilityResponse(a domain.Availability) AvailabilityResponse {
	return AvailabilityResponse{
		Scope:     a.Scope,
		BloodType: a.BloodType,
		TotalIn:   a.TotalIn,
		TotalOut:  a.TotalOut,
		ExpiredIn: a.ExpiredIn,
		Available: a.Available(),
	}
}

// AvailabilitySummaryResponse reports availability for every blood type in a scope.
type AvailabilitySummaryResponse struct {
	Scope string                 `json:"scope"`
	Items []AvailabilityResponse `json:"items"`
}

// ToAvailabilitySummaryResponse converts a domain summary to its API shape.
func ToAvailabilitySummaryResponse(s *domain.AvailabilitySummary) AvailabilitySummaryResponse {
	items := make([]AvailabilityResponse, len(s.Items))
	for i, a := range s.Items {
		items[i] = ToAvailabilityResponse(a)
	}
	return AvailabilitySummaryResponse{Scope: s.Scope, Items: items}
}

// ExpirySweepResponse reports how many entries a sweep marked as expired.
type ExpirySweepResponse struct {
	Expired int64     `json:"expired"`
	Cutoff  time.Time `json:"cutoff"`
}

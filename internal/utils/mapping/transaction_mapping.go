package mapping

import (
	"database/sql"

	"github.com/SscSPs/blood_bank_app/internal/core/domain"
	"github.com/SscSPs/blood_bank_app/internal/models"
)

func toNullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// ToModelTransaction converts a domain ledger entry to its storage model
func ToModelTransaction(d domain.Transaction) models.InventoryTransaction {
	return models.InventoryTransaction{
		TransactionID:  d.TransactionID,
		Direction:      string(d.Direction),
		BloodType:      string(d.BloodType),
		Quantity:       d.Quantity,
		DonorID:        toNullString(d.DonorID),
		OrganisationID: d.OrganisationID,
		HospitalID:     toNullString(d.HospitalID),
		ContactEmail:   d.ContactEmail,
		Status:         string(d.Status),
		CreatedAt:      d.CreatedAt,
		CreatedBy:      d.CreatedBy,
	}
}

// ToDomainTransaction converts a storage model to a domain ledger entry
func ToDomainTransaction(m models.InventoryTransaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:  m.TransactionID,
		Direction:      domain.Direction(m.Direction),
		BloodType:      domain.BloodType(m.BloodType),
		Quantity:       m.Quantity,
		DonorID:        fromNullString(m.DonorID),
		OrganisationID: m.OrganisationID,
		HospitalID:     fromNullString(m.HospitalID),
		ContactEmail:   m.ContactEmail,
		Status:         domain.TransactionStatus(m.Status),
		CreatedAt:      m.CreatedAt,
		CreatedBy:      m.CreatedBy,
	}
}

// ToDomainTransactionSlice converts a slice of storage models to domain entries
func ToDomainTransactionSlice(ms []models.InventoryTransaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}

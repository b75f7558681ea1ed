package mapping

import (
	"testing"
	"time"

	"github.com/SscSPs/blood_bank_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestTransactionMapping_OptionalRefs(t *testing.T) {
	hospital := "hosp-1"
	empty := ""
	d := domain.Transaction{
		TransactionID:  "txn-1",
		Direction:      domain.DirectionOut,
		BloodType:      domain.BloodTypeBNegative,
		Quantity:       2,
		DonorID:        &empty,
		OrganisationID: "org-1",
		HospitalID:     &hospital,
		Status:         domain.StatusActive,
		CreatedAt:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	m := ToModelTransaction(d)
	assert.False(t, m.DonorID.Valid, "empty donor reference is stored as NULL")
	assert.True(t, m.HospitalID.Valid)

	back := ToDomainTransaction(m)
	assert.Nil(t, back.DonorID)
	assert.Equal(t, hospital, *back.HospitalID)
	assert.Equal(t, d.BloodType, back.BloodType)
}

func TestAccountMapping_NormalizesEmail(t *testing.T) {
	bt := domain.BloodTypeOPositive
	m := ToModelAccount(domain.Account{AccountID: "d1", Role: domain.RoleDonor, Email: " Ann@Example.COM", BloodType: &bt})
	assert.Equal(t, "ann@example.com", m.Email)
	assert.Equal(t, "O+", m.BloodType.String)

	back := ToDomainAccount(m)
	assert.Equal(t, domain.RoleDonor, back.Role)
	assert.Equal(t, bt, *back.BloodType)
}

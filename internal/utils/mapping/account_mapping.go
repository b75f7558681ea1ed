package mapping

import (
	"database/sql"

	"github.com/SscSPs/blood_bank_app/internal/core/domain"
	"github.com/SscSPs/blood_bank_app/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	var bloodType sql.NullString
	if d.BloodType != nil {
		bloodType = sql.NullString{String: string(*d.BloodType), Valid: true}
	}
	return models.Account{
		AccountID:    d.AccountID,
		Role:         string(d.Role),
		Name:         d.Name,
		Email:        domain.NormalizeEmail(d.Email),
		Phone:        d.Phone,
		Address:      d.Address,
		BloodType:    bloodType,
		Eligible:     d.Eligible,
		PasswordHash: d.PasswordHash,
		AuditFields:  models.AuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	var bloodType *domain.BloodType
	if m.BloodType.Valid {
		bt := domain.BloodType(m.BloodType.String)
		bloodType = &bt
	}
	return domain.Account{
		AccountID:    m.AccountID,
		Role:         domain.Role(m.Role),
		Name:         m.Name,
		Email:        m.Email,
		Phone:        m.Phone,
		Address:      m.Address,
		BloodType:    bloodType,
		Eligible:     m.Eligible,
		PasswordHash: m.PasswordHash,
		AuditFields:  domain.AuditFields(m.AuditFields),
	}
}

package models

import (
	"database/sql"
	"time"
)

// InventoryTransaction is the storage representation of a ledger entry.
type InventoryTransaction struct {
	TransactionID  string         `db:"transaction_id"`
	Direction      string         `db:"direction"`
	BloodType      string         `db:"blood_type"`
	Quantity       int64          `db:"quantity"`
	DonorID        sql.NullString `db:"donor_id"`
	OrganisationID string         `db:"organisation_id"`
	HospitalID     sql.NullString `db:"hospital_id"`
	ContactEmail   string         `db:"contact_email"`
	Status         string         `db:"status"`
	CreatedAt      time.Time      `db:"created_at"`
	CreatedBy      string         `db:"created_by"`
}

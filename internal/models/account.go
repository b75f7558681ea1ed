package models

import "database/sql"

// Account is the storage representation of a directory account.
type Account struct {
	AccountID    string         `db:"account_id"`
	Role         string         `db:"role"`
	Name         string         `db:"name"`
	Email        string         `db:"email"`
	Phone        string         `db:"phone"`
	Address      string         `db:"address"`
	BloodType    sql.NullString `db:"blood_type"`
	Eligible     bool           `db:"eligible"`
	PasswordHash string         `db:"password_hash"`
	AuditFields
}

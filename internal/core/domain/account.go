package domain

import "strings"

// Account is a directory entry. The ledger only reads accounts, except for
// walk-in donors which are created during intake.
type Account struct {
	AccountID    string     `json:"accountID"`
	Role         Role       `json:"role"`
	Name         string     `json:"name"` // Donor, organisation or hospital name depending on Role
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Address      string     `json:"address"`
	BloodType    *BloodType `json:"bloodType,omitempty"` // Donors only
	Eligible     bool       `json:"eligible"`
	PasswordHash string     `json:"-"`
	AuditFields
}

// NormalizeEmail lowercases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailDomain returns the part of the email after '@', or "" if there is none.
func (a Account) EmailDomain() string {
	at := strings.LastIndex(a.Email, "@")
	if at < 0 || at == len(a.Email)-1 {
		return ""
	}
	return a.Email[at+1:]
}

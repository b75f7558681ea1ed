package domain

import (
	"errors"
	"fmt"
	"time"
)

// Direction tells whether blood entered or left an organisation's book.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// IsValid reports whether d is a known direction.
func (d Direction) IsValid() bool {
	return d == DirectionIn || d == DirectionOut
}

// TransactionStatus is advisory. It never changes availability.
type TransactionStatus string

const (
	StatusActive  TransactionStatus = "active"
	StatusExpired TransactionStatus = "expired"
)

// ExpiryWindow is how long a donated unit stays usable.
const ExpiryWindow = 42 * 24 * time.Hour

// MaxQuantity caps a single entry in millilitres. Keeps per-book sums far from int64 overflow.
const MaxQuantity int64 = 100_000

// Transaction is one immutable ledger entry.
type Transaction struct {
	TransactionID  string            `json:"transactionID"`
	Direction      Direction         `json:"direction"`
	BloodType      BloodType         `json:"bloodType"`
	Quantity       int64             `json:"quantity"` // millilitres, always positive
	DonorID        *string           `json:"donorID,omitempty"`
	OrganisationID string            `json:"organisationID"` // the book this entry belongs to
	HospitalID     *string           `json:"hospitalID,omitempty"`
	ContactEmail   string            `json:"contactEmail"`
	Status         TransactionStatus `json:"status"`
	CreatedAt      time.Time         `json:"createdAt"`
	CreatedBy      string            `json:"createdBy"`
}

var (
	errInvalidDirection    = errors.New("direction must be 'in' or 'out'")
	errInvalidBloodType    = errors.New("unsupported blood type")
	errNonPositiveQuantity = errors.New("quantity must be greater than zero")
	errQuantityTooLarge    = fmt.Errorf("quantity must not exceed %d ml", MaxQuantity)
	errMissingOrganisation = errors.New("organisation reference is required")
	errMissingHospital     = errors.New("hospital reference is required for out transactions")
)

// Validate checks the structural invariants every committed entry must hold.
func (t Transaction) Validate() error {
	if !t.Direction.IsValid() {
		return errInvalidDirection
	}
	if !t.BloodType.IsValid() {
		return errInvalidBloodType
	}
	if t.Quantity <= 0 {
		return errNonPositiveQuantity
	}
	if t.Quantity > MaxQuantity {
		return errQuantityTooLarge
	}
	if t.OrganisationID == "" {
		return errMissingOrganisation
	}
	if t.Direction == DirectionOut && (t.HospitalID == nil || *t.HospitalID == "") {
		return errMissingHospital
	}
	return nil
}

// ExpiresAt is when a donated unit stops being usable.
func (t Transaction) ExpiresAt() time.Time {
	return t.CreatedAt.Add(ExpiryWindow)
}

// IsExpired reports whether an in entry has passed its expiry at the given time.
// Out entries never expire.
func (t Transaction) IsExpired(now time.Time) bool {
	return t.Direction == DirectionIn && !now.Before(t.ExpiresAt())
}

// ExpiryCutoff returns the latest creation time that counts as expired at now.
func ExpiryCutoff(now time.Time) time.Time {
	return now.Add(-ExpiryWindow)
}

// LedgerFilter narrows a ledger query. All set fields are combined with AND.
type LedgerFilter struct {
	OrganisationID *string
	DonorID        *string
	HospitalID     *string
	BloodType      *BloodType
	Direction      *Direction
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
	Ascending      bool
	Limit          int
	NextToken      *string
}

package domain

// GlobalScope is the scope name that aggregates every organisation's book.
const GlobalScope = "global"

// Availability is derived from the ledger on every read.
type Availability struct {
	Scope     string    `json:"scope"`
	BloodType BloodType `json:"bloodType"`
	TotalIn   int64     `json:"totalIn"`
	TotalOut  int64     `json:"totalOut"`
	// ExpiredIn is the part of TotalIn whose units are past expiry. It is reported, not subtracted.
	ExpiredIn int64 `json:"expiredIn"`
}

// Available is TotalIn minus TotalOut. It is signed so ledger corruption stays visible.
func (a Availability) Available() int64 {
	return a.TotalIn - a.TotalOut
}

// QuantityTotals is the raw aggregate a ledger store returns for one blood type.
type QuantityTotals struct {
	TotalIn   int64
	TotalOut  int64
	ExpiredIn int64
}

// ToAvailability attaches a scope and blood type to raw totals.
func (q QuantityTotals) ToAvailability(scope string, bloodType BloodType) Availability {
	return Availability{
		Scope:     scope,
		BloodType: bloodType,
		TotalIn:   q.TotalIn,
		TotalOut:  q.TotalOut,
		ExpiredIn: q.ExpiredIn,
	}
}

// AvailabilitySummary holds one Availability per blood type for a scope.
type AvailabilitySummary struct {
	Scope string         `json:"scope"`
	Items []Availability `json:"items"`
}

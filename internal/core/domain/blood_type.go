package domain

import "strings"

// BloodType is one of the eight ABO/Rh groups tracked by the ledger.
type BloodType string

const (
	BloodTypeOPositive  BloodType = "O+"
	BloodTypeONegative  BloodType = "O-"
	BloodTypeAPositive  BloodType = "A+"
	BloodTypeANegative  BloodType = "A-"
	BloodTypeBPositive  BloodType = "B+"
	BloodTypeBNegative  BloodType = "B-"
	BloodTypeABPositive BloodType = "AB+"
	BloodTypeABNegative BloodType = "AB-"
)

// AllBloodTypes lists every supported blood type in display order.
var AllBloodTypes = []BloodType{
	BloodTypeOPositive,
	BloodTypeONegative,
	BloodTypeAPositive,
	BloodTypeANegative,
	BloodTypeBPositive,
	BloodTypeBNegative,
	BloodTypeABPositive,
	BloodTypeABNegative,
}

// IsValid reports whether b is one of the supported blood types.
func (b BloodType) IsValid() bool {
	for _, known := range AllBloodTypes {
		if b == known {
			return true
		}
	}
	return false
}

// ParseBloodType normalises user input ("ab+", " O- ") into a BloodType.
// The second return value is false when the input is not a supported type.
func ParseBloodType(s string) (BloodType, bool) {
	b := BloodType(strings.ToUpper(strings.TrimSpace(s)))
	return b, b.IsValid()
}

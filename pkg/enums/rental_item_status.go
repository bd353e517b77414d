package enums

import "fmt"

// RentalItemStatus reflects whether a rental item accepts new bookings.
type RentalItemStatus string

const (
	RentalItemStatusAvailable RentalItemStatus = "available"
	RentalItemStatusUnavailable RentalItemStatus = "unavailable"
)

var validRentalItemStatuss = []RentalItemStatus{
	RentalItemStatusAvailable,
	RentalItemStatusUnavailable,
}

// String implements fmt.Stringer.
func (v RentalItemStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known RentalItemStatus.
func (v RentalItemStatus) IsValid() bool {
	for _, candidate := range validRentalItemStatuss {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseRentalItemStatus converts raw input into a RentalItemStatus.
func ParseRentalItemStatus(value string) (RentalItemStatus, error) {
	for _, candidate := range validRentalItemStatuss {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rental item status %q", value)
}

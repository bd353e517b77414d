package enums

import "fmt"

// BookingStatus tracks the lifecycle of a rental booking.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

var validBookingStatuss = []BookingStatus{
	BookingStatusConfirmed,
	BookingStatusCancelled,
}

// String implements fmt.Stringer.
func (v BookingStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known BookingStatus.
func (v BookingStatus) IsValid() bool {
	for _, candidate := range validBookingStatuss {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseBookingStatus converts raw input into a BookingStatus.
func ParseBookingStatus(value string) (BookingStatus, error) {
	for _, candidate := range validBookingStatuss {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking status %q", value)
}

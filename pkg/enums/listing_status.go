package enums

import "fmt"

// ListingStatus tracks the sale state of a farmer listing.
type ListingStatus string

const (
	ListingStatusAvailable ListingStatus = "available"
	ListingStatusSold ListingStatus = "sold"
	ListingStatusRemoved ListingStatus = "removed"
	ListingStatusExpired ListingStatus = "expired"
)

var validListingStatuss = []ListingStatus{
	ListingStatusAvailable,
	ListingStatusSold,
	ListingStatusRemoved,
	ListingStatusExpired,
}

// String implements fmt.Stringer.
func (v ListingStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known ListingStatus.
func (v ListingStatus) IsValid() bool {
	for _, candidate := range validListingStatuss {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseListingStatus converts raw input into a ListingStatus.
func ParseListingStatus(value string) (ListingStatus, error) {
	for _, candidate := range validListingStatuss {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing status %q", value)
}

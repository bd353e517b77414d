package enums

import "fmt"

// ActivityType labels entries in the per-user activity feed.
type ActivityType string

const (
	ActivityTypeOrderPlaced ActivityType = "order_placed"
	ActivityTypeOrderCancelled ActivityType = "order_cancelled"
	ActivityTypeSale ActivityType = "sale"
	ActivityTypeListingExpired ActivityType = "listing_expired"
	ActivityTypeDeliveryCompleted ActivityType = "delivery_completed"
)

var validActivityTypes = []ActivityType{
	ActivityTypeOrderPlaced,
	ActivityTypeOrderCancelled,
	ActivityTypeSale,
	ActivityTypeListingExpired,
	ActivityTypeDeliveryCompleted,
}

// String implements fmt.Stringer.
func (v ActivityType) String() string {
	return string(v)
}

// IsValid reports whether the value is a known ActivityType.
func (v ActivityType) IsValid() bool {
	for _, candidate := range validActivityTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseActivityType converts raw input into a ActivityType.
func ParseActivityType(value string) (ActivityType, error) {
	for _, candidate := range validActivityTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid activity type %q", value)
}

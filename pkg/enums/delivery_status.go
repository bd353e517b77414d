package enums

import "fmt"

// DeliveryStatus tracks the lifecycle of a delivery record.
type DeliveryStatus string

const (
	DeliveryStatusPending           DeliveryStatus = "pending"
	DeliveryStatusAssignmentPending DeliveryStatus = "assignment_pending"
	DeliveryStatusAssigned          DeliveryStatus = "assigned"
	DeliveryStatusPreparing         DeliveryStatus = "preparing"
	DeliveryStatusCollected         DeliveryStatus = "collected"
	DeliveryStatusInTransit         DeliveryStatus = "in_transit"
	DeliveryStatusCompleted         DeliveryStatus = "completed"
	DeliveryStatusCancelled         DeliveryStatus = "cancelled"
)

var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusPending,
	DeliveryStatusAssignmentPending,
	DeliveryStatusAssigned,
	DeliveryStatusPreparing,
	DeliveryStatusCollected,
	DeliveryStatusInTransit,
	DeliveryStatusCompleted,
	DeliveryStatusCancelled,
}

// deliveryProgression orders the driver-driven happy path. Each status may only
// advance to the next entry.
var deliveryProgression = map[DeliveryStatus]DeliveryStatus{
	DeliveryStatusAssigned:  DeliveryStatusPreparing,
	DeliveryStatusPreparing: DeliveryStatusCollected,
	DeliveryStatusCollected: DeliveryStatusInTransit,
	DeliveryStatusInTransit: DeliveryStatusCompleted,
}

// String implements fmt.Stringer.
func (v DeliveryStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known DeliveryStatus.
func (v DeliveryStatus) IsValid() bool {
	for _, candidate := range validDeliveryStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (v DeliveryStatus) IsTerminal() bool {
	return v == DeliveryStatusCompleted || v == DeliveryStatusCancelled
}

// NextInProgression returns the status that follows v on the driver happy path.
func (v DeliveryStatus) NextInProgression() (DeliveryStatus, bool) {
	next, ok := deliveryProgression[v]
	return next, ok
}

// ParseDeliveryStatus converts raw input into a DeliveryStatus.
func ParseDeliveryStatus(value string) (DeliveryStatus, error) {
	for _, candidate := range validDeliveryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery status %q", value)
}

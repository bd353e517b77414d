package enums

import "fmt"

// AssignmentStatus tracks driver acceptance of a delivery offer.
type AssignmentStatus string

const (
	AssignmentStatusPending AssignmentStatus = "pending"
	AssignmentStatusAccepted AssignmentStatus = "accepted"
	AssignmentStatusDeclined AssignmentStatus = "declined"
)

var validAssignmentStatuss = []AssignmentStatus{
	AssignmentStatusPending,
	AssignmentStatusAccepted,
	AssignmentStatusDeclined,
}

// String implements fmt.Stringer.
func (v AssignmentStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known AssignmentStatus.
func (v AssignmentStatus) IsValid() bool {
	for _, candidate := range validAssignmentStatuss {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseAssignmentStatus converts raw input into a AssignmentStatus.
func ParseAssignmentStatus(value string) (AssignmentStatus, error) {
	for _, candidate := range validAssignmentStatuss {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid assignment status %q", value)
}

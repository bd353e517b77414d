package enums

import "fmt"

// UserRole identifies the marketplace roles a principal can hold.
type UserRole string

const (
	UserRoleFarmer UserRole = "farmer"
	UserRoleBuyer UserRole = "buyer"
	UserRoleAdmin UserRole = "admin"
	UserRoleDriver UserRole = "driver"
	UserRoleAgronomist UserRole = "agronomist"
)

var validUserRoles = []UserRole{
	UserRoleFarmer,
	UserRoleBuyer,
	UserRoleAdmin,
	UserRoleDriver,
	UserRoleAgronomist,
}

// String implements fmt.Stringer.
func (v UserRole) String() string {
	return string(v)
}

// IsValid reports whether the value is a known UserRole.
func (v UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}

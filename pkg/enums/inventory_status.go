package enums

import "fmt"

// InventoryStatus is derived from an inventory product's stock quantity.
type InventoryStatus string

const (
	InventoryStatusAvailable InventoryStatus = "available"
	InventoryStatusLowStock InventoryStatus = "low_stock"
	InventoryStatusOutOfStock InventoryStatus = "out_of_stock"
)

var validInventoryStatuss = []InventoryStatus{
	InventoryStatusAvailable,
	InventoryStatusLowStock,
	InventoryStatusOutOfStock,
}

// String implements fmt.Stringer.
func (v InventoryStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known InventoryStatus.
func (v InventoryStatus) IsValid() bool {
	for _, candidate := range validInventoryStatuss {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseInventoryStatus converts raw input into a InventoryStatus.
func ParseInventoryStatus(value string) (InventoryStatus, error) {
	for _, candidate := range validInventoryStatuss {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inventory status %q", value)
}

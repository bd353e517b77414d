package enums

import "fmt"

// CatalogItemType distinguishes the three catalog sources an order line can reference.
type CatalogItemType string

const (
	CatalogItemTypeListing CatalogItemType = "listing"
	CatalogItemTypeInventory CatalogItemType = "inventory"
	CatalogItemTypeRental CatalogItemType = "rental"
)

var validCatalogItemTypes = []CatalogItemType{
	CatalogItemTypeListing,
	CatalogItemTypeInventory,
	CatalogItemTypeRental,
}

// String implements fmt.Stringer.
func (v CatalogItemType) String() string {
	return string(v)
}

// IsValid reports whether the value is a known CatalogItemType.
func (v CatalogItemType) IsValid() bool {
	for _, candidate := range validCatalogItemTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseCatalogItemType converts raw input into a CatalogItemType.
func ParseCatalogItemType(value string) (CatalogItemType, error) {
	for _, candidate := range validCatalogItemTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid catalog item type %q", value)
}

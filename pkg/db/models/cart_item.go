package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ruwinya10/agrilink-backend/pkg/enums"
)

// CartItem is a denormalized snapshot of a catalog item plus the chosen
// quantity, keyed by (ItemID, ItemType) and, for rentals, the date range.
// Snapshot fields are refreshed on every cart read.
type CartItem struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	CartID          uuid.UUID             `gorm:"column:cart_id;type:uuid;not null;index"`
	ItemID          uuid.UUID             `gorm:"column:item_id;type:uuid;not null"`
	ItemType        enums.CatalogItemType `gorm:"column:item_type;type:text;not null"`
	Quantity        int                   `gorm:"column:quantity;not null"`
	Title           string                `gorm:"column:title;not null"`
	UnitPriceCents  int                   `gorm:"column:unit_price_cents;not null"`
	ImageURL        *string               `gorm:"column:image_url"`
	Category        string                `gorm:"column:category"`
	Unit            string                `gorm:"column:unit"`
	MaxQuantity     int                   `gorm:"column:max_quantity;not null"`
	RentalStartDate *time.Time            `gorm:"column:rental_start_date"`
	RentalEndDate   *time.Time            `gorm:"column:rental_end_date"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

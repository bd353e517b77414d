package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ruwinya10/agrilink-backend/pkg/enums"
)

// OrderItem freezes a line of an order at creation time. Later catalog price
// or title changes never touch these rows.
type OrderItem struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	OrderID         uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index"`
	ItemID          uuid.UUID             `gorm:"column:item_id;type:uuid;not null"`
	ItemType        enums.CatalogItemType `gorm:"column:item_type;type:text;not null"`
	Quantity        int                   `gorm:"column:quantity;not null"`
	UnitPriceCents  int                   `gorm:"column:unit_price_cents;not null"`
	Title           string                `gorm:"column:title;not null"`
	ImageURL        *string               `gorm:"column:image_url"`
	Unit            string                `gorm:"column:unit"`
	LineTotalCents  int                   `gorm:"column:line_total_cents;not null"`
	RentalStartDate *time.Time            `gorm:"column:rental_start_date"`
	RentalEndDate   *time.Time            `gorm:"column:rental_end_date"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
}

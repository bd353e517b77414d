package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ruwinya10/agrilink-backend/pkg/enums"
)

// RentalItem is an admin-managed piece of rentable equipment. TotalQty is the
// fleet size; per-window availability is computed from the booking log rather
// than stored as a mutable counter.
type RentalItem struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	Title       string                 `gorm:"column:title;not null"`
	Category    string                 `gorm:"column:category;not null"`
	PerDayCents int                    `gorm:"column:per_day_cents;not null"`
	TotalQty    int                    `gorm:"column:total_qty;not null;default:0"`
	ImageURL    *string                `gorm:"column:image_url"`
	Status      enums.RentalItemStatus `gorm:"column:status;type:text;not null;default:'available'"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

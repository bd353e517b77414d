package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ruwinya10/agrilink-backend/pkg/enums"
)

// Listing is a farmer-posted batch of produce, priced per kilogram. CapacityKg
// depletes as orders are placed; Status is derived from the remaining capacity
// and the best-before window, never set independently.
type Listing struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	FarmerID       uuid.UUID           `gorm:"column:farmer_id;type:uuid;not null;index"`
	Title          string              `gorm:"column:title;not null"`
	CropType       string              `gorm:"column:crop_type;not null"`
	PricePerKgCents int                `gorm:"column:price_per_kg_cents;not null"`
	CapacityKg     int                 `gorm:"column:capacity_kg;not null;default:0"`
	HarvestDate    time.Time           `gorm:"column:harvest_date;not null"`
	BestBefore     time.Time           `gorm:"column:best_before;not null"`
	ImageURL       *string             `gorm:"column:image_url"`
	Tags           pq.StringArray      `gorm:"column:tags;type:text[]"`
	Status         enums.ListingStatus `gorm:"column:status;type:text;not null;default:'available'"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

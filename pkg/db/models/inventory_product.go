package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ruwinya10/agrilink-backend/pkg/enums"
)

// InventoryProduct is an admin-managed store item (seeds, fertilizer, tools).
// Status is derived from StockQuantity against LowStockThreshold.
type InventoryProduct struct {
	ID                uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Title             string                `gorm:"column:title;not null"`
	Category          string                `gorm:"column:category;not null"`
	PriceCents        int                   `gorm:"column:price_cents;not null"`
	StockQuantity     int                   `gorm:"column:stock_quantity;not null;default:0"`
	LowStockThreshold int                   `gorm:"column:low_stock_threshold;not null;default:5"`
	Unit              string                `gorm:"column:unit;not null;default:'unit'"`
	ImageURL          *string               `gorm:"column:image_url"`
	Status            enums.InventoryStatus `gorm:"column:status;type:text;not null;default:'available'"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ruwinya10/agrilink-backend/pkg/enums"
)

// RentalBooking reserves a quantity of a RentalItem over an inclusive date
// range. Window availability is totalQty minus the sum of overlapping
// confirmed bookings.
type RentalBooking struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	RentalItemID uuid.UUID           `gorm:"column:rental_item_id;type:uuid;not null;index"`
	OrderID      *uuid.UUID          `gorm:"column:order_id;type:uuid;index"`
	UserID       uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Quantity     int                 `gorm:"column:quantity;not null"`
	StartDate    time.Time           `gorm:"column:start_date;not null"`
	EndDate      time.Time           `gorm:"column:end_date;not null"`
	Status       enums.BookingStatus `gorm:"column:status;type:text;not null;default:'confirmed'"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

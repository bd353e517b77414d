package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ruwinya10/agrilink-backend/pkg/enums"
)

// Delivery tracks physical fulfillment of a delivery-type order from driver
// assignment through completion. The status history is append-only and serves
// as the audit trail for dispute resolution.
type Delivery struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	OrderID          uuid.UUID              `gorm:"column:order_id;type:uuid;not null;index"`
	CustomerID       uuid.UUID              `gorm:"column:customer_id;type:uuid;not null;index"`
	DriverID         *uuid.UUID             `gorm:"column:driver_id;type:uuid;index"`
	Status           enums.DeliveryStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	AssignmentStatus enums.AssignmentStatus `gorm:"column:assignment_status;type:text;not null;default:'pending'"`
	Address          string                 `gorm:"column:address;not null"`
	ContactName      string                 `gorm:"column:contact_name;not null"`
	ContactPhone     string                 `gorm:"column:contact_phone;not null"`
	StatusHistory    []DeliveryStatusEvent  `gorm:"foreignKey:DeliveryID;constraint:OnDelete:CASCADE"`
	CompletedAt      *time.Time             `gorm:"column:completed_at"`
	CancelledAt      *time.Time             `gorm:"column:cancelled_at"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// DeliveryStatusEvent is one entry in a delivery's append-only history. Rows
// are inserted on every transition and never updated or deleted while the
// delivery exists.
type DeliveryStatusEvent struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	DeliveryID uuid.UUID            `gorm:"column:delivery_id;type:uuid;not null;index"`
	Status     enums.DeliveryStatus `gorm:"column:status;type:text;not null"`
	ActorID    uuid.UUID            `gorm:"column:actor_id;type:uuid;not null"`
	ActorRole  enums.UserRole       `gorm:"column:actor_role;type:text;not null"`
	Note       *string              `gorm:"column:note"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
}

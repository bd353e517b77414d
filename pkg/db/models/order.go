package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ruwinya10/agrilink-backend/pkg/enums"
)

// Order is the immutable-after-creation record of a purchase. Items carry
// frozen price/title/image snapshots; totals are fixed at creation.
type Order struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber      string              `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerID       uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index"`
	Status           enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'not_ready'"`
	DeliveryType     enums.DeliveryType  `gorm:"column:delivery_type;type:text;not null"`
	SubtotalCents    int                 `gorm:"column:subtotal_cents;not null"`
	DeliveryFeeCents int                 `gorm:"column:delivery_fee_cents;not null;default:0"`
	TotalCents       int                 `gorm:"column:total_cents;not null"`
	ContactName      string              `gorm:"column:contact_name;not null"`
	ContactPhone     string              `gorm:"column:contact_phone;not null"`
	ContactEmail     string              `gorm:"column:contact_email;not null"`
	DeliveryAddress  *string             `gorm:"column:delivery_address"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method;type:text;not null;default:'cash'"`
	DeliveryID       *uuid.UUID          `gorm:"column:delivery_id;type:uuid"`
	Items            []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CancelledAt      *time.Time          `gorm:"column:cancelled_at"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderCounter backs the sequential order-number generator. A single row is
// incremented inside the order-creation transaction so numbers never collide.
type OrderCounter struct {
	ID         int   `gorm:"column:id;primaryKey"`
	NextNumber int64 `gorm:"column:next_number;not null;default:1"`
}

// TableName keeps the counter out of gorm's default pluralization.
func (OrderCounter) TableName() string {
	return "order_counter"
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ruwinya10/agrilink-backend/pkg/enums"
)

// ActivityEntry is one row of the append-only per-user activity feed shown on
// dashboards (sales, cancellations, expiries, completed deliveries).
type ActivityEntry struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	Type      enums.ActivityType `gorm:"column:type;type:text;not null"`
	Message   string             `gorm:"column:message;not null"`
	OrderID   *uuid.UUID         `gorm:"column:order_id;type:uuid"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
}

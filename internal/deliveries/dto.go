package deliveries

import (
	"time"

	"github.com/google/uuid"

	"github.com/ruwinya10/agrilink-backend/pkg/db/models"
	"github.com/ruwinya10/agrilink-backend/pkg/enums"
)

// EventDTO is one append-only history row.
type EventDTO struct {
	Status    enums.DeliveryStatus `json:"status"`
	ActorID   uuid.UUID            `json:"actor_id"`
	ActorRole enums.UserRole       `json:"actor_role"`
	Note      *string              `json:"note,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// DeliveryDTO is the API-facing shape of a delivery.
type DeliveryDTO struct {
	ID               uuid.UUID              `json:"id"`
	OrderID          uuid.UUID              `json:"order_id"`
	CustomerID       uuid.UUID              `json:"customer_id"`
	DriverID         *uuid.UUID             `json:"driver_id,omitempty"`
	Status           enums.DeliveryStatus   `json:"status"`
	AssignmentStatus enums.AssignmentStatus `json:"assignment_status"`
	Address          string                 `json:"address"`
	ContactName      string                 `json:"contact_name"`
	ContactPhone     string                 `json:"contact_phone"`
	StatusHistory    []EventDTO             `json:"status_history,omitempty"`
	CompletedAt      *time.Time             `json:"completed_at,omitempty"`
	CancelledAt      *time.Time             `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// Page is one cursor page of deliveries.
type Page struct {
	Items      []DeliveryDTO `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

func newDeliveryDTO(d *models.Delivery) *DeliveryDTO {
	dto := &DeliveryDTO{
		ID:               d.ID,
		OrderID:          d.OrderID,
		CustomerID:       d.CustomerID,
		DriverID:         d.DriverID,
		Status:           d.Status,
		AssignmentStatus: d.AssignmentStatus,
		Address:          d.Address,
		ContactName:      d.ContactName,
		ContactPhone:     d.ContactPhone,
		CompletedAt:      d.CompletedAt,
		CancelledAt:      d.CancelledAt,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
	for _, ev := range d.StatusHistory {
		dto.StatusHistory = append(dto.StatusHistory, EventDTO{
			Status:    ev.Status,
			ActorID:   ev.ActorID,
			ActorRole: ev.ActorRole,
			Note:      ev.Note,
			CreatedAt: ev.CreatedAt,
		})
	}
	return dto
}

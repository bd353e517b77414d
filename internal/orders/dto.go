package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/ruwinya10/agrilink-backend/pkg/db/models"
	"github.com/ruwinya10/agrilink-backend/pkg/enums"
)

// ItemDTO is the API-facing shape of a frozen order line.
type ItemDTO struct {
	ID              uuid.UUID             `json:"id"`
	ItemID          uuid.UUID             `json:"item_id"`
	ItemType        enums.CatalogItemType `json:"item_type"`
	Title           string                `json:"title"`
	ImageURL        *string               `json:"image_url,omitempty"`
	Unit            string                `json:"unit,omitempty"`
	Quantity        int                   `json:"quantity"`
	UnitPriceCents  int                   `json:"unit_price_cents"`
	LineTotalCents  int                   `json:"line_total_cents"`
	RentalStartDate *time.Time            `json:"rental_start_date,omitempty"`
	RentalEndDate   *time.Time            `json:"rental_end_date,omitempty"`
}

// OrderDTO is the API-facing shape of an order.
type OrderDTO struct {
	ID               uuid.UUID           `json:"id"`
	OrderNumber      string              `json:"order_number"`
	CustomerID       uuid.UUID           `json:"customer_id"`
	Status           enums.OrderStatus   `json:"status"`
	DeliveryType     enums.DeliveryType  `json:"delivery_type"`
	SubtotalCents    int                 `json:"subtotal_cents"`
	DeliveryFeeCents int                 `json:"delivery_fee_cents"`
	TotalCents       int                 `json:"total_cents"`
	ContactName      string              `json:"contact_name"`
	ContactPhone     string              `json:"contact_phone"`
	ContactEmail     string              `json:"contact_email"`
	DeliveryAddress  *string             `json:"delivery_address,omitempty"`
	PaymentMethod    enums.PaymentMethod `json:"payment_method"`
	DeliveryID       *uuid.UUID          `json:"delivery_id,omitempty"`
	Items            []ItemDTO           `json:"items"`
	CancelledAt      *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
}

// Page is a cursor-paginated list of orders.
type Page struct {
	Items      []OrderDTO `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func newItemDTO(item *models.OrderItem) ItemDTO {
	return ItemDTO{
		ID:              item.ID,
		ItemID:          item.ItemID,
		ItemType:        item.ItemType,
		Title:           item.Title,
		ImageURL:        item.ImageURL,
		Unit:            item.Unit,
		Quantity:        item.Quantity,
		UnitPriceCents:  item.UnitPriceCents,
		LineTotalCents:  item.LineTotalCents,
		RentalStartDate: item.RentalStartDate,
		RentalEndDate:   item.RentalEndDate,
	}
}

func newOrderDTO(order *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:               order.ID,
		OrderNumber:      order.OrderNumber,
		CustomerID:       order.CustomerID,
		Status:           order.Status,
		DeliveryType:     order.DeliveryType,
		SubtotalCents:    order.SubtotalCents,
		DeliveryFeeCents: order.DeliveryFeeCents,
		TotalCents:       order.TotalCents,
		ContactName:      order.ContactName,
		ContactPhone:     order.ContactPhone,
		ContactEmail:     order.ContactEmail,
		DeliveryAddress:  order.DeliveryAddress,
		PaymentMethod:    order.PaymentMethod,
		DeliveryID:       order.DeliveryID,
		Items:            make([]ItemDTO, 0, len(order.Items)),
		CancelledAt:      order.CancelledAt,
		CreatedAt:        order.CreatedAt,
	}
	for i := range order.Items {
		dto.Items = append(dto.Items, newItemDTO(&order.Items[i]))
	}
	return dto
}

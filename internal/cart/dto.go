package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/ruwinya10/agrilink-backend/pkg/db/models"
	"github.com/ruwinya10/agrilink-backend/pkg/enums"
	"github.com/ruwinya10/agrilink-backend/pkg/pricing"
)

// LineDTO is one reconciled cart line with its frozen display snapshot.
type LineDTO struct {
	ID              uuid.UUID             `json:"id"`
	ItemID          uuid.UUID             `json:"item_id"`
	ItemType        enums.CatalogItemType `json:"item_type"`
	Title           string                `json:"title"`
	Category        string                `json:"category,omitempty"`
	Unit            string                `json:"unit,omitempty"`
	ImageURL        *string               `json:"image_url,omitempty"`
	Quantity        int                   `json:"quantity"`
	MaxQuantity     int                   `json:"max_quantity"`
	UnitPriceCents  int                   `json:"unit_price_cents"`
	LineTotalCents  int                   `json:"line_total_cents"`
	RentalStartDate *time.Time            `json:"rental_start_date,omitempty"`
	RentalEndDate   *time.Time            `json:"rental_end_date,omitempty"`
}

// CartDTO is the API-facing cart with a running subtotal estimate.
type CartDTO struct {
	ID            uuid.UUID `json:"id"`
	Items         []LineDTO `json:"items"`
	SubtotalCents int       `json:"subtotal_cents"`
}

func (s *service) newCartDTO(cart *models.Cart) *CartDTO {
	dto := &CartDTO{ID: cart.ID, Items: make([]LineDTO, 0, len(cart.Items))}
	for i := range cart.Items {
		line := &cart.Items[i]
		total := lineTotalCents(line)
		dto.Items = append(dto.Items, LineDTO{
			ID:              line.ID,
			ItemID:          line.ItemID,
			ItemType:        line.ItemType,
			Title:           line.Title,
			Category:        line.Category,
			Unit:            line.Unit,
			ImageURL:        line.ImageURL,
			Quantity:        line.Quantity,
			MaxQuantity:     line.MaxQuantity,
			UnitPriceCents:  line.UnitPriceCents,
			LineTotalCents:  total,
			RentalStartDate: line.RentalStartDate,
			RentalEndDate:   line.RentalEndDate,
		})
		dto.SubtotalCents += total
	}
	return dto
}

func lineTotalCents(line *models.CartItem) int {
	if line.ItemType == enums.CatalogItemTypeRental && line.RentalStartDate != nil && line.RentalEndDate != nil {
		return pricing.RentalLineTotalCents(line.UnitPriceCents, *line.RentalStartDate, *line.RentalEndDate, line.Quantity)
	}
	return line.UnitPriceCents * line.Quantity
}

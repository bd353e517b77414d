package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/ruwinya10/agrilink-backend/pkg/db/models"
	"github.com/ruwinya10/agrilink-backend/pkg/enums"
)

// ListingDTO is the API-facing shape of a produce listing.
type ListingDTO struct {
	ID              uuid.UUID           `json:"id"`
	FarmerID        uuid.UUID           `json:"farmer_id"`
	Title           string              `json:"title"`
	CropType        string              `json:"crop_type"`
	PricePerKgCents int                 `json:"price_per_kg_cents"`
	CapacityKg      int                 `json:"capacity_kg"`
	HarvestDate     time.Time           `json:"harvest_date"`
	BestBefore      time.Time           `json:"best_before"`
	ImageURL        *string             `json:"image_url,omitempty"`
	Tags            []string            `json:"tags,omitempty"`
	Status          enums.ListingStatus `json:"status"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// ProductDTO is the API-facing shape of an inventory product.
type ProductDTO struct {
	ID                uuid.UUID             `json:"id"`
	Title             string                `json:"title"`
	Category          string                `json:"category"`
	PriceCents        int                   `json:"price_cents"`
	StockQuantity     int                   `json:"stock_quantity"`
	LowStockThreshold int                   `json:"low_stock_threshold"`
	Unit              string                `json:"unit"`
	ImageURL          *string               `json:"image_url,omitempty"`
	Status            enums.InventoryStatus `json:"status"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// RentalItemDTO is the API-facing shape of a rentable equipment item.
type RentalItemDTO struct {
	ID          uuid.UUID              `json:"id"`
	Title       string                 `json:"title"`
	Category    string                 `json:"category"`
	PerDayCents int                    `json:"per_day_cents"`
	TotalQty    int                    `json:"total_qty"`
	ImageURL    *string                `json:"image_url,omitempty"`
	Status      enums.RentalItemStatus `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// ListingPage is one cursor page of listings.
type ListingPage struct {
	Items      []ListingDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// ProductPage is one cursor page of inventory products.
type ProductPage struct {
	Items      []ProductDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// RentalItemPage is one cursor page of rental items.
type RentalItemPage struct {
	Items      []RentalItemDTO `json:"items"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

func newListingDTO(l *models.Listing) *ListingDTO {
	return &ListingDTO{
		ID:              l.ID,
		FarmerID:        l.FarmerID,
		Title:           l.Title,
		CropType:        l.CropType,
		PricePerKgCents: l.PricePerKgCents,
		CapacityKg:      l.CapacityKg,
		HarvestDate:     l.HarvestDate,
		BestBefore:      l.BestBefore,
		ImageURL:        l.ImageURL,
		Tags:            l.Tags,
		Status:          l.Status,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

func newProductDTO(p *models.InventoryProduct) *ProductDTO {
	return &ProductDTO{
		ID:                p.ID,
		Title:             p.Title,
		Category:          p.Category,
		PriceCents:        p.PriceCents,
		StockQuantity:     p.StockQuantity,
		LowStockThreshold: p.LowStockThreshold,
		Unit:              p.Unit,
		ImageURL:          p.ImageURL,
		Status:            p.Status,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func newRentalItemDTO(i *models.RentalItem) *RentalItemDTO {
	return &RentalItemDTO{
		ID:          i.ID,
		Title:       i.Title,
		Category:    i.Category,
		PerDayCents: i.PerDayCents,
		TotalQty:    i.TotalQty,
		ImageURL:    i.ImageURL,
		Status:      i.Status,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

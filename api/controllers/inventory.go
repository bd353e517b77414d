package controllers

import (
	"net/http"

	"github.com/ruwinya10/agrilink-backend/api/responses"
	"github.com/ruwinya10/agrilink-backend/api/validators"
	"github.com/ruwinya10/agrilink-backend/internal/catalog"
	"github.com/ruwinya10/agrilink-backend/pkg/logger"
)

// CreateInventoryProduct handles admin creation of a store product.
func CreateInventoryProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// UpdateInventoryProduct applies a partial update to a store product.
func UpdateInventoryProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), productID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// DeleteInventoryProduct removes a store product.
func DeleteInventoryProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// BrowseInventory returns the public page of store products.
func BrowseInventory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.BrowseProducts(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// GetInventoryProduct returns one store product by id.
func GetInventoryProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

type createProductRequest struct {
	Title             string  `json:"title" validate:"required"`
	Category          string  `json:"category" validate:"required"`
	PriceCents        int     `json:"price_cents" validate:"required,min=1"`
	StockQuantity     int     `json:"stock_quantity" validate:"min=0"`
	LowStockThreshold int     `json:"low_stock_threshold" validate:"omitempty,min=0"`
	Unit              string  `json:"unit,omitempty"`
	ImageURL          *string `json:"image_url,omitempty"`
}

func (r createProductRequest) toInput() catalog.CreateProductInput {
	return catalog.CreateProductInput{
		Title:             validators.SanitizeString(r.Title, 200),
		Category:          validators.SanitizeString(r.Category, 100),
		PriceCents:        r.PriceCents,
		StockQuantity:     r.StockQuantity,
		LowStockThreshold: r.LowStockThreshold,
		Unit:              validators.SanitizeString(r.Unit, 50),
		ImageURL:          r.ImageURL,
	}
}

type updateProductRequest struct {
	Title             *string `json:"title,omitempty"`
	Category          *string `json:"category,omitempty"`
	PriceCents        *int    `json:"price_cents,omitempty" validate:"omitempty,min=1"`
	StockQuantity     *int    `json:"stock_quantity,omitempty" validate:"omitempty,min=0"`
	LowStockThreshold *int    `json:"low_stock_threshold,omitempty" validate:"omitempty,min=0"`
	Unit              *string `json:"unit,omitempty"`
	ImageURL          *string `json:"image_url,omitempty"`
}

func (r updateProductRequest) toInput() catalog.UpdateProductInput {
	return catalog.UpdateProductInput{
		Title:             r.Title,
		Category:          r.Category,
		PriceCents:        r.PriceCents,
		StockQuantity:     r.StockQuantity,
		LowStockThreshold: r.LowStockThreshold,
		Unit:              r.Unit,
		ImageURL:          r.ImageURL,
	}
}

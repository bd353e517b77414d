package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/ruwinya10/agrilink-backend/api/responses"
	"github.com/ruwinya10/agrilink-backend/api/validators"
	"github.com/ruwinya10/agrilink-backend/internal/catalog"
	"github.com/ruwinya10/agrilink-backend/internal/rentals"
	"github.com/ruwinya10/agrilink-backend/pkg/enums"
	pkgerrors "github.com/ruwinya10/agrilink-backend/pkg/errors"
	"github.com/ruwinya10/agrilink-backend/pkg/logger"
)

// CreateRentalItem handles admin creation of rentable equipment.
func CreateRentalItem(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createRentalItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateRentalItem(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// UpdateRentalItem applies a partial update to a rental item.
func UpdateRentalItem(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateRentalItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateRentalItem(r.Context(), itemID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// DeleteRentalItem removes a rental item.
func DeleteRentalItem(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteRentalItem(r.Context(), itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// BrowseRentalItems returns the public page of rentable equipment.
func BrowseRentalItems(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.BrowseRentalItems(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// GetRentalItem returns one rental item by id.
func GetRentalItem(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetRentalItem(r.Context(), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// RentalAvailability reports how many units are free over a date window.
func RentalAvailability(svc rentals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		start, err := parseDateQuery(r, "start")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := parseDateQuery(r, "end")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		availability, err := svc.Availability(r.Context(), itemID, start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, availability)
	}
}

func parseDateQuery(r *http.Request, key string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, key+" date is required")
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, key+" must be YYYY-MM-DD or RFC 3339")
}

type createRentalItemRequest struct {
	Title       string  `json:"title" validate:"required"`
	Category    string  `json:"category" validate:"required"`
	PerDayCents int     `json:"per_day_cents" validate:"required,min=1"`
	TotalQty    int     `json:"total_qty" validate:"required,min=1"`
	ImageURL    *string `json:"image_url,omitempty"`
}

func (r createRentalItemRequest) toInput() catalog.CreateRentalItemInput {
	return catalog.CreateRentalItemInput{
		Title:       validators.SanitizeString(r.Title, 200),
		Category:    validators.SanitizeString(r.Category, 100),
		PerDayCents: r.PerDayCents,
		TotalQty:    r.TotalQty,
		ImageURL:    r.ImageURL,
	}
}

type updateRentalItemRequest struct {
	Title       *string `json:"title,omitempty"`
	Category    *string `json:"category,omitempty"`
	PerDayCents *int    `json:"per_day_cents,omitempty" validate:"omitempty,min=1"`
	TotalQty    *int    `json:"total_qty,omitempty" validate:"omitempty,min=0"`
	ImageURL    *string `json:"image_url,omitempty"`
	Status      *string `json:"status,omitempty"`
}

func (r updateRentalItemRequest) toInput() (catalog.UpdateRentalItemInput, error) {
	input := catalog.UpdateRentalItemInput{
		Title:       r.Title,
		Category:    r.Category,
		PerDayCents: r.PerDayCents,
		TotalQty:    r.TotalQty,
		ImageURL:    r.ImageURL,
	}
	if r.Status != nil {
		status, err := enums.ParseRentalItemStatus(strings.TrimSpace(*r.Status))
		if err != nil {
			return catalog.UpdateRentalItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		input.Status = &status
	}
	return input, nil
}

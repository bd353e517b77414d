package controllers

import (
	"net/http"
	"time"

	"github.com/ruwinya10/agrilink-backend/api/responses"
	"github.com/ruwinya10/agrilink-backend/api/validators"
	"github.com/ruwinya10/agrilink-backend/internal/catalog"
	pkgerrors "github.com/ruwinya10/agrilink-backend/pkg/errors"
	"github.com/ruwinya10/agrilink-backend/pkg/logger"
)

// CreateListing handles listing creation for the authenticated farmer.
func CreateListing(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createListingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.CreateListing(r.Context(), farmerID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, listing)
	}
}

// UpdateListing applies a partial update to one of the farmer's listings.
func UpdateListing(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		listingID, err := pathUUID(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateListingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.UpdateListing(r.Context(), farmerID, listingID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

// RemoveListing soft-removes a listing so it stops accepting orders.
func RemoveListing(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		listingID, err := pathUUID(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveListing(r.Context(), farmerID, listingID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// MyListings returns all listings owned by the authenticated farmer.
func MyListings(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listings, err := svc.ListFarmerListings(r.Context(), farmerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listings)
	}
}

// BrowseListings returns the public page of available listings.
func BrowseListings(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.BrowseListings(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// GetListing returns one listing by id.
func GetListing(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listingID, err := pathUUID(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.GetListing(r.Context(), listingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

type createListingRequest struct {
	Title           string   `json:"title" validate:"required"`
	CropType        string   `json:"crop_type" validate:"required"`
	PricePerKgCents int      `json:"price_per_kg_cents" validate:"required,min=1"`
	CapacityKg      int      `json:"capacity_kg" validate:"required,min=1"`
	HarvestDate     JSONDate `json:"harvest_date" validate:"required"`
	BestBefore      JSONDate `json:"best_before" validate:"required"`
	ImageURL        *string  `json:"image_url,omitempty"`
	Tags            []string `json:"tags,omitempty"`
}

func (r createListingRequest) toInput() catalog.CreateListingInput {
	return catalog.CreateListingInput{
		Title:           validators.SanitizeString(r.Title, 200),
		CropType:        validators.SanitizeString(r.CropType, 100),
		PricePerKgCents: r.PricePerKgCents,
		CapacityKg:      r.CapacityKg,
		HarvestDate:     time.Time(r.HarvestDate),
		BestBefore:      time.Time(r.BestBefore),
		ImageURL:        r.ImageURL,
		Tags:            r.Tags,
	}
}

type updateListingRequest struct {
	Title           *string   `json:"title,omitempty"`
	CropType        *string   `json:"crop_type,omitempty"`
	PricePerKgCents *int      `json:"price_per_kg_cents,omitempty" validate:"omitempty,min=1"`
	CapacityKg      *int      `json:"capacity_kg,omitempty" validate:"omitempty,min=0"`
	HarvestDate     *JSONDate `json:"harvest_date,omitempty"`
	BestBefore      *JSONDate `json:"best_before,omitempty"`
	ImageURL        *string   `json:"image_url,omitempty"`
	Tags            *[]string `json:"tags,omitempty"`
}

func (r updateListingRequest) toInput() catalog.UpdateListingInput {
	input := catalog.UpdateListingInput{
		Title:           r.Title,
		CropType:        r.CropType,
		PricePerKgCents: r.PricePerKgCents,
		CapacityKg:      r.CapacityKg,
		ImageURL:        r.ImageURL,
		Tags:            r.Tags,
	}
	if r.HarvestDate != nil {
		harvest := time.Time(*r.HarvestDate)
		input.HarvestDate = &harvest
	}
	if r.BestBefore != nil {
		best := time.Time(*r.BestBefore)
		input.BestBefore = &best
	}
	return input
}

// JSONDate accepts both date-only and RFC 3339 timestamps in request bodies.
type JSONDate time.Time

func (d *JSONDate) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if len(raw) >= 2 && raw[0] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	if raw == "" || raw == "null" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			*d = JSONDate(parsed)
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid date, use YYYY-MM-DD or RFC 3339")
}

func (d JSONDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(d).UTC().Format(time.RFC3339) + `"`), nil
}

package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ruwinya10/agrilink-backend/api/responses"
	"github.com/ruwinya10/agrilink-backend/api/validators"
	"github.com/ruwinya10/agrilink-backend/internal/cart"
	"github.com/ruwinya10/agrilink-backend/pkg/enums"
	pkgerrors "github.com/ruwinya10/agrilink-backend/pkg/errors"
	"github.com/ruwinya10/agrilink-backend/pkg/logger"
)

// GetCart returns the authenticated user's cart, reconciled against the
// current catalog.
func GetCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// AddCartItem adds or merges one line into the cart.
func AddCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.AddItem(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// UpdateCartItem changes the quantity of one cart line.
func UpdateCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID, err := pathUUID(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.UpdateItemQuantity(r.Context(), userID, lineID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// RemoveCartItem deletes one cart line.
func RemoveCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID, err := pathUUID(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.RemoveItem(r.Context(), userID, lineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// ClearCart removes every line from the cart.
func ClearCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Clear(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

type addCartItemRequest struct {
	ItemID          string    `json:"item_id" validate:"required"`
	ItemType        string    `json:"item_type" validate:"required"`
	Quantity        int       `json:"quantity" validate:"required,min=1"`
	RentalStartDate *JSONDate `json:"rental_start_date,omitempty"`
	RentalEndDate   *JSONDate `json:"rental_end_date,omitempty"`
}

func (r addCartItemRequest) toInput() (cart.AddItemInput, error) {
	itemID, err := uuid.Parse(r.ItemID)
	if err != nil {
		return cart.AddItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item_id")
	}
	itemType, err := enums.ParseCatalogItemType(strings.TrimSpace(r.ItemType))
	if err != nil {
		return cart.AddItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item_type")
	}

	input := cart.AddItemInput{
		ItemID:   itemID,
		ItemType: itemType,
		Quantity: r.Quantity,
	}
	if r.RentalStartDate != nil {
		start := time.Time(*r.RentalStartDate)
		input.RentalStartDate = &start
	}
	if r.RentalEndDate != nil {
		end := time.Time(*r.RentalEndDate)
		input.RentalEndDate = &end
	}
	return input, nil
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

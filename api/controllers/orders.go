package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ruwinya10/agrilink-backend/api/responses"
	"github.com/ruwinya10/agrilink-backend/api/validators"
	"github.com/ruwinya10/agrilink-backend/internal/orders"
	"github.com/ruwinya10/agrilink-backend/pkg/enums"
	pkgerrors "github.com/ruwinya10/agrilink-backend/pkg/errors"
	"github.com/ruwinya10/agrilink-backend/pkg/logger"
)

// CreateOrder places an order for the authenticated user.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// MyOrders lists the authenticated user's orders, newest first.
func MyOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// GetOrder returns one order. Admins can read any order, customers only
// their own.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Get(r.Context(), userID, actorRole(r), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// CancelOrder cancels an order, restoring stock and rental bookings.
func CancelOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Cancel(r.Context(), userID, actorRole(r), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// MarkOrderReady moves an order from not_ready to ready. Admin only.
func MarkOrderReady(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.MarkReady(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

type createOrderRequest struct {
	Items           []orderLineRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryType    string             `json:"delivery_type" validate:"required"`
	DeliveryAddress *string            `json:"delivery_address,omitempty"`
	ContactName     string             `json:"contact_name" validate:"required"`
	ContactPhone    string             `json:"contact_phone" validate:"required"`
	ContactEmail    string             `json:"contact_email" validate:"required,email"`
	PaymentMethod   string             `json:"payment_method,omitempty"`
}

// orderLineRequest carries exactly one of listing_id, inventory_id, or
// rental_item_id; rental dates are only meaningful for rental lines.
type orderLineRequest struct {
	ListingID       *string   `json:"listing_id,omitempty"`
	InventoryID     *string   `json:"inventory_id,omitempty"`
	RentalItemID    *string   `json:"rental_item_id,omitempty"`
	Quantity        int       `json:"quantity" validate:"required,min=1"`
	RentalStartDate *JSONDate `json:"rental_start_date,omitempty"`
	RentalEndDate   *JSONDate `json:"rental_end_date,omitempty"`
}

func (r createOrderRequest) toInput(customerID uuid.UUID) (orders.CreateInput, error) {
	deliveryType, err := enums.ParseDeliveryType(strings.TrimSpace(r.DeliveryType))
	if err != nil {
		return orders.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery_type")
	}

	var paymentMethod enums.PaymentMethod
	if trimmed := strings.TrimSpace(r.PaymentMethod); trimmed != "" {
		paymentMethod, err = enums.ParsePaymentMethod(trimmed)
		if err != nil {
			return orders.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment_method")
		}
	}

	lines := make([]orders.Line, 0, len(r.Items))
	for i, item := range r.Items {
		line, err := item.toLine()
		if err != nil {
			return orders.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("items[%d]", i))
		}
		lines = append(lines, line)
	}

	return orders.CreateInput{
		CustomerID:      customerID,
		Lines:           lines,
		DeliveryType:    deliveryType,
		DeliveryAddress: r.DeliveryAddress,
		ContactName:     strings.TrimSpace(r.ContactName),
		ContactPhone:    strings.TrimSpace(r.ContactPhone),
		ContactEmail:    strings.TrimSpace(r.ContactEmail),
		PaymentMethod:   paymentMethod,
	}, nil
}

func (r orderLineRequest) toLine() (orders.Line, error) {
	set := 0
	for _, id := range []*string{r.ListingID, r.InventoryID, r.RentalItemID} {
		if id != nil {
			set++
		}
	}
	if set != 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of listing_id, inventory_id, or rental_item_id is required")
	}

	switch {
	case r.ListingID != nil:
		id, err := uuid.Parse(*r.ListingID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid listing_id")
		}
		return orders.ListingLine{ListingID: id, Quantity: r.Quantity}, nil
	case r.InventoryID != nil:
		id, err := uuid.Parse(*r.InventoryID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid inventory_id")
		}
		return orders.InventoryLine{InventoryID: id, Quantity: r.Quantity}, nil
	default:
		id, err := uuid.Parse(*r.RentalItemID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rental_item_id")
		}
		if r.RentalStartDate == nil || r.RentalEndDate == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental lines require rental_start_date and rental_end_date")
		}
		return orders.RentalLine{
			RentalItemID: id,
			Quantity:     r.Quantity,
			StartDate:    time.Time(*r.RentalStartDate),
			EndDate:      time.Time(*r.RentalEndDate),
		}, nil
	}
}

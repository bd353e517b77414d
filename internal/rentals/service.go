package rentals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ruwinya10/agrilink-backend/pkg/db/models"
	"github.com/ruwinya10/agrilink-backend/pkg/enums"
	pkgerrors "github.com/ruwinya10/agrilink-backend/pkg/errors"
)

// Service answers availability questions over the booking log and manages
// the bookings created and cancelled as order side effects.
type Service interface {
	Availability(ctx context.Context, itemID uuid.UUID, start, end time.Time) (*AvailabilityDTO, error)
	AvailableQuantity(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, start, end time.Time) (int, error)
	BookForOrder(ctx context.Context, tx *gorm.DB, orderID, userID uuid.UUID, lines []BookingLine) error
	CancelOrderBookings(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
}

// AvailabilityDTO reports how much of an item's fleet is free over a window.
type AvailabilityDTO struct {
	ItemID    uuid.UUID `json:"item_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	TotalQty  int       `json:"total_qty"`
	Booked    int       `json:"booked"`
	Available int       `json:"available"`
}

// BookingLine is one rental reservation requested by an order.
type BookingLine struct {
	ItemID    uuid.UUID
	Quantity  int
	StartDate time.Time
	EndDate   time.Time
}

type rentalItemLoader interface {
	FindRentalItemByID(ctx context.Context, id uuid.UUID) (*models.RentalItem, error)
}

type service struct {
	repo  Repository
	items rentalItemLoader
}

// NewService constructs a rentals service instance.
func NewService(repo Repository, items rentalItemLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rentals repository required")
	}
	if items == nil {
		return nil, fmt.Errorf("rental item loader required")
	}
	return &service{repo: repo, items: items}, nil
}

// Availability computes the free quantity for a window. Windows are
// inclusive on both ends and compared at day granularity.
func (s *service) Availability(ctx context.Context, itemID uuid.UUID, start, end time.Time) (*AvailabilityDTO, error) {
	start, end = truncateToDay(start), truncateToDay(end)
	if end.Before(start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end_date cannot precede start_date")
	}

	item, err := s.items.FindRentalItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rental item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load rental item")
	}

	booked, err := s.bookedQuantity(ctx, s.repo, itemID, start, end)
	if err != nil {
		return nil, err
	}

	available := item.TotalQty - booked
	if available < 0 {
		available = 0
	}
	return &AvailabilityDTO{
		ItemID:    itemID,
		StartDate: start,
		EndDate:   end,
		TotalQty:  item.TotalQty,
		Booked:    booked,
		Available: available,
	}, nil
}

// AvailableQuantity is the transactional variant used while placing orders.
func (s *service) AvailableQuantity(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, start, end time.Time) (int, error) {
	start, end = truncateToDay(start), truncateToDay(end)
	if end.Before(start) {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "end_date cannot precede start_date")
	}

	item, err := s.items.FindRentalItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "rental item not found")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load rental item")
	}

	booked, err := s.bookedQuantity(ctx, s.repo.WithTx(tx), itemID, start, end)
	if err != nil {
		return 0, err
	}
	available := item.TotalQty - booked
	if available < 0 {
		available = 0
	}
	return available, nil
}

// BookForOrder inserts confirmed bookings linked to the order. Availability
// is assumed to have been checked by the caller inside the same transaction.
func (s *service) BookForOrder(ctx context.Context, tx *gorm.DB, orderID, userID uuid.UUID, lines []BookingLine) error {
	repo := s.repo.WithTx(tx)
	for _, line := range lines {
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("booking quantity must be positive for item %s", line.ItemID))
		}
		booking := &models.RentalBooking{
			RentalItemID: line.ItemID,
			OrderID:      &orderID,
			UserID:       userID,
			Quantity:     line.Quantity,
			StartDate:    truncateToDay(line.StartDate),
			EndDate:      truncateToDay(line.EndDate),
			Status:       enums.BookingStatusConfirmed,
		}
		if _, err := repo.CreateBooking(ctx, booking); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert rental booking")
		}
	}
	return nil
}

// CancelOrderBookings flips every confirmed booking of the order to
// cancelled, freeing its window.
func (s *service) CancelOrderBookings(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	repo := s.repo.WithTx(tx)
	bookings, err := repo.FindBookingsByOrder(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order bookings")
	}
	for i := range bookings {
		if bookings[i].Status != enums.BookingStatusConfirmed {
			continue
		}
		bookings[i].Status = enums.BookingStatusCancelled
		if err := repo.SaveBooking(ctx, &bookings[i]); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: cancel rental booking")
		}
	}
	return nil
}

func (s *service) bookedQuantity(ctx context.Context, repo Repository, itemID uuid.UUID, start, end time.Time) (int, error) {
	bookings, err := repo.FindConfirmedOverlapping(ctx, itemID, start, end)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load overlapping bookings")
	}
	booked := 0
	for _, b := range bookings {
		booked += b.Quantity
	}
	return booked, nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

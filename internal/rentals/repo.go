package rentals

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ruwinya10/agrilink-backend/pkg/db/models"
	"github.com/ruwinya10/agrilink-backend/pkg/enums"
)

// Repository covers persistence for rental bookings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateBooking(ctx context.Context, booking *models.RentalBooking) (*models.RentalBooking, error)
	SaveBooking(ctx context.Context, booking *models.RentalBooking) error
	FindConfirmedOverlapping(ctx context.Context, itemID uuid.UUID, start, end time.Time) ([]models.RentalBooking, error)
	FindBookingsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.RentalBooking, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a rentals repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateBooking(ctx context.Context, booking *models.RentalBooking) (*models.RentalBooking, error) {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *repository) SaveBooking(ctx context.Context, booking *models.RentalBooking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

func (r *repository) FindConfirmedOverlapping(ctx context.Context, itemID uuid.UUID, start, end time.Time) ([]models.RentalBooking, error) {
	var bookings []models.RentalBooking
	err := r.db.WithContext(ctx).
		Where("rental_item_id = ? AND status = ? AND start_date <= ? AND end_date >= ?",
			itemID, enums.BookingStatusConfirmed, end, start).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) FindBookingsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.RentalBooking, error) {
	var bookings []models.RentalBooking
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

package deliveries

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ruwinya10/agrilink-backend/pkg/db/models"
	"github.com/ruwinya10/agrilink-backend/pkg/enums"
	"github.com/ruwinya10/agrilink-backend/pkg/pagination"
)

// Repository persists deliveries and their append-only status history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, delivery *models.Delivery) (*models.Delivery, error)
	Save(ctx context.Context, delivery *models.Delivery) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error)
	FindAll(ctx context.Context, status *enums.DeliveryStatus, cursor *pagination.Cursor, limit int) ([]models.Delivery, error)
	FindByDriver(ctx context.Context, driverID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Delivery, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Delivery, error)
	AppendEvent(ctx context.Context, event *models.DeliveryStatusEvent) error
	UnlinkOrderDelivery(ctx context.Context, orderID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a deliveries repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, delivery *models.Delivery) (*models.Delivery, error) {
	if delivery.ID == uuid.Nil {
		delivery.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(delivery).Error; err != nil {
		return nil, err
	}
	return delivery, nil
}

func (r *repository) Save(ctx context.Context, delivery *models.Delivery) error {
	return r.db.WithContext(ctx).Omit("StatusHistory").Save(delivery).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("delivery_id = ?", id).Delete(&models.DeliveryStatusEvent{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Delivery{}).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	err := r.db.WithContext(ctx).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", id).
		First(&delivery).Error
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (r *repository) FindAll(ctx context.Context, status *enums.DeliveryStatus, cursor *pagination.Cursor, limit int) ([]models.Delivery, error) {
	query := r.db.WithContext(ctx)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	return r.page(query, cursor, limit)
}

func (r *repository) FindByDriver(ctx context.Context, driverID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Delivery, error) {
	query := r.db.WithContext(ctx).Where("driver_id = ?", driverID)
	return r.page(query, cursor, limit)
}

func (r *repository) FindByCustomer(ctx context.Context, customerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Delivery, error) {
	query := r.db.WithContext(ctx).Where("customer_id = ?", customerID)
	return r.page(query, cursor, limit)
}

func (r *repository) page(query *gorm.DB, cursor *pagination.Cursor, limit int) ([]models.Delivery, error) {
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	var deliveries []models.Delivery
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&deliveries).Error; err != nil {
		return nil, err
	}
	return deliveries, nil
}

func (r *repository) AppendEvent(ctx context.Context, event *models.DeliveryStatusEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) UnlinkOrderDelivery(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("delivery_id", nil).Error
}

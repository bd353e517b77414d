package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ruwinya10/agrilink-backend/pkg/db/models"
	"github.com/ruwinya10/agrilink-backend/pkg/enums"
	"github.com/ruwinya10/agrilink-backend/pkg/pagination"
)

// Repository covers persistence for the three catalog variants.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateListing(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	SaveListing(ctx context.Context, listing *models.Listing) error
	FindListingByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	FindListingsByFarmer(ctx context.Context, farmerID uuid.UUID) ([]models.Listing, error)
	FindAvailableListings(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Listing, error)
	FindStaleAvailableListings(ctx context.Context, cutoff time.Time) ([]models.Listing, error)

	CreateProduct(ctx context.Context, product *models.InventoryProduct) (*models.InventoryProduct, error)
	SaveProduct(ctx context.Context, product *models.InventoryProduct) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.InventoryProduct, error)
	FindProducts(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.InventoryProduct, error)

	CreateRentalItem(ctx context.Context, item *models.RentalItem) (*models.RentalItem, error)
	SaveRentalItem(ctx context.Context, item *models.RentalItem) error
	DeleteRentalItem(ctx context.Context, id uuid.UUID) error
	FindRentalItemByID(ctx context.Context, id uuid.UUID) (*models.RentalItem, error)
	FindAvailableRentalItems(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.RentalItem, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateListing(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	if listing.ID == uuid.Nil {
		listing.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

func (r *repository) SaveListing(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Save(listing).Error
}

func (r *repository) FindListingByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&listing).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repository) FindListingsByFarmer(ctx context.Context, farmerID uuid.UUID) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("created_at DESC").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *repository) FindAvailableListings(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Listing, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", enums.ListingStatusAvailable)
	query = applyCursor(query, cursor)

	var listings []models.Listing
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *repository) FindStaleAvailableListings(ctx context.Context, cutoff time.Time) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.WithContext(ctx).
		Where("status = ? AND best_before < ?", enums.ListingStatusAvailable, cutoff).
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *repository) CreateProduct(ctx context.Context, product *models.InventoryProduct) (*models.InventoryProduct, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) SaveProduct(ctx context.Context, product *models.InventoryProduct) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.InventoryProduct{}).Error
}

func (r *repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.InventoryProduct, error) {
	var product models.InventoryProduct
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindProducts(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.InventoryProduct, error) {
	query := applyCursor(r.db.WithContext(ctx), cursor)

	var products []models.InventoryProduct
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) CreateRentalItem(ctx context.Context, item *models.RentalItem) (*models.RentalItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) SaveRentalItem(ctx context.Context, item *models.RentalItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) DeleteRentalItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.RentalItem{}).Error
}

func (r *repository) FindRentalItemByID(ctx context.Context, id uuid.UUID) (*models.RentalItem, error) {
	var item models.RentalItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindAvailableRentalItems(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.RentalItem, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", enums.RentalItemStatusAvailable)
	query = applyCursor(query, cursor)

	var items []models.RentalItem
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func applyCursor(query *gorm.DB, cursor *pagination.Cursor) *gorm.DB {
	if cursor == nil {
		return query
	}
	return query.Where(
		"created_at < ? OR (created_at = ? AND id < ?)",
		cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
	)
}

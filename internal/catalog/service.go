package catalog

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
	"github.com/ruwinya10/agrilink-backend/pkg/pagination"
)

// Service exposes catalog management and lookup operations across the three
// item variants.
type Service interface {
	CreateListing(ctx context.Context, farmerID uuid.UUID, input CreateListingInput) (*ListingDTO, error)
	UpdateListing(ctx context.Context, farmerID, listingID uuid.UUID, input UpdateListingInput) (*ListingDTO, error)
	RemoveListing(ctx context.Context, farmerID, listingID uuid.UUID) error
	ListFarmerListings(ctx context.Context, farmerID uuid.UUID) ([]ListingDTO, error)
	BrowseListings(ctx context.Context, params pagination.Params) (*ListingPage, error)
	GetListing(ctx context.Context, listingID uuid.UUID) (*ListingDTO, error)

	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	BrowseProducts(ctx context.Context, params pagination.Params) (*ProductPage, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)

	CreateRentalItem(ctx context.Context, input CreateRentalItemInput) (*RentalItemDTO, error)
	UpdateRentalItem(ctx context.Context, itemID uuid.UUID, input UpdateRentalItemInput) (*RentalItemDTO, error)
	DeleteRentalItem(ctx context.Context, itemID uuid.UUID) error
	BrowseRentalItems(ctx context.Context, params pagination.Params) (*RentalItemPage, error)
	GetRentalItem(ctx context.Context, itemID uuid.UUID) (*RentalItemDTO, error)

	Resolve(ctx context.Context, itemType enums.CatalogItemType, itemID uuid.UUID) (*ItemSnapshot, error)
	Adjust(ctx context.Context, tx *gorm.DB, lines []StockAdjustment, direction AdjustDirection) error
	ExpireListings(ctx context.Context, now time.Time) ([]models.Listing, error)
}

// CreateListingInput holds the validated payload to create a listing.
type CreateListingInput struct {
	Title           string
	CropType        string
	PricePerKgCents int
	CapacityKg      int
	HarvestDate     time.Time
	BestBefore      time.Time
	ImageURL        *string
	Tags            []string
}

// UpdateListingInput holds optional mutation values for a listing.
type UpdateListingInput struct {
	Title           *string
	CropType        *string
	PricePerKgCents *int
	CapacityKg      *int
	HarvestDate     *time.Time
	BestBefore      *time.Time
	ImageURL        *string
	Tags            *[]string
}

// CreateProductInput holds the validated payload to create an inventory product.
type CreateProductInput struct {
	Title             string
	Category          string
	PriceCents        int
	StockQuantity     int
	LowStockThreshold int
	Unit              string
	ImageURL          *string
}

// UpdateProductInput holds optional mutation values for an inventory product.
type UpdateProductInput struct {
	Title             *string
	Category          *string
	PriceCents        *int
	StockQuantity     *int
	LowStockThreshold *int
	Unit              *string
	ImageURL          *string
}

// CreateRentalItemInput holds the validated payload to create a rental item.
type CreateRentalItemInput struct {
	Title       string
	Category    string
	PerDayCents int
	TotalQty    int
	ImageURL    *string
}

// UpdateRentalItemInput holds optional mutation values for a rental item.
type UpdateRentalItemInput struct {
	Title       *string
	Category    *string
	PerDayCents *int
	TotalQty    *int
	ImageURL    *string
	Status      *enums.RentalItemStatus
}

// ItemSnapshot is the current catalog state of one item, resolved for cart
// and order flows. UnitPriceCents is the stored base price; commission for
// listings is applied by the caller.
type ItemSnapshot struct {
	ID             uuid.UUID
	Type           enums.CatalogItemType
	Title          string
	Category       string
	Unit           string
	ImageURL       *string
	UnitPriceCents int
	Available      int
	FarmerID       *uuid.UUID
	Orderable      bool
}

type service struct {
	repo Repository
}

// NewService constructs a catalog service instance.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateListing(ctx context.Context, farmerID uuid.UUID, input CreateListingInput) (*ListingDTO, error) {
	if input.PricePerKgCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_per_kg must be positive")
	}
	if input.CapacityKg <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "capacity_kg must be positive")
	}
	if input.BestBefore.Before(input.HarvestDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "best_before cannot precede harvest_date")
	}

	listing := &models.Listing{
		FarmerID:        farmerID,
		Title:           input.Title,
		CropType:        input.CropType,
		PricePerKgCents: input.PricePerKgCents,
		CapacityKg:      input.CapacityKg,
		HarvestDate:     input.HarvestDate,
		BestBefore:      input.BestBefore,
		ImageURL:        input.ImageURL,
		Tags:            input.Tags,
	}
	listing.Status = DeriveListingStatus(enums.ListingStatusAvailable, listing.CapacityKg, listing.BestBefore, time.Now())

	created, err := s.repo.CreateListing(ctx, listing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert listing")
	}
	return newListingDTO(created), nil
}

func (s *service) UpdateListing(ctx context.Context, farmerID, listingID uuid.UUID, input UpdateListingInput) (*ListingDTO, error) {
	listing, err := s.loadOwnedListing(ctx, farmerID, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status == enums.ListingStatusRemoved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "listing has been removed")
	}

	if input.Title != nil {
		listing.Title = *input.Title
	}
	if input.CropType != nil {
		listing.CropType = *input.CropType
	}
	if input.PricePerKgCents != nil {
		if *input.PricePerKgCents <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_per_kg must be positive")
		}
		listing.PricePerKgCents = *input.PricePerKgCents
	}
	if input.CapacityKg != nil {
		if *input.CapacityKg < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "capacity_kg cannot be negative")
		}
		listing.CapacityKg = *input.CapacityKg
	}
	if input.HarvestDate != nil {
		listing.HarvestDate = *input.HarvestDate
	}
	if input.BestBefore != nil {
		listing.BestBefore = *input.BestBefore
	}
	if input.ImageURL != nil {
		listing.ImageURL = input.ImageURL
	}
	if input.Tags != nil {
		listing.Tags = *input.Tags
	}
	if listing.BestBefore.Before(listing.HarvestDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "best_before cannot precede harvest_date")
	}

	listing.Status = DeriveListingStatus(listing.Status, listing.CapacityKg, listing.BestBefore, time.Now())
	if err := s.repo.SaveListing(ctx, listing); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save listing")
	}
	return newListingDTO(listing), nil
}

func (s *service) RemoveListing(ctx context.Context, farmerID, listingID uuid.UUID) error {
	listing, err := s.loadOwnedListing(ctx, farmerID, listingID)
	if err != nil {
		return err
	}
	if listing.Status == enums.ListingStatusRemoved {
		return nil
	}
	listing.Status = enums.ListingStatusRemoved
	if err := s.repo.SaveListing(ctx, listing); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: remove listing")
	}
	return nil
}

func (s *service) ListFarmerListings(ctx context.Context, farmerID uuid.UUID) ([]ListingDTO, error) {
	listings, err := s.repo.FindListingsByFarmer(ctx, farmerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list farmer listings")
	}

	now := time.Now()
	dtos := make([]ListingDTO, 0, len(listings))
	for i := range listings {
		if err := s.refreshListingStatus(ctx, &listings[i], now); err != nil {
			return nil, err
		}
		dtos = append(dtos, *newListingDTO(&listings[i]))
	}
	return dtos, nil
}

func (s *service) BrowseListings(ctx context.Context, params pagination.Params) (*ListingPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	listings, err := s.repo.FindAvailableListings(ctx, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: browse listings")
	}

	page := &ListingPage{Items: make([]ListingDTO, 0, len(listings))}
	if len(listings) > limit {
		listings = listings[:limit]
		last := listings[len(listings)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	now := time.Now()
	for i := range listings {
		if err := s.refreshListingStatus(ctx, &listings[i], now); err != nil {
			return nil, err
		}
		if listings[i].Status != enums.ListingStatusAvailable {
			continue
		}
		page.Items = append(page.Items, *newListingDTO(&listings[i]))
	}
	return page, nil
}

func (s *service) GetListing(ctx context.Context, listingID uuid.UUID) (*ListingDTO, error) {
	listing, err := s.repo.FindListingByID(ctx, listingID)
	if err != nil {
		return nil, notFoundOrDependency(err, "listing")
	}
	if err := s.refreshListingStatus(ctx, listing, time.Now()); err != nil {
		return nil, err
	}
	return newListingDTO(listing), nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if input.PriceCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.StockQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock_quantity cannot be negative")
	}
	if input.LowStockThreshold < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "low_stock_threshold cannot be negative")
	}

	product := &models.InventoryProduct{
		Title:             input.Title,
		Category:          input.Category,
		PriceCents:        input.PriceCents,
		StockQuantity:     input.StockQuantity,
		LowStockThreshold: input.LowStockThreshold,
		Unit:              input.Unit,
		ImageURL:          input.ImageURL,
	}
	if product.Unit == "" {
		product.Unit = "unit"
	}
	product.Status = DeriveInventoryStatus(product.StockQuantity, product.LowStockThreshold)

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return newProductDTO(created), nil
}

func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		return nil, notFoundOrDependency(err, "product")
	}

	if input.Title != nil {
		product.Title = *input.Title
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.PriceCents != nil {
		if *input.PriceCents <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		product.PriceCents = *input.PriceCents
	}
	if input.StockQuantity != nil {
		if *input.StockQuantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock_quantity cannot be negative")
		}
		product.StockQuantity = *input.StockQuantity
	}
	if input.LowStockThreshold != nil {
		if *input.LowStockThreshold < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "low_stock_threshold cannot be negative")
		}
		product.LowStockThreshold = *input.LowStockThreshold
	}
	if input.Unit != nil {
		product.Unit = *input.Unit
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}

	product.Status = DeriveInventoryStatus(product.StockQuantity, product.LowStockThreshold)
	if err := s.repo.SaveProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save product")
	}
	return newProductDTO(product), nil
}

func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.repo.FindProductByID(ctx, productID); err != nil {
		return notFoundOrDependency(err, "product")
	}
	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}
	return nil
}

func (s *service) BrowseProducts(ctx context.Context, params pagination.Params) (*ProductPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	products, err := s.repo.FindProducts(ctx, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: browse products")
	}

	page := &ProductPage{Items: make([]ProductDTO, 0, len(products))}
	if len(products) > limit {
		products = products[:limit]
		last := products[len(products)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	for i := range products {
		page.Items = append(page.Items, *newProductDTO(&products[i]))
	}
	return page, nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		return nil, notFoundOrDependency(err, "product")
	}
	return newProductDTO(product), nil
}

func (s *service) CreateRentalItem(ctx context.Context, input CreateRentalItemInput) (*RentalItemDTO, error) {
	if input.PerDayCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "per_day price must be positive")
	}
	if input.TotalQty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total_qty must be positive")
	}

	item := &models.RentalItem{
		Title:       input.Title,
		Category:    input.Category,
		PerDayCents: input.PerDayCents,
		TotalQty:    input.TotalQty,
		ImageURL:    input.ImageURL,
		Status:      enums.RentalItemStatusAvailable,
	}
	created, err := s.repo.CreateRentalItem(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert rental item")
	}
	return newRentalItemDTO(created), nil
}

func (s *service) UpdateRentalItem(ctx context.Context, itemID uuid.UUID, input UpdateRentalItemInput) (*RentalItemDTO, error) {
	item, err := s.repo.FindRentalItemByID(ctx, itemID)
	if err != nil {
		return nil, notFoundOrDependency(err, "rental item")
	}

	if input.Title != nil {
		item.Title = *input.Title
	}
	if input.Category != nil {
		item.Category = *input.Category
	}
	if input.PerDayCents != nil {
		if *input.PerDayCents <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "per_day price must be positive")
		}
		item.PerDayCents = *input.PerDayCents
	}
	if input.TotalQty != nil {
		if *input.TotalQty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "total_qty must be positive")
		}
		item.TotalQty = *input.TotalQty
	}
	if input.ImageURL != nil {
		item.ImageURL = input.ImageURL
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid rental item status %q", *input.Status))
		}
		item.Status = *input.Status
	}

	if err := s.repo.SaveRentalItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save rental item")
	}
	return newRentalItemDTO(item), nil
}

func (s *service) DeleteRentalItem(ctx context.Context, itemID uuid.UUID) error {
	if _, err := s.repo.FindRentalItemByID(ctx, itemID); err != nil {
		return notFoundOrDependency(err, "rental item")
	}
	if err := s.repo.DeleteRentalItem(ctx, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete rental item")
	}
	return nil
}

func (s *service) BrowseRentalItems(ctx context.Context, params pagination.Params) (*RentalItemPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	items, err := s.repo.FindAvailableRentalItems(ctx, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: browse rental items")
	}

	page := &RentalItemPage{Items: make([]RentalItemDTO, 0, len(items))}
	if len(items) > limit {
		items = items[:limit]
		last := items[len(items)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	for i := range items {
		page.Items = append(page.Items, *newRentalItemDTO(&items[i]))
	}
	return page, nil
}

func (s *service) GetRentalItem(ctx context.Context, itemID uuid.UUID) (*RentalItemDTO, error) {
	item, err := s.repo.FindRentalItemByID(ctx, itemID)
	if err != nil {
		return nil, notFoundOrDependency(err, "rental item")
	}
	return newRentalItemDTO(item), nil
}

// Resolve loads the current state of any catalog item for cart and order
// flows. Listings refresh their derived status on the way out.
func (s *service) Resolve(ctx context.Context, itemType enums.CatalogItemType, itemID uuid.UUID) (*ItemSnapshot, error) {
	switch itemType {
	case enums.CatalogItemTypeListing:
		listing, err := s.repo.FindListingByID(ctx, itemID)
		if err != nil {
			return nil, notFoundOrDependency(err, "listing")
		}
		if err := s.refreshListingStatus(ctx, listing, time.Now()); err != nil {
			return nil, err
		}
		return &ItemSnapshot{
			ID:             listing.ID,
			Type:           enums.CatalogItemTypeListing,
			Title:          listing.Title,
			Category:       listing.CropType,
			Unit:           "kg",
			ImageURL:       listing.ImageURL,
			UnitPriceCents: listing.PricePerKgCents,
			Available:      listing.CapacityKg,
			FarmerID:       &listing.FarmerID,
			Orderable:      listing.Status == enums.ListingStatusAvailable,
		}, nil

	case enums.CatalogItemTypeInventory:
		product, err := s.repo.FindProductByID(ctx, itemID)
		if err != nil {
			return nil, notFoundOrDependency(err, "product")
		}
		return &ItemSnapshot{
			ID:             product.ID,
			Type:           enums.CatalogItemTypeInventory,
			Title:          product.Title,
			Category:       product.Category,
			Unit:           product.Unit,
			ImageURL:       product.ImageURL,
			UnitPriceCents: product.PriceCents,
			Available:      product.StockQuantity,
			Orderable:      product.StockQuantity > 0,
		}, nil

	case enums.CatalogItemTypeRental:
		item, err := s.repo.FindRentalItemByID(ctx, itemID)
		if err != nil {
			return nil, notFoundOrDependency(err, "rental item")
		}
		return &ItemSnapshot{
			ID:             item.ID,
			Type:           enums.CatalogItemTypeRental,
			Title:          item.Title,
			Category:       item.Category,
			Unit:           "day",
			ImageURL:       item.ImageURL,
			UnitPriceCents: item.PerDayCents,
			Available:      item.TotalQty,
			Orderable:      item.Status == enums.RentalItemStatusAvailable,
		}, nil

	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown item type %q", itemType))
	}
}

// ExpireListings sweeps available listings whose best-before day has passed
// and returns the rows it expired so callers can record activity.
func (s *service) ExpireListings(ctx context.Context, now time.Time) ([]models.Listing, error) {
	stale, err := s.repo.FindStaleAvailableListings(ctx, truncateToDay(now))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find stale listings")
	}

	expired := make([]models.Listing, 0, len(stale))
	for i := range stale {
		stale[i].Status = enums.ListingStatusExpired
		if err := s.repo.SaveListing(ctx, &stale[i]); err != nil {
			return expired, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: expire listing")
		}
		expired = append(expired, stale[i])
	}
	return expired, nil
}

// refreshListingStatus applies read-path maintenance: a listing past its
// best-before date flips to expired and the flip is persisted.
func (s *service) refreshListingStatus(ctx context.Context, listing *models.Listing, now time.Time) error {
	next := DeriveListingStatus(listing.Status, listing.CapacityKg, listing.BestBefore, now)
	if next == listing.Status {
		return nil
	}
	listing.Status = next
	if err := s.repo.SaveListing(ctx, listing); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: refresh listing status")
	}
	return nil
}

func (s *service) loadOwnedListing(ctx context.Context, farmerID, listingID uuid.UUID) (*models.Listing, error) {
	listing, err := s.repo.FindListingByID(ctx, listingID)
	if err != nil {
		return nil, notFoundOrDependency(err, "listing")
	}
	if listing.FarmerID != farmerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "listing belongs to another farmer")
	}
	return listing, nil
}

func notFoundOrDependency(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, resource+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load "+resource)
}

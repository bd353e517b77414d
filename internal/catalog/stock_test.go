package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ruwinya10/agrilink-backend/pkg/db/models"
	"github.com/ruwinya10/agrilink-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Listing{},
		&models.InventoryProduct{},
		&models.RentalItem{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedListing(t *testing.T, db *gorm.DB, capacityKg int) *models.Listing {
	t.Helper()
	listing := &models.Listing{
		ID:              uuid.New(),
		FarmerID:        uuid.New(),
		Title:           "Red onions",
		CropType:        "onion",
		PricePerKgCents: 10000,
		CapacityKg:      capacityKg,
		HarvestDate:     time.Now().AddDate(0, 0, -2),
		BestBefore:      time.Now().AddDate(0, 0, 7),
		Status:          enums.ListingStatusAvailable,
	}
	if err := db.Create(listing).Error; err != nil {
		t.Fatalf("seed listing: %v", err)
	}
	return listing
}

func seedProduct(t *testing.T, db *gorm.DB, stock, threshold int) *models.InventoryProduct {
	t.Helper()
	product := &models.InventoryProduct{
		ID:                uuid.New(),
		Title:             "Compost 5kg",
		Category:          "fertilizer",
		PriceCents:        45000,
		StockQuantity:     stock,
		LowStockThreshold: threshold,
		Unit:              "bag",
		Status:            DeriveInventoryStatus(stock, threshold),
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func TestAdjustDebitAndCredit(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	listing := seedListing(t, db, 5)
	product := seedProduct(t, db, 10, 5)

	lines := []StockAdjustment{
		{ItemID: listing.ID, ItemType: enums.CatalogItemTypeListing, Quantity: 2},
		{ItemID: product.ID, ItemType: enums.CatalogItemTypeInventory, Quantity: 6},
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Adjust(ctx, tx, lines, AdjustDebit)
	})
	if err != nil {
		t.Fatalf("debit: %v", err)
	}

	var gotListing models.Listing
	if err := db.First(&gotListing, "id = ?", listing.ID).Error; err != nil {
		t.Fatalf("reload listing: %v", err)
	}
	if gotListing.CapacityKg != 3 {
		t.Fatalf("expected capacity 3, got %d", gotListing.CapacityKg)
	}
	if gotListing.Status != enums.ListingStatusAvailable {
		t.Fatalf("expected available, got %s", gotListing.Status)
	}

	var gotProduct models.InventoryProduct
	if err := db.First(&gotProduct, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if gotProduct.StockQuantity != 4 {
		t.Fatalf("expected stock 4, got %d", gotProduct.StockQuantity)
	}
	if gotProduct.Status != enums.InventoryStatusLowStock {
		t.Fatalf("expected low_stock, got %s", gotProduct.Status)
	}

	// Credit mirrors the debit exactly.
	err = db.Transaction(func(tx *gorm.DB) error {
		return svc.Adjust(ctx, tx, lines, AdjustCredit)
	})
	if err != nil {
		t.Fatalf("credit: %v", err)
	}

	if err := db.First(&gotListing, "id = ?", listing.ID).Error; err != nil {
		t.Fatalf("reload listing: %v", err)
	}
	if gotListing.CapacityKg != 5 {
		t.Fatalf("expected capacity restored to 5, got %d", gotListing.CapacityKg)
	}
	if err := db.First(&gotProduct, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if gotProduct.StockQuantity != 10 {
		t.Fatalf("expected stock restored to 10, got %d", gotProduct.StockQuantity)
	}
	if gotProduct.Status != enums.InventoryStatusAvailable {
		t.Fatalf("expected available after restock, got %s", gotProduct.Status)
	}
}

func TestAdjustDebitClampsAtZero(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	listing := seedListing(t, db, 2)
	product := seedProduct(t, db, 1, 5)

	lines := []StockAdjustment{
		{ItemID: listing.ID, ItemType: enums.CatalogItemTypeListing, Quantity: 5},
		{ItemID: product.ID, ItemType: enums.CatalogItemTypeInventory, Quantity: 3},
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Adjust(ctx, tx, lines, AdjustDebit)
	})
	if err != nil {
		t.Fatalf("debit: %v", err)
	}

	var gotListing models.Listing
	if err := db.First(&gotListing, "id = ?", listing.ID).Error; err != nil {
		t.Fatalf("reload listing: %v", err)
	}
	if gotListing.CapacityKg != 0 {
		t.Fatalf("expected capacity clamped to 0, got %d", gotListing.CapacityKg)
	}
	if gotListing.Status != enums.ListingStatusSold {
		t.Fatalf("expected sold at zero capacity, got %s", gotListing.Status)
	}

	var gotProduct models.InventoryProduct
	if err := db.First(&gotProduct, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if gotProduct.StockQuantity != 0 {
		t.Fatalf("expected stock clamped to 0, got %d", gotProduct.StockQuantity)
	}
	if gotProduct.Status != enums.InventoryStatusOutOfStock {
		t.Fatalf("expected out_of_stock, got %s", gotProduct.Status)
	}
}

func TestAdjustIgnoresRentalLines(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)

	lines := []StockAdjustment{
		{ItemID: uuid.New(), ItemType: enums.CatalogItemTypeRental, Quantity: 2},
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Adjust(context.Background(), tx, lines, AdjustDebit)
	})
	if err != nil {
		t.Fatalf("rental lines should be a no-op: %v", err)
	}
}

func TestAdjustRejectsNonPositiveQuantity(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)

	lines := []StockAdjustment{
		{ItemID: uuid.New(), ItemType: enums.CatalogItemTypeInventory, Quantity: 0},
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Adjust(context.Background(), tx, lines, AdjustDebit)
	})
	if err == nil {
		t.Fatal("expected zero quantity to be rejected")
	}
}

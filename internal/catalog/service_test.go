package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ruwinya10/agrilink-backend/pkg/enums"
	pkgerrors "github.com/ruwinya10/agrilink-backend/pkg/errors"
	"github.com/ruwinya10/agrilink-backend/pkg/pagination"
)

func TestListingLifecycle(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	farmerID := uuid.New()

	created, err := svc.CreateListing(ctx, farmerID, CreateListingInput{
		Title:           "Basmati rice",
		CropType:        "rice",
		PricePerKgCents: 32000,
		CapacityKg:      40,
		HarvestDate:     time.Now().AddDate(0, 0, -1),
		BestBefore:      time.Now().AddDate(0, 0, 30),
		Tags:            []string{"organic"},
	})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	if created.Status != enums.ListingStatusAvailable {
		t.Fatalf("expected available, got %s", created.Status)
	}

	newPrice := 35000
	updated, err := svc.UpdateListing(ctx, farmerID, created.ID, UpdateListingInput{PricePerKgCents: &newPrice})
	if err != nil {
		t.Fatalf("update listing: %v", err)
	}
	if updated.PricePerKgCents != 35000 {
		t.Fatalf("expected price update, got %d", updated.PricePerKgCents)
	}

	// Another farmer cannot touch it.
	_, err = svc.UpdateListing(ctx, uuid.New(), created.ID, UpdateListingInput{PricePerKgCents: &newPrice})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if err := svc.RemoveListing(ctx, farmerID, created.ID); err != nil {
		t.Fatalf("remove listing: %v", err)
	}
	// Removing twice is a no-op.
	if err := svc.RemoveListing(ctx, farmerID, created.ID); err != nil {
		t.Fatalf("second remove should be a no-op: %v", err)
	}

	got, err := svc.GetListing(ctx, created.ID)
	if err != nil {
		t.Fatalf("get listing: %v", err)
	}
	if got.Status != enums.ListingStatusRemoved {
		t.Fatalf("expected removed, got %s", got.Status)
	}

	// Removed listings cannot be edited.
	_, err = svc.UpdateListing(ctx, farmerID, created.ID, UpdateListingInput{PricePerKgCents: &newPrice})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestGetListingExpiresStaleOnRead(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	listing := seedListing(t, db, 10)
	listing.BestBefore = time.Now().AddDate(0, 0, -3)
	if err := db.Save(listing).Error; err != nil {
		t.Fatalf("age listing: %v", err)
	}

	got, err := svc.GetListing(ctx, listing.ID)
	if err != nil {
		t.Fatalf("get listing: %v", err)
	}
	if got.Status != enums.ListingStatusExpired {
		t.Fatalf("expected expired on read, got %s", got.Status)
	}

	// The flip is persisted, not just projected.
	snap, err := svc.Resolve(ctx, enums.CatalogItemTypeListing, listing.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if snap.Orderable {
		t.Fatal("expired listing must not be orderable")
	}
}

func TestExpireListingsSweep(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	fresh := seedListing(t, db, 10)
	stale := seedListing(t, db, 10)
	stale.BestBefore = time.Now().AddDate(0, 0, -2)
	if err := db.Save(stale).Error; err != nil {
		t.Fatalf("age listing: %v", err)
	}

	expired, err := svc.ExpireListings(ctx, time.Now())
	if err != nil {
		t.Fatalf("expire listings: %v", err)
	}
	if len(expired) != 1 || expired[0].ID != stale.ID {
		t.Fatalf("expected exactly the stale listing to expire, got %d rows", len(expired))
	}

	got, err := svc.GetListing(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("get fresh listing: %v", err)
	}
	if got.Status != enums.ListingStatusAvailable {
		t.Fatalf("fresh listing should stay available, got %s", got.Status)
	}
}

func TestProductCRUDAndStatus(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{
		Title:             "Urea 25kg",
		Category:          "fertilizer",
		PriceCents:        120000,
		StockQuantity:     3,
		LowStockThreshold: 5,
		Unit:              "bag",
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if created.Status != enums.InventoryStatusLowStock {
		t.Fatalf("expected low_stock, got %s", created.Status)
	}

	zero := 0
	updated, err := svc.UpdateProduct(ctx, created.ID, UpdateProductInput{StockQuantity: &zero})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if updated.Status != enums.InventoryStatusOutOfStock {
		t.Fatalf("expected out_of_stock, got %s", updated.Status)
	}

	if err := svc.DeleteProduct(ctx, created.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	_, err = svc.GetProduct(ctx, created.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestRentalItemCRUD(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	created, err := svc.CreateRentalItem(ctx, CreateRentalItemInput{
		Title:       "Two-wheel tractor",
		Category:    "machinery",
		PerDayCents: 550000,
		TotalQty:    5,
	})
	if err != nil {
		t.Fatalf("create rental item: %v", err)
	}

	unavailable := enums.RentalItemStatusUnavailable
	updated, err := svc.UpdateRentalItem(ctx, created.ID, UpdateRentalItemInput{Status: &unavailable})
	if err != nil {
		t.Fatalf("update rental item: %v", err)
	}
	if updated.Status != enums.RentalItemStatusUnavailable {
		t.Fatalf("expected unavailable, got %s", updated.Status)
	}

	snap, err := svc.Resolve(ctx, enums.CatalogItemTypeRental, created.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if snap.Orderable {
		t.Fatal("unavailable rental item must not be orderable")
	}
	if snap.Available != 5 {
		t.Fatalf("expected fleet size 5, got %d", snap.Available)
	}
}

func TestBrowseListingsPaginates(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		seedListing(t, db, 10)
	}

	first, err := svc.BrowseListings(ctx, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if len(first.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(first.Items))
	}
	if first.NextCursor == "" {
		t.Fatal("expected a next cursor")
	}

	second, err := svc.BrowseListings(ctx, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	if err != nil {
		t.Fatalf("browse second page: %v", err)
	}
	if len(second.Items) != 1 {
		t.Fatalf("expected 1 item on second page, got %d", len(second.Items))
	}

	seen := map[uuid.UUID]bool{}
	for _, item := range append(first.Items, second.Items...) {
		if seen[item.ID] {
			t.Fatalf("listing %s returned twice", item.ID)
		}
		seen[item.ID] = true
	}
}

func TestResolveUnknownTypeAndMissingItem(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	_, err := svc.Resolve(ctx, enums.CatalogItemType("voucher"), uuid.New())
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = svc.Resolve(ctx, enums.CatalogItemTypeListing, uuid.New())
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

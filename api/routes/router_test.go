package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ruwinya10/agrilink-backend/internal/activity"
	"github.com/ruwinya10/agrilink-backend/internal/cart"
	"github.com/ruwinya10/agrilink-backend/internal/catalog"
	"github.com/ruwinya10/agrilink-backend/internal/deliveries"
	"github.com/ruwinya10/agrilink-backend/internal/orders"
	"github.com/ruwinya10/agrilink-backend/internal/rentals"
	pkgAuth "github.com/ruwinya10/agrilink-backend/pkg/auth"
	"github.com/ruwinya10/agrilink-backend/pkg/config"
	"github.com/ruwinya10/agrilink-backend/pkg/db/models"
	"github.com/ruwinya10/agrilink-backend/pkg/enums"
	"github.com/ruwinya10/agrilink-backend/pkg/logger"
	"github.com/ruwinya10/agrilink-backend/pkg/pagination"
	"github.com/ruwinya10/agrilink-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubUserMirror struct{}

func (stubUserMirror) Upsert(context.Context, *models.User) error {
	return nil
}

type stubCatalogService struct{}

func (stubCatalogService) CreateListing(ctx context.Context, farmerID uuid.UUID, input catalog.CreateListingInput) (*catalog.ListingDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) UpdateListing(ctx context.Context, farmerID, listingID uuid.UUID, input catalog.UpdateListingInput) (*catalog.ListingDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) RemoveListing(ctx context.Context, farmerID, listingID uuid.UUID) error {
	panic("unimplemented")
}

func (stubCatalogService) ListFarmerListings(ctx context.Context, farmerID uuid.UUID) ([]catalog.ListingDTO, error) {
	return []catalog.ListingDTO{}, nil
}

func (stubCatalogService) BrowseListings(ctx context.Context, params pagination.Params) (*catalog.ListingPage, error) {
	return &catalog.ListingPage{}, nil
}

func (stubCatalogService) GetListing(ctx context.Context, listingID uuid.UUID) (*catalog.ListingDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) CreateProduct(ctx context.Context, input catalog.CreateProductInput) (*catalog.ProductDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) UpdateProduct(ctx context.Context, productID uuid.UUID, input catalog.UpdateProductInput) (*catalog.ProductDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	panic("unimplemented")
}

func (stubCatalogService) BrowseProducts(ctx context.Context, params pagination.Params) (*catalog.ProductPage, error) {
	return &catalog.ProductPage{}, nil
}

func (stubCatalogService) GetProduct(ctx context.Context, productID uuid.UUID) (*catalog.ProductDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) CreateRentalItem(ctx context.Context, input catalog.CreateRentalItemInput) (*catalog.RentalItemDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) UpdateRentalItem(ctx context.Context, itemID uuid.UUID, input catalog.UpdateRentalItemInput) (*catalog.RentalItemDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) DeleteRentalItem(ctx context.Context, itemID uuid.UUID) error {
	panic("unimplemented")
}

func (stubCatalogService) BrowseRentalItems(ctx context.Context, params pagination.Params) (*catalog.RentalItemPage, error) {
	return &catalog.RentalItemPage{}, nil
}

func (stubCatalogService) GetRentalItem(ctx context.Context, itemID uuid.UUID) (*catalog.RentalItemDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) Resolve(ctx context.Context, itemType enums.CatalogItemType, itemID uuid.UUID) (*catalog.ItemSnapshot, error) {
	panic("unimplemented")
}

func (stubCatalogService) Adjust(ctx context.Context, tx *gorm.DB, lines []catalog.StockAdjustment, direction catalog.AdjustDirection) error {
	panic("unimplemented")
}

func (stubCatalogService) ExpireListings(ctx context.Context, now time.Time) ([]models.Listing, error) {
	panic("unimplemented")
}

type stubRentalsService struct{}

func (stubRentalsService) Availability(ctx context.Context, itemID uuid.UUID, start, end time.Time) (*rentals.AvailabilityDTO, error) {
	panic("unimplemented")
}

func (stubRentalsService) AvailableQuantity(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, start, end time.Time) (int, error) {
	panic("unimplemented")
}

func (stubRentalsService) BookForOrder(ctx context.Context, tx *gorm.DB, orderID, userID uuid.UUID, lines []rentals.BookingLine) error {
	panic("unimplemented")
}

func (stubRentalsService) CancelOrderBookings(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	panic("unimplemented")
}

type stubCartService struct{}

func (stubCartService) Get(ctx context.Context, userID uuid.UUID) (*cart.CartDTO, error) {
	return &cart.CartDTO{}, nil
}

func (stubCartService) AddItem(ctx context.Context, userID uuid.UUID, input cart.AddItemInput) (*cart.CartDTO, error) {
	panic("unimplemented")
}

func (stubCartService) UpdateItemQuantity(ctx context.Context, userID, lineID uuid.UUID, quantity int) (*cart.CartDTO, error) {
	panic("unimplemented")
}

func (stubCartService) RemoveItem(ctx context.Context, userID, lineID uuid.UUID) (*cart.CartDTO, error) {
	panic("unimplemented")
}

func (stubCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	panic("unimplemented")
}

type stubOrdersService struct{}

func (stubOrdersService) Create(ctx context.Context, input orders.CreateInput) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrdersService) MarkReady(ctx context.Context, orderID uuid.UUID) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrdersService) Cancel(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrdersService) List(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*orders.Page, error) {
	return &orders.Page{}, nil
}

func (stubOrdersService) Get(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

type stubDeliveriesService struct{}

func (stubDeliveriesService) CreateForOrder(ctx context.Context, tx *gorm.DB, input deliveries.CreateInput) (*models.Delivery, error) {
	panic("unimplemented")
}

func (stubDeliveriesService) CascadeCancel(ctx context.Context, tx *gorm.DB, deliveryID, actorID uuid.UUID, actorRole enums.UserRole) error {
	panic("unimplemented")
}

func (stubDeliveriesService) Assign(ctx context.Context, adminID, deliveryID, driverID uuid.UUID) (*deliveries.DeliveryDTO, error) {
	panic("unimplemented")
}

func (stubDeliveriesService) Offer(ctx context.Context, adminID, deliveryID, driverID uuid.UUID) (*deliveries.DeliveryDTO, error) {
	panic("unimplemented")
}

func (stubDeliveriesService) Accept(ctx context.Context, driverID, deliveryID uuid.UUID) (*deliveries.DeliveryDTO, error) {
	panic("unimplemented")
}

func (stubDeliveriesService) Decline(ctx context.Context, driverID, deliveryID uuid.UUID) (*deliveries.DeliveryDTO, error) {
	panic("unimplemented")
}

func (stubDeliveriesService) Advance(ctx context.Context, driverID, deliveryID uuid.UUID, target enums.DeliveryStatus) (*deliveries.DeliveryDTO, error) {
	panic("unimplemented")
}

func (stubDeliveriesService) Cancel(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, deliveryID uuid.UUID) (*deliveries.DeliveryDTO, error) {
	panic("unimplemented")
}

func (stubDeliveriesService) Delete(ctx context.Context, deliveryID uuid.UUID) error {
	panic("unimplemented")
}

func (stubDeliveriesService) Get(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, deliveryID uuid.UUID) (*deliveries.DeliveryDTO, error) {
	panic("unimplemented")
}

func (stubDeliveriesService) ListAll(ctx context.Context, status *enums.DeliveryStatus, params pagination.Params) (*deliveries.Page, error) {
	return &deliveries.Page{}, nil
}

func (stubDeliveriesService) ListForDriver(ctx context.Context, driverID uuid.UUID, params pagination.Params) (*deliveries.Page, error) {
	return &deliveries.Page{}, nil
}

func (stubDeliveriesService) ListForCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*deliveries.Page, error) {
	return &deliveries.Page{}, nil
}

type stubActivityService struct{}

func (stubActivityService) Record(ctx context.Context, input activity.RecordInput) error {
	return nil
}

func (stubActivityService) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*activity.FeedPage, error) {
	return &activity.FeedPage{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "issuer"},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubUserMirror{},
		Services{
			Catalog:    stubCatalogService{},
			Rentals:    stubRentalsService{},
			Cart:       stubCartService{},
			Orders:     stubOrdersService{},
			Deliveries: stubDeliveriesService{},
			Activity:   stubActivityService{},
		},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenClaims{
		UserID:   uuid.New(),
		Role:     role,
		Email:    "router@example.com",
		FullName: "Router Test",
	}, time.Hour)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness check got %d", resp.Code)
	}
}

func TestPublicBrowseNeedsNoToken(t *testing.T) {
	router := newTestRouter(testConfig())
	for _, path := range []string{
		"/api/public/v1/listings",
		"/api/public/v1/inventory",
		"/api/public/v1/rentals",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", path, resp.Code)
		}
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleBuyer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for private ping got %d", resp.Code)
	}
}

func TestFarmerGroupRequiresFarmerRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	buyer := httptest.NewRequest(http.MethodGet, "/api/v1/listings/mine", nil)
	buyer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleBuyer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, buyer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for buyer got %d", resp.Code)
	}

	farmer := httptest.NewRequest(http.MethodGet, "/api/v1/listings/mine", nil)
	farmer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleFarmer))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, farmer)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for farmer got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	farmer := httptest.NewRequest(http.MethodGet, "/api/v1/admin/deliveries", nil)
	farmer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleFarmer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, farmer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/admin/deliveries", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestDriverGroupRequiresDriverRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	buyer := httptest.NewRequest(http.MethodGet, "/api/v1/driver/deliveries", nil)
	buyer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleBuyer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, buyer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-driver got %d", resp.Code)
	}

	driver := httptest.NewRequest(http.MethodGet, "/api/v1/driver/deliveries", nil)
	driver.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleDriver))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, driver)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for driver got %d", resp.Code)
	}
}

func TestActivityFeedScopedToCaller(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activity", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleFarmer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for activity feed got %d", resp.Code)
	}
}

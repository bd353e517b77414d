package deliveries

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ruwinya10/agrilink-backend/internal/activity"
	"github.com/ruwinya10/agrilink-backend/internal/users"
	"github.com/ruwinya10/agrilink-backend/pkg/db/models"
	"github.com/ruwinya10/agrilink-backend/pkg/enums"
	pkgerrors "github.com/ruwinya10/agrilink-backend/pkg/errors"
	"github.com/ruwinya10/agrilink-backend/pkg/logger"
	"github.com/ruwinya10/agrilink-backend/pkg/pagination"
)

type gormTx struct {
	db *gorm.DB
}

func (g gormTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:deliveries_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
		&models.Delivery{},
		&models.DeliveryStatusEvent{},
		&models.ActivityEntry{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	activitySvc, err := activity.NewService(activity.NewRepository(db))
	if err != nil {
		t.Fatalf("activity service: %v", err)
	}
	logg := logger.New(logger.Options{ServiceName: "deliveries-test"})
	svc, err := NewService(NewRepository(db), gormTx{db: db}, users.NewRepository(db), activitySvc, logg)
	if err != nil {
		t.Fatalf("deliveries service: %v", err)
	}
	return svc
}

func seedUser(t *testing.T, db *gorm.DB, role enums.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		ID:       uuid.New(),
		Email:    uuid.NewString() + "@example.com",
		FullName: "Test User",
		Role:     role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedDelivery(t *testing.T, db *gorm.DB, svc Service, customerID uuid.UUID) *models.Delivery {
	t.Helper()
	var created *models.Delivery
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = svc.CreateForOrder(context.Background(), tx, CreateInput{
			OrderID:      uuid.New(),
			CustomerID:   customerID,
			Address:      "12 Canal Road, Jaffna",
			ContactName:  "A. Buyer",
			ContactPhone: "0770000000",
		})
		return err
	})
	if err != nil {
		t.Fatalf("seed delivery: %v", err)
	}
	return created
}

func TestCreateForOrderStartsPendingWithHistory(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	customer := seedUser(t, db, enums.UserRoleBuyer)

	created := seedDelivery(t, db, svc, customer.ID)
	if created.Status != enums.DeliveryStatusPending {
		t.Fatalf("expected pending, got %s", created.Status)
	}

	got, err := svc.Get(context.Background(), customer.ID, enums.UserRoleBuyer, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.StatusHistory) != 1 || got.StatusHistory[0].Status != enums.DeliveryStatusPending {
		t.Fatalf("expected single pending history row, got %+v", got.StatusHistory)
	}
}

func TestDirectAssignRequiresDriverRole(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	admin := seedUser(t, db, enums.UserRoleAdmin)
	driver := seedUser(t, db, enums.UserRoleDriver)
	farmer := seedUser(t, db, enums.UserRoleFarmer)
	customer := seedUser(t, db, enums.UserRoleBuyer)

	delivery := seedDelivery(t, db, svc, customer.ID)

	_, err := svc.Assign(ctx, admin.ID, delivery.ID, farmer.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected non-driver rejection, got %v", err)
	}

	got, err := svc.Assign(ctx, admin.ID, delivery.ID, driver.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if got.Status != enums.DeliveryStatusAssigned {
		t.Fatalf("expected assigned, got %s", got.Status)
	}
	if got.AssignmentStatus != enums.AssignmentStatusAccepted {
		t.Fatalf("direct assign should skip the offer round, got %s", got.AssignmentStatus)
	}
	if got.DriverID == nil || *got.DriverID != driver.ID {
		t.Fatal("driver not recorded")
	}
}

func TestOfferAcceptFlow(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	admin := seedUser(t, db, enums.UserRoleAdmin)
	driver := seedUser(t, db, enums.UserRoleDriver)
	other := seedUser(t, db, enums.UserRoleDriver)
	customer := seedUser(t, db, enums.UserRoleBuyer)

	delivery := seedDelivery(t, db, svc, customer.ID)

	offered, err := svc.Offer(ctx, admin.ID, delivery.ID, driver.ID)
	if err != nil {
		t.Fatalf("offer: %v", err)
	}
	if offered.Status != enums.DeliveryStatusAssignmentPending || offered.AssignmentStatus != enums.AssignmentStatusPending {
		t.Fatalf("expected pending offer, got %s/%s", offered.Status, offered.AssignmentStatus)
	}

	// Only the offered driver can accept.
	_, err = svc.Accept(ctx, other.ID, delivery.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for other driver, got %v", err)
	}

	accepted, err := svc.Accept(ctx, driver.ID, delivery.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != enums.DeliveryStatusAssigned || accepted.AssignmentStatus != enums.AssignmentStatusAccepted {
		t.Fatalf("expected assigned/accepted, got %s/%s", accepted.Status, accepted.AssignmentStatus)
	}
}

func TestOfferDeclineReturnsToPool(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	admin := seedUser(t, db, enums.UserRoleAdmin)
	driver := seedUser(t, db, enums.UserRoleDriver)
	customer := seedUser(t, db, enums.UserRoleBuyer)

	delivery := seedDelivery(t, db, svc, customer.ID)

	if _, err := svc.Offer(ctx, admin.ID, delivery.ID, driver.ID); err != nil {
		t.Fatalf("offer: %v", err)
	}
	declined, err := svc.Decline(ctx, driver.ID, delivery.ID)
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if declined.Status != enums.DeliveryStatusPending {
		t.Fatalf("expected back to pending, got %s", declined.Status)
	}
	if declined.DriverID != nil {
		t.Fatal("driver should be cleared on decline")
	}
	if declined.AssignmentStatus != enums.AssignmentStatusDeclined {
		t.Fatalf("expected declined, got %s", declined.AssignmentStatus)
	}

	// The delivery can be offered again after a decline.
	if _, err := svc.Offer(ctx, admin.ID, delivery.ID, driver.ID); err != nil {
		t.Fatalf("re-offer: %v", err)
	}
}

func TestAdvanceIsStrictlyOrderedAndDriverOnly(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	admin := seedUser(t, db, enums.UserRoleAdmin)
	driver := seedUser(t, db, enums.UserRoleDriver)
	other := seedUser(t, db, enums.UserRoleDriver)
	customer := seedUser(t, db, enums.UserRoleBuyer)

	delivery := seedDelivery(t, db, svc, customer.ID)
	if _, err := svc.Assign(ctx, admin.ID, delivery.ID, driver.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	// Skipping a step is rejected.
	_, err := svc.Advance(ctx, driver.ID, delivery.ID, enums.DeliveryStatusCollected)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected out-of-order rejection, got %v", err)
	}

	// Another driver cannot progress it.
	_, err = svc.Advance(ctx, other.ID, delivery.ID, enums.DeliveryStatusPreparing)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	steps := []enums.DeliveryStatus{
		enums.DeliveryStatusPreparing,
		enums.DeliveryStatusCollected,
		enums.DeliveryStatusInTransit,
		enums.DeliveryStatusCompleted,
	}
	var got *DeliveryDTO
	for _, step := range steps {
		got, err = svc.Advance(ctx, driver.ID, delivery.ID, step)
		if err != nil {
			t.Fatalf("advance to %s: %v", step, err)
		}
		if got.Status != step {
			t.Fatalf("expected %s, got %s", step, got.Status)
		}
	}
	if got.CompletedAt == nil {
		t.Fatal("completion timestamp not set")
	}

	// History captured every transition in order.
	if len(got.StatusHistory) != 6 {
		t.Fatalf("expected 6 history rows, got %d", len(got.StatusHistory))
	}
	last := got.StatusHistory[len(got.StatusHistory)-1]
	if last.Status != enums.DeliveryStatusCompleted || last.ActorRole != enums.UserRoleDriver {
		t.Fatalf("unexpected final history row %+v", last)
	}

	// Completion drops a feed entry for the customer.
	var entries []models.ActivityEntry
	if err := db.Where("user_id = ?", customer.ID).Find(&entries).Error; err != nil {
		t.Fatalf("load activity: %v", err)
	}
	if len(entries) != 1 || entries[0].Type != enums.ActivityTypeDeliveryCompleted {
		t.Fatalf("expected delivery_completed entry, got %+v", entries)
	}

	// Completed is terminal.
	_, err = svc.Advance(ctx, driver.ID, delivery.ID, enums.DeliveryStatusCompleted)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected terminal rejection, got %v", err)
	}
}

func TestCancelGuards(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	admin := seedUser(t, db, enums.UserRoleAdmin)
	driver := seedUser(t, db, enums.UserRoleDriver)
	customer := seedUser(t, db, enums.UserRoleBuyer)

	delivery := seedDelivery(t, db, svc, customer.ID)

	cancelled, err := svc.Cancel(ctx, admin.ID, enums.UserRoleAdmin, delivery.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != enums.DeliveryStatusCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("expected cancelled with timestamp, got %+v", cancelled)
	}

	// Cancelling again is an idempotent no-op.
	again, err := svc.Cancel(ctx, admin.ID, enums.UserRoleAdmin, delivery.ID)
	if err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if len(again.StatusHistory) != len(cancelled.StatusHistory) {
		t.Fatal("idempotent cancel must not append history")
	}

	// A completed delivery cannot be cancelled.
	done := seedDelivery(t, db, svc, customer.ID)
	if _, err := svc.Assign(ctx, admin.ID, done.ID, driver.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	for _, step := range []enums.DeliveryStatus{
		enums.DeliveryStatusPreparing, enums.DeliveryStatusCollected,
		enums.DeliveryStatusInTransit, enums.DeliveryStatusCompleted,
	} {
		if _, err := svc.Advance(ctx, driver.ID, done.ID, step); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
	_, err = svc.Cancel(ctx, admin.ID, enums.UserRoleAdmin, done.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected completed-cancel rejection, got %v", err)
	}
}

func TestCancelScopedToOwnerOrAdmin(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	customer := seedUser(t, db, enums.UserRoleBuyer)
	stranger := seedUser(t, db, enums.UserRoleBuyer)
	farmer := seedUser(t, db, enums.UserRoleFarmer)

	delivery := seedDelivery(t, db, svc, customer.ID)

	// Another buyer cannot cancel someone else's delivery.
	_, err := svc.Cancel(ctx, stranger.ID, enums.UserRoleBuyer, delivery.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}
	if _, err := svc.Cancel(ctx, farmer.ID, enums.UserRoleFarmer, delivery.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for non-owner farmer, got %v", err)
	}

	// The delivery is untouched by the rejected attempts.
	got, err := svc.Get(ctx, customer.ID, enums.UserRoleBuyer, delivery.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != enums.DeliveryStatusPending {
		t.Fatalf("expected pending after forbidden cancels, got %s", got.Status)
	}

	// The owning customer can cancel their own delivery.
	cancelled, err := svc.Cancel(ctx, customer.ID, enums.UserRoleBuyer, delivery.ID)
	if err != nil {
		t.Fatalf("owner cancel: %v", err)
	}
	if cancelled.Status != enums.DeliveryStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
}

func TestDeleteTerminalOnlyAndUnlinksOrder(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	admin := seedUser(t, db, enums.UserRoleAdmin)
	customer := seedUser(t, db, enums.UserRoleBuyer)

	delivery := seedDelivery(t, db, svc, customer.ID)

	// Link an order row to the delivery so the unlink is observable.
	order := &models.Order{
		ID:           delivery.OrderID,
		OrderNumber:  "ORD-000042",
		CustomerID:   customer.ID,
		Status:       enums.OrderStatusNotReady,
		DeliveryType: enums.DeliveryTypeDelivery,
		ContactName:  "A. Buyer",
		ContactPhone: "0770000000",
		ContactEmail: "buyer@example.com",
		DeliveryID:   &delivery.ID,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}

	err := svc.Delete(ctx, delivery.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected non-terminal delete rejection, got %v", err)
	}

	if _, err := svc.Cancel(ctx, admin.ID, enums.UserRoleAdmin, delivery.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := svc.Delete(ctx, delivery.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var gotOrder models.Order
	if err := db.First(&gotOrder, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if gotOrder.DeliveryID != nil {
		t.Fatal("order should be unlinked from the deleted delivery")
	}

	_, err = svc.Get(ctx, admin.ID, enums.UserRoleAdmin, delivery.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestListsScopeByRole(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	admin := seedUser(t, db, enums.UserRoleAdmin)
	driver := seedUser(t, db, enums.UserRoleDriver)
	customerA := seedUser(t, db, enums.UserRoleBuyer)
	customerB := seedUser(t, db, enums.UserRoleBuyer)

	d1 := seedDelivery(t, db, svc, customerA.ID)
	seedDelivery(t, db, svc, customerB.ID)

	if _, err := svc.Assign(ctx, admin.ID, d1.ID, driver.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	all, err := svc.ListAll(ctx, nil, pagination.Params{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all.Items) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(all.Items))
	}

	assigned := enums.DeliveryStatusAssigned
	filtered, err := svc.ListAll(ctx, &assigned, pagination.Params{})
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(filtered.Items) != 1 || filtered.Items[0].ID != d1.ID {
		t.Fatalf("expected only the assigned delivery, got %d", len(filtered.Items))
	}

	mine, err := svc.ListForDriver(ctx, driver.ID, pagination.Params{})
	if err != nil {
		t.Fatalf("list for driver: %v", err)
	}
	if len(mine.Items) != 1 || mine.Items[0].ID != d1.ID {
		t.Fatalf("expected the driver's delivery, got %d", len(mine.Items))
	}

	own, err := svc.ListForCustomer(ctx, customerB.ID, pagination.Params{})
	if err != nil {
		t.Fatalf("list for customer: %v", err)
	}
	if len(own.Items) != 1 || own.Items[0].CustomerID != customerB.ID {
		t.Fatalf("expected customer B's delivery, got %d", len(own.Items))
	}
}

func TestGetAccessControl(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	customer := seedUser(t, db, enums.UserRoleBuyer)
	stranger := seedUser(t, db, enums.UserRoleBuyer)

	delivery := seedDelivery(t, db, svc, customer.ID)

	if _, err := svc.Get(ctx, customer.ID, enums.UserRoleBuyer, delivery.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	_, err := svc.Get(ctx, stranger.ID, enums.UserRoleBuyer, delivery.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}
}

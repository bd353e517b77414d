package deliveries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ruwinya10/agrilink-backend/internal/activity"
	"github.com/ruwinya10/agrilink-backend/pkg/db/models"
	"github.com/ruwinya10/agrilink-backend/pkg/enums"
	pkgerrors "github.com/ruwinya10/agrilink-backend/pkg/errors"
	"github.com/ruwinya10/agrilink-backend/pkg/logger"
	"github.com/ruwinya10/agrilink-backend/pkg/pagination"
)

// Service drives the delivery lifecycle: creation as an order side effect,
// driver assignment (direct or offered), strictly ordered progression, and
// terminal-state bookkeeping. Every transition appends to the status history.
type Service interface {
	CreateForOrder(ctx context.Context, tx *gorm.DB, input CreateInput) (*models.Delivery, error)
	CascadeCancel(ctx context.Context, tx *gorm.DB, deliveryID, actorID uuid.UUID, actorRole enums.UserRole) error

	Assign(ctx context.Context, adminID, deliveryID, driverID uuid.UUID) (*DeliveryDTO, error)
	Offer(ctx context.Context, adminID, deliveryID, driverID uuid.UUID) (*DeliveryDTO, error)
	Accept(ctx context.Context, driverID, deliveryID uuid.UUID) (*DeliveryDTO, error)
	Decline(ctx context.Context, driverID, deliveryID uuid.UUID) (*DeliveryDTO, error)
	Advance(ctx context.Context, driverID, deliveryID uuid.UUID, target enums.DeliveryStatus) (*DeliveryDTO, error)
	Cancel(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, deliveryID uuid.UUID) (*DeliveryDTO, error)
	Delete(ctx context.Context, deliveryID uuid.UUID) error

	Get(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, deliveryID uuid.UUID) (*DeliveryDTO, error)
	ListAll(ctx context.Context, status *enums.DeliveryStatus, params pagination.Params) (*Page, error)
	ListForDriver(ctx context.Context, driverID uuid.UUID, params pagination.Params) (*Page, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*Page, error)
}

// CreateInput captures the order-side data a new delivery needs.
type CreateInput struct {
	OrderID      uuid.UUID
	CustomerID   uuid.UUID
	Address      string
	ContactName  string
	ContactPhone string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type activityRecorder interface {
	Record(ctx context.Context, input activity.RecordInput) error
}

type service struct {
	repo     Repository
	tx       txRunner
	users    userLoader
	activity activityRecorder
	logg     *logger.Logger
}

// NewService constructs a deliveries service instance.
func NewService(repo Repository, tx txRunner, users userLoader, activitySvc activityRecorder, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("deliveries repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	if activitySvc == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, users: users, activity: activitySvc, logg: logg}, nil
}

// CreateForOrder inserts a pending delivery on the order's transaction and
// records the initial history row.
func (s *service) CreateForOrder(ctx context.Context, tx *gorm.DB, input CreateInput) (*models.Delivery, error) {
	if input.Address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address is required")
	}

	repo := s.repo.WithTx(tx)
	delivery := &models.Delivery{
		OrderID:          input.OrderID,
		CustomerID:       input.CustomerID,
		Status:           enums.DeliveryStatusPending,
		AssignmentStatus: enums.AssignmentStatusPending,
		Address:          input.Address,
		ContactName:      input.ContactName,
		ContactPhone:     input.ContactPhone,
	}
	created, err := repo.Create(ctx, delivery)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert delivery")
	}

	event := &models.DeliveryStatusEvent{
		DeliveryID: created.ID,
		Status:     enums.DeliveryStatusPending,
		ActorID:    input.CustomerID,
		ActorRole:  enums.UserRoleBuyer,
	}
	if err := repo.AppendEvent(ctx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: append delivery event")
	}
	return created, nil
}

// CascadeCancel cancels a delivery on the caller's transaction when its
// order is cancelled. Terminal deliveries are left alone: completed cannot
// regress and cancelled is already where we want it.
func (s *service) CascadeCancel(ctx context.Context, tx *gorm.DB, deliveryID, actorID uuid.UUID, actorRole enums.UserRole) error {
	repo := s.repo.WithTx(tx)
	delivery, err := repo.FindByID(ctx, deliveryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load delivery")
	}
	if delivery.Status.IsTerminal() {
		return nil
	}
	return s.transition(ctx, repo, delivery, enums.DeliveryStatusCancelled, actorID, actorRole, nil)
}

// Assign puts a driver on the delivery directly, skipping the offer round.
func (s *service) Assign(ctx context.Context, adminID, deliveryID, driverID uuid.UUID) (*DeliveryDTO, error) {
	if err := s.ensureDriver(ctx, driverID); err != nil {
		return nil, err
	}
	return s.mutate(ctx, deliveryID, func(repo Repository, delivery *models.Delivery) error {
		if delivery.Status != enums.DeliveryStatusPending && delivery.Status != enums.DeliveryStatusAssignmentPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot assign a driver while delivery is %s", delivery.Status))
		}
		delivery.DriverID = &driverID
		delivery.AssignmentStatus = enums.AssignmentStatusAccepted
		return s.transition(ctx, repo, delivery, enums.DeliveryStatusAssigned, adminID, enums.UserRoleAdmin, nil)
	})
}

// Offer proposes the delivery to a driver, who must accept before work starts.
func (s *service) Offer(ctx context.Context, adminID, deliveryID, driverID uuid.UUID) (*DeliveryDTO, error) {
	if err := s.ensureDriver(ctx, driverID); err != nil {
		return nil, err
	}
	return s.mutate(ctx, deliveryID, func(repo Repository, delivery *models.Delivery) error {
		if delivery.Status != enums.DeliveryStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot offer a delivery that is %s", delivery.Status))
		}
		delivery.DriverID = &driverID
		delivery.AssignmentStatus = enums.AssignmentStatusPending
		return s.transition(ctx, repo, delivery, enums.DeliveryStatusAssignmentPending, adminID, enums.UserRoleAdmin, nil)
	})
}

// Accept confirms an offered delivery for the driver it was offered to.
func (s *service) Accept(ctx context.Context, driverID, deliveryID uuid.UUID) (*DeliveryDTO, error) {
	return s.mutate(ctx, deliveryID, func(repo Repository, delivery *models.Delivery) error {
		if delivery.Status != enums.DeliveryStatusAssignmentPending || delivery.AssignmentStatus != enums.AssignmentStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "delivery has no pending offer")
		}
		if delivery.DriverID == nil || *delivery.DriverID != driverID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "delivery is offered to another driver")
		}
		delivery.AssignmentStatus = enums.AssignmentStatusAccepted
		return s.transition(ctx, repo, delivery, enums.DeliveryStatusAssigned, driverID, enums.UserRoleDriver, nil)
	})
}

// Decline returns an offered delivery to the pool.
func (s *service) Decline(ctx context.Context, driverID, deliveryID uuid.UUID) (*DeliveryDTO, error) {
	return s.mutate(ctx, deliveryID, func(repo Repository, delivery *models.Delivery) error {
		if delivery.Status != enums.DeliveryStatusAssignmentPending || delivery.AssignmentStatus != enums.AssignmentStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "delivery has no pending offer")
		}
		if delivery.DriverID == nil || *delivery.DriverID != driverID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "delivery is offered to another driver")
		}
		delivery.DriverID = nil
		delivery.AssignmentStatus = enums.AssignmentStatusDeclined
		return s.transition(ctx, repo, delivery, enums.DeliveryStatusPending, driverID, enums.UserRoleDriver, nil)
	})
}

// Advance moves the delivery one step along the fixed progression. Only the
// assigned driver may advance, and only to the immediately next status.
func (s *service) Advance(ctx context.Context, driverID, deliveryID uuid.UUID, target enums.DeliveryStatus) (*DeliveryDTO, error) {
	dto, err := s.mutate(ctx, deliveryID, func(repo Repository, delivery *models.Delivery) error {
		if delivery.DriverID == nil || *delivery.DriverID != driverID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "delivery is assigned to another driver")
		}
		next, ok := delivery.Status.NextInProgression()
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("delivery cannot progress from %s", delivery.Status))
		}
		if target != next {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("next status from %s is %s, not %s", delivery.Status, next, target))
		}
		if next == enums.DeliveryStatusCompleted {
			now := time.Now()
			delivery.CompletedAt = &now
		}
		return s.transition(ctx, repo, delivery, next, driverID, enums.UserRoleDriver, nil)
	})
	if err != nil {
		return nil, err
	}

	if dto.Status == enums.DeliveryStatusCompleted {
		// Feed entry is best effort; the completed delivery stands either way.
		if err := s.activity.Record(ctx, activity.RecordInput{
			UserID:  dto.CustomerID,
			Type:    enums.ActivityTypeDeliveryCompleted,
			Message: "Your delivery has been completed",
		}); err != nil {
			s.logg.Error(ctx, "record delivery completion activity", err)
		}
	}
	return dto, nil
}

// Cancel aborts a non-terminal delivery. Admins can cancel any delivery,
// customers only their own. Cancelling twice is a no-op; cancelling a
// completed delivery is a conflict.
func (s *service) Cancel(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, deliveryID uuid.UUID) (*DeliveryDTO, error) {
	return s.mutate(ctx, deliveryID, func(repo Repository, delivery *models.Delivery) error {
		if actorRole != enums.UserRoleAdmin && delivery.CustomerID != actorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "delivery belongs to another customer")
		}
		if delivery.Status == enums.DeliveryStatusCancelled {
			return nil
		}
		if delivery.Status == enums.DeliveryStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "completed deliveries cannot be cancelled")
		}
		return s.transition(ctx, repo, delivery, enums.DeliveryStatusCancelled, actorID, actorRole, nil)
	})
}

// Delete removes a terminal delivery and unlinks it from its order.
func (s *service) Delete(ctx context.Context, deliveryID uuid.UUID) error {
	delivery, err := s.load(ctx, s.repo, deliveryID)
	if err != nil {
		return err
	}
	if !delivery.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only completed or cancelled deliveries can be deleted")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UnlinkOrderDelivery(ctx, delivery.OrderID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: unlink order delivery")
		}
		if err := repo.Delete(ctx, delivery.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete delivery")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete delivery")
	}
	return nil
}

func (s *service) Get(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, deliveryID uuid.UUID) (*DeliveryDTO, error) {
	delivery, err := s.load(ctx, s.repo, deliveryID)
	if err != nil {
		return nil, err
	}
	switch actorRole {
	case enums.UserRoleAdmin:
	case enums.UserRoleDriver:
		if delivery.DriverID == nil || *delivery.DriverID != actorID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "delivery is assigned to another driver")
		}
	default:
		if delivery.CustomerID != actorID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "delivery belongs to another customer")
		}
	}
	return newDeliveryDTO(delivery), nil
}

func (s *service) ListAll(ctx context.Context, status *enums.DeliveryStatus, params pagination.Params) (*Page, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid delivery status %q", *status))
	}
	return s.list(params, func(cursor *pagination.Cursor, limit int) ([]models.Delivery, error) {
		return s.repo.FindAll(ctx, status, cursor, limit)
	})
}

func (s *service) ListForDriver(ctx context.Context, driverID uuid.UUID, params pagination.Params) (*Page, error) {
	return s.list(params, func(cursor *pagination.Cursor, limit int) ([]models.Delivery, error) {
		return s.repo.FindByDriver(ctx, driverID, cursor, limit)
	})
}

func (s *service) ListForCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*Page, error) {
	return s.list(params, func(cursor *pagination.Cursor, limit int) ([]models.Delivery, error) {
		return s.repo.FindByCustomer(ctx, customerID, cursor, limit)
	})
}

func (s *service) list(params pagination.Params, fetch func(cursor *pagination.Cursor, limit int) ([]models.Delivery, error)) (*Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	deliveries, err := fetch(cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list deliveries")
	}

	page := &Page{Items: make([]DeliveryDTO, 0, len(deliveries))}
	if len(deliveries) > limit {
		deliveries = deliveries[:limit]
		last := deliveries[len(deliveries)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	for i := range deliveries {
		page.Items = append(page.Items, *newDeliveryDTO(&deliveries[i]))
	}
	return page, nil
}

// mutate loads the delivery, applies fn inside one transaction, and returns
// the fresh state with history.
func (s *service) mutate(ctx context.Context, deliveryID uuid.UUID, fn func(repo Repository, delivery *models.Delivery) error) (*DeliveryDTO, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		delivery, err := s.load(ctx, repo, deliveryID)
		if err != nil {
			return err
		}
		return fn(repo, delivery)
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery")
	}

	delivery, err := s.load(ctx, s.repo, deliveryID)
	if err != nil {
		return nil, err
	}
	return newDeliveryDTO(delivery), nil
}

// transition saves the status flip and appends the matching history row.
func (s *service) transition(ctx context.Context, repo Repository, delivery *models.Delivery, next enums.DeliveryStatus, actorID uuid.UUID, actorRole enums.UserRole, note *string) error {
	delivery.Status = next
	if next == enums.DeliveryStatusCancelled {
		now := time.Now()
		delivery.CancelledAt = &now
	}
	if err := repo.Save(ctx, delivery); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save delivery")
	}
	event := &models.DeliveryStatusEvent{
		DeliveryID: delivery.ID,
		Status:     next,
		ActorID:    actorID,
		ActorRole:  actorRole,
		Note:       note,
	}
	if err := repo.AppendEvent(ctx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: append delivery event")
	}
	return nil
}

func (s *service) ensureDriver(ctx context.Context, driverID uuid.UUID) error {
	user, err := s.users.FindByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "driver not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load driver")
	}
	if user.Role != enums.UserRoleDriver {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("user %s is not a driver", driverID))
	}
	return nil
}

func (s *service) load(ctx context.Context, repo Repository, deliveryID uuid.UUID) (*models.Delivery, error) {
	delivery, err := repo.FindByID(ctx, deliveryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load delivery")
	}
	return delivery, nil
}

package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ruwinya10/agrilink-backend/internal/catalog"
	"github.com/ruwinya10/agrilink-backend/internal/rentals"
	"github.com/ruwinya10/agrilink-backend/pkg/db/models"
	"github.com/ruwinya10/agrilink-backend/pkg/enums"
	pkgerrors "github.com/ruwinya10/agrilink-backend/pkg/errors"
	"github.com/ruwinya10/agrilink-backend/pkg/pricing"
)

// Service manages the per-user cart. Reads re-resolve every line against the
// catalog: vanished items are dropped, stale snapshots refreshed, and
// quantities clamped down to what is currently available.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error)
	UpdateItemQuantity(ctx context.Context, userID, lineID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, lineID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// AddItemInput is the payload for adding one line to the cart.
type AddItemInput struct {
	ItemID          uuid.UUID
	ItemType        enums.CatalogItemType
	Quantity        int
	RentalStartDate *time.Time
	RentalEndDate   *time.Time
}

type catalogResolver interface {
	Resolve(ctx context.Context, itemType enums.CatalogItemType, itemID uuid.UUID) (*catalog.ItemSnapshot, error)
}

type availabilityReader interface {
	Availability(ctx context.Context, itemID uuid.UUID, start, end time.Time) (*rentals.AvailabilityDTO, error)
}

type service struct {
	repo       Repository
	catalog    catalogResolver
	rentals    availabilityReader
	commission decimal.Decimal
}

// NewService constructs a cart service instance.
func NewService(repo Repository, catalogSvc catalogResolver, rentalsSvc availabilityReader, commission decimal.Decimal) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog resolver required")
	}
	if rentalsSvc == nil {
		return nil, fmt.Errorf("rentals availability reader required")
	}
	return &service{
		repo:       repo,
		catalog:    catalogSvc,
		rentals:    rentalsSvc,
		commission: commission,
	}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	cart, err := s.loadReconciled(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.newCartDTO(cart), nil
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if !input.ItemType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown item type %q", input.ItemType))
	}

	var rentalStart, rentalEnd time.Time
	if input.ItemType == enums.CatalogItemTypeRental {
		if input.RentalStartDate == nil || input.RentalEndDate == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental lines require start and end dates")
		}
		rentalStart = truncateToDay(*input.RentalStartDate)
		rentalEnd = truncateToDay(*input.RentalEndDate)
		if rentalEnd.Before(rentalStart) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental end date cannot precede start date")
		}
		if rentalStart.Before(truncateToDay(time.Now())) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental start date cannot be in the past")
		}
	}

	snap, err := s.catalog.Resolve(ctx, input.ItemType, input.ItemID)
	if err != nil {
		return nil, err
	}
	if !snap.Orderable {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%q is not available right now", snap.Title))
	}

	available := snap.Available
	if input.ItemType == enums.CatalogItemTypeRental {
		window, err := s.rentals.Availability(ctx, input.ItemID, rentalStart, rentalEnd)
		if err != nil {
			return nil, err
		}
		available = window.Available
	}

	cart, err := s.loadReconciled(ctx, userID)
	if err != nil {
		return nil, err
	}

	if existing := findLine(cart, input.ItemID, input.ItemType, rentalStart, rentalEnd); existing != nil {
		headroom := available - existing.Quantity
		if input.Quantity > headroom {
			if headroom < 0 {
				headroom = 0
			}
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("only %d more of %q available", headroom, snap.Title))
		}
		existing.Quantity += input.Quantity
		s.applySnapshot(existing, snap)
		if err := s.repo.SaveItem(ctx, existing); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save cart line")
		}
		return s.Get(ctx, userID)
	}

	if input.Quantity > available {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("only %d of %q available", available, snap.Title))
	}

	line := &models.CartItem{
		CartID:   cart.ID,
		ItemID:   input.ItemID,
		ItemType: input.ItemType,
		Quantity: input.Quantity,
	}
	if input.ItemType == enums.CatalogItemTypeRental {
		line.RentalStartDate = &rentalStart
		line.RentalEndDate = &rentalEnd
	}
	s.applySnapshot(line, snap)
	if _, err := s.repo.CreateItem(ctx, line); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert cart line")
	}
	return s.Get(ctx, userID)
}

func (s *service) UpdateItemQuantity(ctx context.Context, userID, lineID uuid.UUID, quantity int) (*CartDTO, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	cart, err := s.loadReconciled(ctx, userID)
	if err != nil {
		return nil, err
	}
	line := findLineByID(cart, lineID)
	if line == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}

	if quantity > line.MaxQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("only %d of %q available", line.MaxQuantity, line.Title))
	}
	line.Quantity = quantity
	if err := s.repo.SaveItem(ctx, line); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save cart line")
	}
	return s.Get(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID, lineID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}
	line := findLineByID(cart, lineID)
	if line == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	if err := s.repo.DeleteItem(ctx, line.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete cart line")
	}
	return s.Get(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.repo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}
	if err := s.repo.DeleteAllItems(ctx, cart.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear cart")
	}
	return nil
}

// loadReconciled loads the cart and reconciles every line against current
// catalog state. Reconciliation is idempotent: reading twice without writes
// yields the same lines and quantities.
func (s *service) loadReconciled(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}

	kept := cart.Items[:0]
	for i := range cart.Items {
		line := &cart.Items[i]

		snap, err := s.catalog.Resolve(ctx, line.ItemType, line.ItemID)
		if err != nil {
			if appErr := pkgerrors.As(err); appErr != nil && appErr.Code() == pkgerrors.CodeNotFound {
				if derr := s.repo.DeleteItem(ctx, line.ID); derr != nil {
					return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, derr, "db: drop stale cart line")
				}
				continue
			}
			return nil, err
		}
		if !snap.Orderable {
			if derr := s.repo.DeleteItem(ctx, line.ID); derr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, derr, "db: drop dead cart line")
			}
			continue
		}

		available := snap.Available
		if line.ItemType == enums.CatalogItemTypeRental && line.RentalStartDate != nil && line.RentalEndDate != nil {
			window, err := s.rentals.Availability(ctx, line.ItemID, *line.RentalStartDate, *line.RentalEndDate)
			if err != nil {
				return nil, err
			}
			available = window.Available
		}
		if available <= 0 {
			if derr := s.repo.DeleteItem(ctx, line.ID); derr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, derr, "db: drop depleted cart line")
			}
			continue
		}

		changed := line.Title != snap.Title ||
			line.Category != snap.Category ||
			line.Unit != snap.Unit ||
			line.MaxQuantity != available ||
			line.UnitPriceCents != s.buyerPriceCents(snap) ||
			line.Quantity > available
		s.applySnapshotWithAvailable(line, snap, available)
		if line.Quantity > line.MaxQuantity {
			line.Quantity = line.MaxQuantity
		}
		if changed {
			if err := s.repo.SaveItem(ctx, line); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: persist reconciled cart line")
			}
		}
		kept = append(kept, *line)
	}
	cart.Items = kept
	return cart, nil
}

func (s *service) applySnapshot(line *models.CartItem, snap *catalog.ItemSnapshot) {
	s.applySnapshotWithAvailable(line, snap, snap.Available)
}

func (s *service) applySnapshotWithAvailable(line *models.CartItem, snap *catalog.ItemSnapshot, available int) {
	line.Title = snap.Title
	line.Category = snap.Category
	line.Unit = snap.Unit
	line.ImageURL = snap.ImageURL
	line.MaxQuantity = available
	line.UnitPriceCents = s.buyerPriceCents(snap)
}

// buyerPriceCents is the price the buyer will actually pay per unit: listings
// carry the marketplace commission, everything else is the stored price.
func (s *service) buyerPriceCents(snap *catalog.ItemSnapshot) int {
	if snap.Type == enums.CatalogItemTypeListing {
		return pricing.ListingUnitPriceCents(snap.UnitPriceCents, s.commission)
	}
	return snap.UnitPriceCents
}

func findLine(cart *models.Cart, itemID uuid.UUID, itemType enums.CatalogItemType, start, end time.Time) *models.CartItem {
	for i := range cart.Items {
		line := &cart.Items[i]
		if line.ItemID != itemID || line.ItemType != itemType {
			continue
		}
		if itemType == enums.CatalogItemTypeRental {
			if line.RentalStartDate == nil || line.RentalEndDate == nil {
				continue
			}
			if !truncateToDay(*line.RentalStartDate).Equal(start) || !truncateToDay(*line.RentalEndDate).Equal(end) {
				continue
			}
		}
		return line
	}
	return nil
}

func findLineByID(cart *models.Cart, lineID uuid.UUID) *models.CartItem {
	for i := range cart.Items {
		if cart.Items[i].ID == lineID {
			return &cart.Items[i]
		}
	}
	return nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

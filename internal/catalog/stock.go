package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ruwinya10/agrilink-backend/pkg/enums"
	pkgerrors "github.com/ruwinya10/agrilink-backend/pkg/errors"
)

// AdjustDirection selects whether a reconciliation debits or credits stock.
type AdjustDirection int

const (
	// AdjustDebit subtracts quantities, used when an order is placed.
	AdjustDebit AdjustDirection = iota
	// AdjustCredit adds quantities back, used when an order is cancelled.
	AdjustCredit
)

// StockAdjustment is one line of a reconciliation pass. Rental lines carry
// no stock and are ignored here; their availability lives in the booking log.
type StockAdjustment struct {
	ItemID   uuid.UUID
	ItemType enums.CatalogItemType
	Quantity int
}

// Adjust applies the adjustments against listings and inventory products:
// fetch, add or subtract, clamp at zero, recompute the derived status,
// persist. It runs on the caller's transaction so stock moves atomically
// with the order write.
func (s *service) Adjust(ctx context.Context, tx *gorm.DB, lines []StockAdjustment, direction AdjustDirection) error {
	repo := s.repo.WithTx(tx)
	now := time.Now()

	for _, line := range lines {
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("adjustment quantity must be positive for item %s", line.ItemID))
		}
		delta := line.Quantity
		if direction == AdjustDebit {
			delta = -delta
		}

		switch line.ItemType {
		case enums.CatalogItemTypeListing:
			listing, err := repo.FindListingByID(ctx, line.ItemID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load listing for stock adjust")
			}
			listing.CapacityKg = clampAtZero(listing.CapacityKg + delta)
			listing.Status = DeriveListingStatus(listing.Status, listing.CapacityKg, listing.BestBefore, now)
			if err := repo.SaveListing(ctx, listing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save listing stock")
			}

		case enums.CatalogItemTypeInventory:
			product, err := repo.FindProductByID(ctx, line.ItemID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product for stock adjust")
			}
			product.StockQuantity = clampAtZero(product.StockQuantity + delta)
			product.Status = DeriveInventoryStatus(product.StockQuantity, product.LowStockThreshold)
			if err := repo.SaveProduct(ctx, product); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save product stock")
			}

		case enums.CatalogItemTypeRental:
			// bookings carry rental availability

		default:
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown item type %q", line.ItemType))
		}
	}
	return nil
}

func clampAtZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

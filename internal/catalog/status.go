package catalog

import (
	"time"

	"github.com/ruwinya10/agrilink-backend/pkg/enums"
)

// DeriveInventoryStatus maps a stock level onto the inventory status enum.
// Shared by every path that mutates stock so the thresholds cannot drift.
func DeriveInventoryStatus(quantity, lowStockThreshold int) enums.InventoryStatus {
	switch {
	case quantity <= 0:
		return enums.InventoryStatusOutOfStock
	case quantity <= lowStockThreshold:
		return enums.InventoryStatusLowStock
	default:
		return enums.InventoryStatusAvailable
	}
}

// DeriveListingStatus recomputes a listing's status from its capacity and
// best-before date. Removed is sticky; the best-before day itself still
// counts as fresh.
func DeriveListingStatus(current enums.ListingStatus, capacityKg int, bestBefore, now time.Time) enums.ListingStatus {
	if current == enums.ListingStatusRemoved {
		return current
	}
	if listingExpired(bestBefore, now) {
		return enums.ListingStatusExpired
	}
	if capacityKg <= 0 {
		return enums.ListingStatusSold
	}
	return enums.ListingStatusAvailable
}

func listingExpired(bestBefore, now time.Time) bool {
	return truncateToDay(now).After(truncateToDay(bestBefore))
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

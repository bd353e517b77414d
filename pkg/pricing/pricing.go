package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// ListingUnitPriceCents computes the buyer-facing per-kg price for a listing:
// the farmer's base price marked up by the configured commission rate, rounded
// half-up to whole cents.
func ListingUnitPriceCents(basePriceCents int, commissionRate decimal.Decimal) int {
	base := decimal.NewFromInt(int64(basePriceCents))
	final := base.Mul(decimal.NewFromInt(1).Add(commissionRate))
	return int(final.Round(0).IntPart())
}

// RentalDays returns the inclusive day count of a rental window. Dates are
// compared at day granularity, so a same-day rental counts as one day.
func RentalDays(start, end time.Time) int {
	s := truncateToDay(start)
	e := truncateToDay(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

// RentalLineTotalCents prices a rental line: per-day rate times the inclusive
// day count times the reserved quantity.
func RentalLineTotalCents(perDayCents int, start, end time.Time, quantity int) int {
	return perDayCents * RentalDays(start, end) * quantity
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

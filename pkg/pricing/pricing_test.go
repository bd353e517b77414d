package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestListingUnitPriceCents(t *testing.T) {
	tests := []struct {
		name  string
		base  int
		rate  string
		want  int
	}{
		{name: "ten percent markup", base: 10000, rate: "0.1", want: 11000},
		{name: "zero rate passes base through", base: 12345, rate: "0", want: 12345},
		{name: "half cent rounds up", base: 105, rate: "0.1", want: 116}, // 115.5
		{name: "below half cent rounds down", base: 104, rate: "0.1", want: 114}, // 114.4
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, err := decimal.NewFromString(tt.rate)
			if err != nil {
				t.Fatalf("parse rate: %v", err)
			}
			if got := ListingUnitPriceCents(tt.base, rate); got != tt.want {
				t.Fatalf("expected %d got %d", tt.want, got)
			}
		})
	}
}

func TestRentalDays(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, time.September, d, 10, 30, 0, 0, time.UTC)
	}

	if got := RentalDays(day(1), day(1)); got != 1 {
		t.Fatalf("same-day rental should count 1 day, got %d", got)
	}
	if got := RentalDays(day(1), day(3)); got != 3 {
		t.Fatalf("three-day window should count 3 days, got %d", got)
	}
	if got := RentalDays(day(3), day(1)); got != 0 {
		t.Fatalf("inverted window should count 0 days, got %d", got)
	}
}

func TestRentalLineTotalCents(t *testing.T) {
	start := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.September, 2, 0, 0, 0, 0, time.UTC)
	if got := RentalLineTotalCents(5000, start, end, 3); got != 30000 {
		t.Fatalf("expected 30000 got %d", got)
	}
}

package dealership

import (
	"context"
	"testing"
	"time"

	"ev-dealer-hub/internal/models"

	"github.com/shopspring/decimal"
)

func promo(name, kind string, value int64) models.Promotion {
	return models.Promotion{
		ProgramName:   name,
		DiscountType:  kind,
		DiscountValue: money(value),
		StartDate:     testNow.AddDate(0, -1, 0),
		EndDate:       testNow.AddDate(0, 1, 0),
		Status:        models.StatusActive,
	}
}

func TestApplies(t *testing.T) {
	base := promo("Summer", models.DiscountPercentage, 10)

	limited := base
	limited.DealerID = dealerID(2)
	limited.VehicleIDs = []uint{2}

	inactive := base
	inactive.Status = models.StatusInactive

	tests := []struct {
		name      string
		promo     models.Promotion
		dealer    uint
		vehicle   uint
		at        time.Time
		wantApply bool
	}{
		{"open to all", base, 1, 1, testNow, true},
		{"before start", base, 1, 1, testNow.AddDate(0, -2, 0), false},
		{"after end", base, 1, 1, testNow.AddDate(0, 2, 0), false},
		{"inactive", inactive, 1, 1, testNow, false},
		{"other dealer", limited, 1, 2, testNow, false},
		{"other vehicle", limited, 2, 1, testNow, false},
		{"matching dealer and vehicle", limited, 2, 2, testNow, true},
	}
	for _, tt := range tests {
		if got := Applies(tt.promo, tt.dealer, tt.vehicle, tt.at); got != tt.wantApply {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.wantApply)
		}
	}
}

func TestDiscountedPrice(t *testing.T) {
	price := money(1_000_000)
	tests := []struct {
		name  string
		promo models.Promotion
		want  decimal.Decimal
	}{
		{"ten percent", promo("a", models.DiscountPercentage, 10), money(900_000)},
		{"capped at one hundred percent", promo("b", models.DiscountPercentage, 150), decimal.Zero},
		{"fixed", promo("c", models.DiscountFixed, 50_000), money(950_000)},
		{"fixed never below zero", promo("d", models.DiscountFixed, 2_000_000), decimal.Zero},
		{"unknown type", promo("e", "bundle", 10), price},
	}
	for _, tt := range tests {
		if got := DiscountedPrice(price, tt.promo); !got.Equal(tt.want) {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestBestPromotion(t *testing.T) {
	promos := []models.Promotion{
		promo("five percent", models.DiscountPercentage, 5),
		promo("fixed 100k", models.DiscountFixed, 100_000),
		promo("also 100k", models.DiscountFixed, 100_000),
	}
	best, price, ok := BestPromotion(promos, 1, 1, money(1_000_000), testNow)
	if !ok || best.ProgramName != "fixed 100k" || !price.Equal(money(900_000)) {
		t.Errorf("expected the first 100k discount, got %s at %s", best.ProgramName, price)
	}

	if _, _, ok := BestPromotion(nil, 1, 1, money(1), testNow); ok {
		t.Errorf("expected no promotion from an empty list")
	}
}

func TestQuotePrice(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()
	if _, err := r.Pricing.Create(ctx, models.Pricing{
		VehicleID: 1, DealerID: 1, WholesalePrice: money(800_000), RetailPrice: money(950_000),
		ValidFrom: testNow.AddDate(0, -1, 0), ValidTo: testNow.AddDate(0, 1, 0), Status: models.StatusActive,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Promotions.Create(ctx, promo("ten percent", models.DiscountPercentage, 10)); err != nil {
		t.Fatal(err)
	}

	q, err := r.QuotePrice(1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !q.ListPrice.Equal(money(950_000)) || !q.UnitPrice.Equal(money(855_000)) || q.Promotion == nil {
		t.Errorf("expected 950000 discounted to 855000, got %+v", q)
	}

	q, _ = r.QuotePrice(2, 1)
	if !q.ListPrice.Equal(money(1_000_000)) {
		t.Errorf("dealer 2 has no price list and should quote the listed price, got %s", q.ListPrice)
	}
}

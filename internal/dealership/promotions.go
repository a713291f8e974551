package dealership

import (
	"time"

	"ev-dealer-hub/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Applies reports whether promo is active at the given time for the dealer
// and vehicle.
func Applies(promo models.Promotion, dealerID, vehicleID uint, at time.Time) bool {
	if promo.Status != models.StatusActive {
		return false
	}
	if at.Before(promo.StartDate) || at.After(promo.EndDate) {
		return false
	}
	if promo.DealerID != nil && *promo.DealerID != dealerID {
		return false
	}
	if len(promo.VehicleIDs) == 0 {
		return true
	}
	for _, id := range promo.VehicleIDs {
		if id == vehicleID {
			return true
		}
	}
	return false
}

// DiscountedPrice applies promo to price. Percentages are capped at 100 and
// fixed discounts never take the price below zero.
func DiscountedPrice(price decimal.Decimal, promo models.Promotion) decimal.Decimal {
	switch promo.DiscountType {
	case models.DiscountPercentage:
		rate := decimal.Min(promo.DiscountValue, hundred)
		if rate.IsNegative() {
			return price
		}
		return price.Sub(price.Mul(rate).Div(hundred)).Round(2)
	case models.DiscountFixed:
		return decimal.Max(price.Sub(promo.DiscountValue), decimal.Zero)
	}
	return price
}

// BestPromotion picks the applicable promotion giving the lowest price.
// On a tie the earlier promotion wins.
func BestPromotion(promos []models.Promotion, dealerID, vehicleID uint, price decimal.Decimal, at time.Time) (models.Promotion, decimal.Decimal, bool) {
	var (
		best  models.Promotion
		low   = price
		found bool
	)
	for _, p := range promos {
		if !Applies(p, dealerID, vehicleID, at) {
			continue
		}
		if discounted := DiscountedPrice(price, p); !found || discounted.LessThan(low) {
			best, low, found = p, discounted, true
		}
	}
	return best, low, found
}

// Quote is the price a dealer would charge for one unit of a vehicle today.
type Quote struct {
	VehicleID uint              `json:"vehicle_id"`
	DealerID  uint              `json:"dealer_id"`
	ListPrice decimal.Decimal   `json:"list_price"`
	UnitPrice decimal.Decimal   `json:"unit_price"`
	Promotion *models.Promotion `json:"promotion,omitempty"`
}

// QuotePrice starts from the dealer's active retail price for the vehicle,
// falling back to the listed price, and applies the best promotion.
func (r *Registry) QuotePrice(dealerID, vehicleID uint) (Quote, error) {
	vehicle, err := r.Vehicles.Get(vehicleID)
	if err != nil {
		return Quote{}, err
	}
	now := r.Now()
	price := vehicle.ListedPrice
	if p, ok := r.Pricing.Find(func(p models.Pricing) bool {
		return p.DealerID == dealerID && p.VehicleID == vehicleID && p.Status == models.StatusActive &&
			!now.Before(p.ValidFrom) && !p.IsExpired(now)
	}); ok {
		price = p.RetailPrice
	}

	q := Quote{VehicleID: vehicleID, DealerID: dealerID, ListPrice: price, UnitPrice: price}
	if promo, discounted, ok := BestPromotion(r.Promotions.List(), dealerID, vehicleID, price, now); ok {
		q.UnitPrice = discounted
		q.Promotion = &promo
	}
	return q, nil
}

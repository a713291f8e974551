package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pricing - The wholesale and retail price of a vehicle for one dealer.
type Pricing struct {
	Base
	VehicleID        uint            `gorm:"index" json:"vehicle_id"`
	DealerID         uint            `gorm:"index" json:"dealer_id"`
	WholesalePrice   decimal.Decimal `gorm:"type:decimal(20,2)" json:"wholesale_price"`
	RetailPrice      decimal.Decimal `gorm:"type:decimal(20,2)" json:"retail_price"`
	DiscountRate     decimal.Decimal `gorm:"type:decimal(6,2)" json:"discount_rate"` // percent
	MinOrderQuantity int             `json:"min_order_quantity"`
	ValidFrom        time.Time       `json:"valid_from"`
	ValidTo          time.Time       `json:"valid_to"`
	Status           string          `gorm:"size:10" json:"status"`
}

func (Pricing) TableName() string { return "pricing" }

func (p Pricing) OwnerDealer() *uint { return ptr(p.DealerID) }

func (p *Pricing) AssignDealer(id uint) { p.DealerID = id }

// IsExpired reports whether the price list ended before now.
func (p Pricing) IsExpired(now time.Time) bool {
	return p.ValidTo.Before(now)
}

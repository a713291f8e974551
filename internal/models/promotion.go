package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Discount types.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Promotion - A discount programme, optionally limited to a dealer and a set of vehicles.
type Promotion struct {
	Base
	ProgramName   string          `gorm:"size:160" json:"program_name"`
	Description   string          `json:"description"`
	Conditions    string          `json:"conditions"`
	DiscountType  string          `gorm:"size:20" json:"discount_type"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(20,2)" json:"discount_value"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	DealerID      *uint           `gorm:"index" json:"dealer_id"`            // nil applies to every dealer
	VehicleIDs    []uint          `gorm:"serializer:json" json:"vehicle_ids"` // empty applies to every vehicle
	Status        string          `gorm:"size:10" json:"status"`
	CreatedBy     uint            `json:"created_by"`
}

func (p Promotion) OwnerDealer() *uint { return p.DealerID }

func (p Promotion) SharedAcrossDealers() bool { return p.DealerID == nil }

func (p *Promotion) AssignDealer(id uint) { p.DealerID = ptr(id) }

// IsExpired reports whether the programme ended before now.
func (p Promotion) IsExpired(now time.Time) bool {
	return p.EndDate.Before(now)
}

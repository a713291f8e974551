package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dealer order statuses.
const (
	DealerOrderPending   = "pending"
	DealerOrderApproved  = "approved"
	DealerOrderDelivered = "delivered"
	DealerOrderRejected  = "rejected"
)

// DealerOrder - A dealer's wholesale purchase from the manufacturer.
type DealerOrder struct {
	Base
	DealerID     uint            `gorm:"index" json:"dealer_id"`
	VehicleID    uint            `gorm:"index" json:"vehicle_id"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(20,2)" json:"unit_price"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(20,2)" json:"total_amount"`
	OrderDate    time.Time       `json:"order_date"`
	DeliveryDate *time.Time      `json:"delivery_date"`
	Status       string          `gorm:"size:20" json:"status"`
	Notes        string          `json:"notes"`
	CreatedBy    uint            `json:"created_by"`
	ApprovedBy   *uint           `json:"approved_by"`
}

func (o DealerOrder) OwnerDealer() *uint { return ptr(o.DealerID) }

func (o *DealerOrder) AssignDealer(id uint) { o.DealerID = id }

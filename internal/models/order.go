package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderCompleted  = "completed"
	OrderCancelled  = "cancelled"
)

// Payment methods.
const (
	PaymentCash         = "cash"
	PaymentInstallment  = "installment"
	PaymentBankTransfer = "bank_transfer"
)

// Order - A retail sale of a vehicle to a customer.
type Order struct {
	Base
	CustomerID      uint            `gorm:"index" json:"customer_id"`
	DealerID        uint            `gorm:"index" json:"dealer_id"`
	VehicleID       uint            `gorm:"index" json:"vehicle_id"`
	UserID          uint            `gorm:"index" json:"user_id"` // Sales staff who owns the order
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(20,2)" json:"unit_price"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(20,2)" json:"total_amount"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(20,2)" json:"paid_amount"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(20,2)" json:"remaining_amount"`
	PaymentMethod   string          `gorm:"size:20" json:"payment_method"`
	Status          string          `gorm:"size:20" json:"status"`
	OrderDate       time.Time       `json:"order_date"`
	Notes           string          `json:"notes"`
}

func (o Order) OwnerDealer() *uint { return ptr(o.DealerID) }

func (o *Order) AssignDealer(id uint) { o.DealerID = id }

// Settle recomputes the remaining balance from total and paid.
func (o *Order) Settle() {
	o.RemainingAmount = o.TotalAmount.Sub(o.PaidAmount)
	if o.RemainingAmount.IsNegative() {
		o.RemainingAmount = decimal.Zero
	}
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Debt statuses.
const (
	DebtCurrent   = "current"
	DebtOverdue   = "overdue"
	DebtPaid      = "paid"
	DebtCancelled = "cancelled"
)

// Debt - An outstanding balance a customer owes a dealer for an order.
type Debt struct {
	Base
	DealerID              uint            `gorm:"index" json:"dealer_id"`
	CustomerID            uint            `gorm:"index" json:"customer_id"`
	OrderID               uint            `gorm:"index" json:"order_id"`
	TotalAmount           decimal.Decimal `gorm:"type:decimal(20,2)" json:"total_amount"`
	PaidAmount            decimal.Decimal `gorm:"type:decimal(20,2)" json:"paid_amount"`
	RemainingAmount       decimal.Decimal `gorm:"type:decimal(20,2)" json:"remaining_amount"`
	DueDate               time.Time       `json:"due_date"`
	Status                string          `gorm:"size:20" json:"status"`
	PaymentSchedule       string          `gorm:"size:20" json:"payment_schedule"`
	InstallmentsRemaining int             `json:"installments_remaining"`
}

func (d Debt) OwnerDealer() *uint { return ptr(d.DealerID) }

func (d *Debt) AssignDealer(id uint) { d.DealerID = id }

// IsOpen reports whether the debt can still receive payments.
func (d Debt) IsOpen() bool {
	return d.Status == DebtCurrent || d.Status == DebtOverdue
}

// IsOverdue reports whether the due date has passed at now.
func (d Debt) IsOverdue(now time.Time) bool {
	return d.DueDate.Before(now)
}

// Reassess derives the remaining balance and status after a payment.
// Cancelled debts keep their status.
func (d *Debt) Reassess(now time.Time) {
	d.RemainingAmount = d.TotalAmount.Sub(d.PaidAmount)
	if d.Status == DebtCancelled {
		return
	}
	switch {
	case !d.RemainingAmount.IsPositive():
		d.RemainingAmount = decimal.Zero
		d.Status = DebtPaid
	case d.IsOverdue(now):
		d.Status = DebtOverdue
	default:
		d.Status = DebtCurrent
	}
}

package dealership

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ev-dealer-hub/internal/models"

	"github.com/shopspring/decimal"
)

// ErrPayment is matched by every rejected payment.
var ErrPayment = errors.New("payment rejected")

// PaymentError explains why a payment was refused.
type PaymentError struct {
	Reason string
}

func (e *PaymentError) Error() string { return "payment rejected: " + e.Reason }

func (e *PaymentError) Is(target error) bool { return target == ErrPayment }

// PaymentResult is the state after a payment was applied.
type PaymentResult struct {
	Order *models.Order   `json:"order,omitempty"`
	Debts []models.Debt   `json:"debts"`
	Paid  decimal.Decimal `json:"paid"`
}

// RecordOrderPayment applies amount to the order and to every open debt
// raised for it. The order's balance is authoritative: the amount may not
// exceed what remains on it.
func (r *Registry) RecordOrderPayment(ctx context.Context, sess Session, orderID uint, amount decimal.Decimal) (PaymentResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, err := Lookup(sess, r.Orders, orderID)
	if err != nil {
		return PaymentResult{}, err
	}
	if err := checkOrderPayable(order, amount); err != nil {
		return PaymentResult{}, err
	}
	return r.payOrder(ctx, order.ID, amount)
}

// RecordDebtPayment applies amount to a debt. A debt raised for an order
// pays the order down as well, together with the order's other debts.
func (r *Registry) RecordDebtPayment(ctx context.Context, sess Session, debtID uint, amount decimal.Decimal) (PaymentResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	debt, err := Lookup(sess, r.Debts, debtID)
	if err != nil {
		return PaymentResult{}, err
	}
	if !debt.IsOpen() {
		return PaymentResult{}, &PaymentError{Reason: fmt.Sprintf("debt is %s", debt.Status)}
	}
	if err := checkAmount(amount, debt.TotalAmount.Sub(debt.PaidAmount)); err != nil {
		return PaymentResult{}, err
	}

	if debt.OrderID != 0 {
		if order, err := r.Orders.Get(debt.OrderID); err == nil && isPayable(order) {
			if err := checkAmount(amount, order.TotalAmount.Sub(order.PaidAmount)); err != nil {
				return PaymentResult{}, err
			}
			return r.payOrder(ctx, order.ID, amount)
		}
	}

	updated, err := r.Debts.Update(ctx, debt.ID, func(d *models.Debt) error {
		payDebt(d, amount, r.Now())
		return nil
	})
	if err != nil {
		return PaymentResult{}, fmt.Errorf("record debt payment: %w", err)
	}
	return PaymentResult{Debts: []models.Debt{updated}, Paid: amount}, nil
}

// payOrder applies amount to the order and its debts as one change.
// r.mu must be held.
func (r *Registry) payOrder(ctx context.Context, orderID uint, amount decimal.Decimal) (PaymentResult, error) {
	var res PaymentResult
	err := r.atomically(ctx, func(ctx context.Context, c *change) error {
		var err error
		res, err = r.applyToOrder(ctx, c, orderID, amount)
		return err
	})
	if err != nil {
		return PaymentResult{}, err
	}
	return res, nil
}

// applyToOrder must be called with r.mu held.
func (r *Registry) applyToOrder(ctx context.Context, c *change, orderID uint, amount decimal.Decimal) (PaymentResult, error) {
	order, err := update(ctx, c, r.Orders, orderID, func(o *models.Order) error {
		o.PaidAmount = o.PaidAmount.Add(amount)
		o.Settle()
		switch {
		case o.RemainingAmount.IsZero():
			o.Status = models.OrderCompleted
		case o.Status == models.OrderPending:
			o.Status = models.OrderProcessing
		}
		return nil
	})
	if err != nil {
		return PaymentResult{}, fmt.Errorf("record order payment: %w", err)
	}

	now := r.Now()
	res := PaymentResult{Order: &order, Debts: []models.Debt{}, Paid: amount}
	linked := r.Debts.Filter(func(d models.Debt) bool { return d.OrderID == orderID && d.IsOpen() })
	for _, d := range linked {
		updated, err := update(ctx, c, r.Debts, d.ID, func(d *models.Debt) error {
			payDebt(d, amount, now)
			return nil
		})
		if err != nil {
			return res, fmt.Errorf("record order payment: debt %d: %w", d.ID, err)
		}
		res.Debts = append(res.Debts, updated)
	}
	return res, nil
}

// settleOrderOf pays the debt's order down by what is left on the debt, when
// that order can still take payments. r.mu must be held.
func (r *Registry) settleOrderOf(ctx context.Context, c *change, debt models.Debt) error {
	if debt.OrderID == 0 {
		return nil
	}
	order, err := r.Orders.Get(debt.OrderID)
	if err != nil || !isPayable(order) {
		return nil
	}
	amount := decimal.Min(debt.TotalAmount.Sub(debt.PaidAmount), order.TotalAmount.Sub(order.PaidAmount))
	if !amount.IsPositive() {
		return nil
	}
	_, err = r.applyToOrder(ctx, c, order.ID, amount)
	return err
}

// RefreshDebtStatuses moves open debts between current and overdue according
// to their due dates, and returns the debts that changed.
func (r *Registry) RefreshDebtStatuses(ctx context.Context, sess Session) ([]models.Debt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.Now()
	var changed []models.Debt
	err := r.atomically(ctx, func(ctx context.Context, c *change) error {
		changed = []models.Debt{}
		for _, d := range Visible(sess, r.Debts.List()) {
			if !d.IsOpen() {
				continue
			}
			want := models.DebtCurrent
			if d.IsOverdue(now) {
				want = models.DebtOverdue
			}
			if d.Status == want {
				continue
			}
			updated, err := update(ctx, c, r.Debts, d.ID, func(d *models.Debt) error {
				d.Status = want
				return nil
			})
			if err != nil {
				return fmt.Errorf("refresh debt %d: %w", d.ID, err)
			}
			changed = append(changed, updated)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changed, nil
}

func payDebt(d *models.Debt, amount decimal.Decimal, now time.Time) {
	d.PaidAmount = decimal.Min(d.PaidAmount.Add(amount), d.TotalAmount)
	if d.InstallmentsRemaining > 0 {
		d.InstallmentsRemaining--
	}
	d.Reassess(now)
	if d.Status == models.DebtPaid {
		d.InstallmentsRemaining = 0
	}
}

func isPayable(o models.Order) bool {
	return o.Status == models.OrderPending || o.Status == models.OrderProcessing
}

func checkOrderPayable(o models.Order, amount decimal.Decimal) error {
	if !isPayable(o) {
		return &PaymentError{Reason: fmt.Sprintf("order is %s", o.Status)}
	}
	return checkAmount(amount, o.TotalAmount.Sub(o.PaidAmount))
}

func checkAmount(amount, remaining decimal.Decimal) error {
	if !amount.IsPositive() {
		return &PaymentError{Reason: "amount must be greater than 0"}
	}
	if amount.GreaterThan(remaining) {
		return &PaymentError{Reason: fmt.Sprintf("amount exceeds the remaining %s", remaining.StringFixed(2))}
	}
	return nil
}

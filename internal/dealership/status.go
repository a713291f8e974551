package dealership

import (
	"context"
	"fmt"

	"ev-dealer-hub/internal/models"
	"ev-dealer-hub/internal/store"
	"ev-dealer-hub/internal/workflow"
)

// transition checks from → to against m, then sets the status and runs
// effect on the record before it is committed. The update is recorded on c
// when c is not nil.
func transition[T any, P store.Record[T]](ctx context.Context, c *change, sess Session, st *store.Store[T, P], m *workflow.Machine, id uint, to string, status func(*T) *string, effect func(rec *T, from string)) (T, error) {
	if _, err := Lookup(sess, st, id); err != nil {
		var zero T
		return zero, err
	}
	return update(ctx, c, st, id, func(rec *T) error {
		s := status(rec)
		from := *s
		if err := m.Check(from, to); err != nil {
			return err
		}
		*s = to
		if effect != nil {
			effect(rec, from)
		}
		return nil
	})
}

// SetOrderStatus moves a sales order along its workflow.
func (r *Registry) SetOrderStatus(ctx context.Context, sess Session, id uint, to string) (models.Order, error) {
	return transition(ctx, nil, sess, r.Orders, workflow.Order, id, to,
		func(o *models.Order) *string { return &o.Status }, nil)
}

// SetDebtStatus moves a debt along its workflow. Marking a debt paid settles
// its balance and pays what was left of it into the order it was raised for.
func (r *Registry) SetDebtStatus(ctx context.Context, sess Session, id uint, to string) (models.Debt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	debt, err := Lookup(sess, r.Debts, id)
	if err != nil {
		return models.Debt{}, err
	}
	if err := workflow.Debt.Check(debt.Status, to); err != nil {
		return models.Debt{}, err
	}

	var out models.Debt
	err = r.atomically(ctx, func(ctx context.Context, c *change) error {
		if to == models.DebtPaid {
			if err := r.settleOrderOf(ctx, c, debt); err != nil {
				return fmt.Errorf("settle debt %d: %w", id, err)
			}
			// Paying the order may already have paid this debt off.
			if d, err := r.Debts.Get(id); err == nil && d.Status == models.DebtPaid {
				out = d
				return nil
			}
		}
		var err error
		out, err = transition(ctx, c, sess, r.Debts, workflow.Debt, id, to,
			func(d *models.Debt) *string { return &d.Status },
			func(d *models.Debt, _ string) {
				if d.Status == models.DebtPaid {
					d.PaidAmount = d.TotalAmount
					d.Reassess(r.Now())
					d.InstallmentsRemaining = 0
				}
			})
		return err
	})
	if err != nil {
		return models.Debt{}, err
	}
	return out, nil
}

// SetTestDriveStatus moves a test drive along its workflow.
func (r *Registry) SetTestDriveStatus(ctx context.Context, sess Session, id uint, to string) (models.TestDrive, error) {
	return transition(ctx, nil, sess, r.TestDrives, workflow.TestDrive, id, to,
		func(t *models.TestDrive) *string { return &t.Status }, nil)
}

// SetFeedbackStatus moves feedback along its workflow, stamping who resolved
// it and when.
func (r *Registry) SetFeedbackStatus(ctx context.Context, sess Session, id uint, to string) (models.Feedback, error) {
	return transition(ctx, nil, sess, r.Feedbacks, workflow.Feedback, id, to,
		func(f *models.Feedback) *string { return &f.Status },
		func(f *models.Feedback, from string) {
			switch {
			case f.Status == models.FeedbackResolved:
				now := r.Now()
				by := sess.UserID
				f.ResolvedDate = &now
				f.ResolvedBy = &by
			case from == models.FeedbackResolved:
				f.ResolvedDate = nil
				f.ResolvedBy = nil
			}
		})
}

// SetDealerOrderStatus moves a dealer order along its workflow. Approval
// records the approver; delivery stamps the date and puts the vehicles
// into the dealer's stock.
func (r *Registry) SetDealerOrderStatus(ctx context.Context, sess Session, id uint, to string) (models.DealerOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var order models.DealerOrder
	err := r.atomically(ctx, func(ctx context.Context, c *change) error {
		var err error
		order, err = transition(ctx, c, sess, r.DealerOrders, workflow.DealerOrder, id, to,
			func(o *models.DealerOrder) *string { return &o.Status },
			func(o *models.DealerOrder, _ string) {
				switch o.Status {
				case models.DealerOrderApproved:
					by := sess.UserID
					o.ApprovedBy = &by
				case models.DealerOrderDelivered:
					now := r.Now()
					o.DeliveryDate = &now
				}
			})
		if err != nil {
			return err
		}
		if order.Status == models.DealerOrderDelivered {
			if _, err := r.receive(ctx, c, order.DealerID, order.VehicleID, order.Quantity); err != nil {
				return fmt.Errorf("deliver dealer order %d: %w", order.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return models.DealerOrder{}, err
	}
	return order, nil
}

// ToggleActive flips the status of a two-state record between active and inactive.
func ToggleActive[T any, P store.Record[T]](ctx context.Context, sess Session, st *store.Store[T, P], id uint) (T, error) {
	if _, err := Lookup(sess, st, id); err != nil {
		var zero T
		return zero, err
	}
	return st.Toggle(ctx, id, "status", models.StatusActive, models.StatusInactive)
}

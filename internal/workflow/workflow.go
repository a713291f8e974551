// Package workflow holds the status machines of the status-bearing entities.
package workflow

import (
	"errors"
	"fmt"

	"ev-dealer-hub/internal/models"
)

// ErrTransition is matched by every rejected status change.
var ErrTransition = errors.New("status transition not allowed")

// TransitionError names the rejected move.
type TransitionError struct {
	Machine string
	From    string
	To      string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot move from %q to %q", e.Machine, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrTransition }

// Machine is a table of allowed status moves. forward lists the single step
// the dashboard offers as its "next" button.
type Machine struct {
	name    string
	states  []string
	edges   map[string][]string
	forward map[string]string
}

func (m *Machine) Name() string { return m.name }

// States lists every status in declaration order.
func (m *Machine) States() []string {
	return append([]string(nil), m.states...)
}

// Valid reports whether status belongs to the machine.
func (m *Machine) Valid(status string) bool {
	for _, s := range m.states {
		if s == status {
			return true
		}
	}
	return false
}

// Allows reports whether from → to is a legal move.
func (m *Machine) Allows(from, to string) bool {
	for _, next := range m.edges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Check returns a *TransitionError unless from → to is legal.
func (m *Machine) Check(from, to string) error {
	if !m.Allows(from, to) {
		return &TransitionError{Machine: m.name, From: from, To: to}
	}
	return nil
}

// Next returns the forward step from status, if there is one.
func (m *Machine) Next(status string) (string, bool) {
	next, ok := m.forward[status]
	return next, ok
}

// Terminal reports whether no move leaves status.
func (m *Machine) Terminal(status string) bool {
	return len(m.edges[status]) == 0
}

var (
	Active = &Machine{
		name:   "active",
		states: []string{models.StatusActive, models.StatusInactive},
		edges: map[string][]string{
			models.StatusActive:   {models.StatusInactive},
			models.StatusInactive: {models.StatusActive},
		},
		forward: map[string]string{
			models.StatusActive:   models.StatusInactive,
			models.StatusInactive: models.StatusActive,
		},
	}

	Order = &Machine{
		name:   "order",
		states: []string{models.OrderPending, models.OrderProcessing, models.OrderCompleted, models.OrderCancelled},
		edges: map[string][]string{
			models.OrderPending:    {models.OrderProcessing, models.OrderCancelled},
			models.OrderProcessing: {models.OrderCompleted, models.OrderCancelled},
		},
		forward: map[string]string{
			models.OrderPending:    models.OrderProcessing,
			models.OrderProcessing: models.OrderCompleted,
		},
	}

	Debt = &Machine{
		name:   "debt",
		states: []string{models.DebtCurrent, models.DebtOverdue, models.DebtPaid, models.DebtCancelled},
		edges: map[string][]string{
			models.DebtCurrent: {models.DebtOverdue, models.DebtPaid, models.DebtCancelled},
			models.DebtOverdue: {models.DebtCurrent, models.DebtPaid, models.DebtCancelled},
		},
		forward: map[string]string{
			models.DebtCurrent: models.DebtPaid,
			models.DebtOverdue: models.DebtPaid,
		},
	}

	TestDrive = &Machine{
		name:   "test_drive",
		states: []string{models.TestDriveScheduled, models.TestDriveInProgress, models.TestDriveCompleted, models.TestDriveCancelled},
		edges: map[string][]string{
			models.TestDriveScheduled:  {models.TestDriveInProgress, models.TestDriveCancelled},
			models.TestDriveInProgress: {models.TestDriveCompleted},
		},
		forward: map[string]string{
			models.TestDriveScheduled:  models.TestDriveInProgress,
			models.TestDriveInProgress: models.TestDriveCompleted,
		},
	}

	Feedback = &Machine{
		name:   "feedback",
		states: []string{models.FeedbackPending, models.FeedbackProcessing, models.FeedbackResolved},
		edges: map[string][]string{
			models.FeedbackPending:    {models.FeedbackProcessing},
			models.FeedbackProcessing: {models.FeedbackResolved},
		},
		forward: map[string]string{
			models.FeedbackPending:    models.FeedbackProcessing,
			models.FeedbackProcessing: models.FeedbackResolved,
		},
	}

	DealerOrder = &Machine{
		name:   "dealer_order",
		states: []string{models.DealerOrderPending, models.DealerOrderApproved, models.DealerOrderDelivered, models.DealerOrderRejected},
		edges: map[string][]string{
			models.DealerOrderPending:  {models.DealerOrderApproved, models.DealerOrderRejected},
			models.DealerOrderApproved: {models.DealerOrderDelivered},
		},
		forward: map[string]string{
			models.DealerOrderPending:  models.DealerOrderApproved,
			models.DealerOrderApproved: models.DealerOrderDelivered,
		},
	}
)

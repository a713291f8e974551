package dealership

import (
	"context"
	"errors"
	"fmt"

	"ev-dealer-hub/internal/models"
)

// ErrStock is matched when a stock movement would leave a negative quantity.
var ErrStock = errors.New("insufficient stock")

// StockError reports the quantity that was asked for and what was on hand.
type StockError struct {
	Wanted    int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock: wanted %d, have %d", e.Wanted, e.Available)
}

func (e *StockError) Is(target error) bool { return target == ErrStock }

// Reserve moves qty units from available to reserved.
func (r *Registry) Reserve(ctx context.Context, sess Session, inventoryID uint, qty int) (models.Inventory, error) {
	return r.moveStock(ctx, sess, inventoryID, qty, func(inv *models.Inventory) error {
		if inv.AvailableQuantity < qty {
			return &StockError{Wanted: qty, Available: inv.AvailableQuantity}
		}
		inv.AvailableQuantity -= qty
		inv.ReservedQuantity += qty
		return nil
	})
}

// Release moves qty reserved units back to available.
func (r *Registry) Release(ctx context.Context, sess Session, inventoryID uint, qty int) (models.Inventory, error) {
	return r.moveStock(ctx, sess, inventoryID, qty, func(inv *models.Inventory) error {
		if inv.ReservedQuantity < qty {
			return &StockError{Wanted: qty, Available: inv.ReservedQuantity}
		}
		inv.ReservedQuantity -= qty
		inv.AvailableQuantity += qty
		return nil
	})
}

func (r *Registry) moveStock(ctx context.Context, sess Session, id uint, qty int, move func(*models.Inventory) error) (models.Inventory, error) {
	if qty <= 0 {
		return models.Inventory{}, &StockError{Wanted: qty}
	}
	if _, err := Lookup(sess, r.Inventory, id); err != nil {
		return models.Inventory{}, err
	}
	return r.Inventory.Update(ctx, id, func(inv *models.Inventory) error {
		if err := move(inv); err != nil {
			return err
		}
		inv.LastUpdated = r.Now()
		return nil
	})
}

// Receive adds qty available units of a vehicle to a dealer's stock,
// creating the stock row on first delivery.
func (r *Registry) Receive(ctx context.Context, dealerID, vehicleID uint, qty int) (models.Inventory, error) {
	return r.receive(ctx, nil, dealerID, vehicleID, qty)
}

func (r *Registry) receive(ctx context.Context, c *change, dealerID, vehicleID uint, qty int) (models.Inventory, error) {
	if qty <= 0 {
		return models.Inventory{}, &StockError{Wanted: qty}
	}
	row, ok := r.Inventory.Find(func(inv models.Inventory) bool {
		return inv.DealerID == dealerID && inv.VehicleID == vehicleID
	})
	if !ok {
		return create(ctx, c, r.Inventory, models.Inventory{
			DealerID:          dealerID,
			VehicleID:         vehicleID,
			AvailableQuantity: qty,
			LastUpdated:       r.Now(),
		})
	}
	return update(ctx, c, r.Inventory, row.ID, func(inv *models.Inventory) error {
		inv.AvailableQuantity += qty
		inv.LastUpdated = r.Now()
		return nil
	})
}

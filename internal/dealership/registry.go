// Package dealership wires the entity stores together and implements the
// operations that touch more than one of them: payments, stock movements,
// status side effects, promotions and reports.
package dealership

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ev-dealer-hub/internal/form"
	"ev-dealer-hub/internal/models"
	"ev-dealer-hub/internal/store"
)

// Registry holds the one store of every entity. Handlers, reports and the
// assistant all read the same stores.
type Registry struct {
	Users        *store.Store[models.User, *models.User]
	Dealers      *store.Store[models.Dealer, *models.Dealer]
	VehicleTypes *store.Store[models.VehicleType, *models.VehicleType]
	Vehicles     *store.Store[models.Vehicle, *models.Vehicle]
	Inventory    *store.Store[models.Inventory, *models.Inventory]
	Customers    *store.Store[models.Customer, *models.Customer]
	Orders       *store.Store[models.Order, *models.Order]
	DealerOrders *store.Store[models.DealerOrder, *models.DealerOrder]
	Debts        *store.Store[models.Debt, *models.Debt]
	Promotions   *store.Store[models.Promotion, *models.Promotion]
	Pricing      *store.Store[models.Pricing, *models.Pricing]
	TestDrives   *store.Store[models.TestDrive, *models.TestDrive]
	Feedbacks    *store.Store[models.Feedback, *models.Feedback]
	Settings     *store.Store[models.Settings, *models.Settings]

	// Now is the clock used for timestamps and due-date checks.
	Now func() time.Time

	// Atomic, when set, runs fn as one unit of persistence: every store write
	// made with the context fn receives commits together or not at all.
	Atomic func(ctx context.Context, fn func(ctx context.Context) error) error

	// mu serialises operations spanning several stores.
	mu sync.Mutex
}

// NewRegistry returns a registry of empty stores.
func NewRegistry() *Registry {
	return &Registry{
		Users:        store.New[models.User]("users"),
		Dealers:      store.New[models.Dealer]("dealers"),
		VehicleTypes: store.New[models.VehicleType]("vehicle_types"),
		Vehicles:     store.New[models.Vehicle]("vehicles"),
		Inventory:    store.New[models.Inventory]("inventory"),
		Customers:    store.New[models.Customer]("customers"),
		Orders:       store.New[models.Order]("orders"),
		DealerOrders: store.New[models.DealerOrder]("dealer_orders"),
		Debts:        store.New[models.Debt]("debts"),
		Promotions:   store.New[models.Promotion]("promotions"),
		Pricing:      store.New[models.Pricing]("pricing"),
		TestDrives:   store.New[models.TestDrive]("test_drives"),
		Feedbacks:    store.New[models.Feedback]("feedbacks"),
		Settings:     store.New[models.Settings]("settings"),
		Now:          time.Now,
	}
}

// CurrentSettings returns the settings record, or the defaults when none exists.
func (r *Registry) CurrentSettings() models.Settings {
	if all := r.Settings.List(); len(all) > 0 {
		return all[0]
	}
	return models.DefaultSettings()
}

// UpdateSettings merges fields into the settings record, creating it from
// the defaults first if needed. The stock thresholds must keep low <= high.
func (r *Registry) UpdateSettings(ctx context.Context, fields map[string]any) (models.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.CurrentSettings()
	next, err := store.Merged(current, fields)
	if err != nil {
		return models.Settings{}, fmt.Errorf("update settings: %w", err)
	}
	if next.LowStockThreshold > next.HighStockThreshold {
		return models.Settings{}, &form.ValidationError{
			Entity: "settings",
			Fields: map[string]string{"low_stock_threshold": "must not exceed high_stock_threshold"},
		}
	}

	if r.Settings.Len() == 0 {
		created, err := r.Settings.Create(ctx, current)
		if err != nil {
			return models.Settings{}, fmt.Errorf("update settings: %w", err)
		}
		current = created
	}
	return r.Settings.Patch(ctx, current.ID, fields)
}

// SetPassword stores a new password hash for the user.
func (r *Registry) SetPassword(ctx context.Context, userID uint, hash string) error {
	_, err := r.Users.Update(ctx, userID, func(u *models.User) error {
		u.PasswordHash = hash
		return nil
	})
	return err
}

// FindUser looks a user up by username.
func (r *Registry) FindUser(username string) (models.User, bool) {
	return r.Users.Find(func(u models.User) bool { return u.Username == username })
}

// dealerName and its siblings label report rows, falling back to the id.
func (r *Registry) dealerName(id uint) string {
	if d, err := r.Dealers.Get(id); err == nil {
		return d.Name
	}
	return fmt.Sprintf("Dealer #%d", id)
}

func (r *Registry) vehicleName(id uint) string {
	if v, err := r.Vehicles.Get(id); err == nil {
		return v.ModelName
	}
	return fmt.Sprintf("Vehicle #%d", id)
}

func (r *Registry) customerName(id uint) string {
	if c, err := r.Customers.Get(id); err == nil {
		return c.FullName
	}
	return fmt.Sprintf("Customer #%d", id)
}

func (r *Registry) userName(id uint) string {
	if u, err := r.Users.Get(id); err == nil {
		return u.FullName
	}
	return fmt.Sprintf("User #%d", id)
}

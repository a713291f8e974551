// Package fixtures holds the demo data the dashboard starts with.
package fixtures

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"ev-dealer-hub/internal/auth"
	"ev-dealer-hub/internal/dealership"
	"ev-dealer-hub/internal/models"
)

//go:embed seed.json
var embedded []byte

// Data is the content of a seed file. Users carry a plain password that is
// hashed when the data is applied.
type Data struct {
	Users        []SeedUser           `json:"users"`
	Dealers      []models.Dealer      `json:"dealers"`
	VehicleTypes []models.VehicleType `json:"vehicle_types"`
	Vehicles     []models.Vehicle     `json:"vehicles"`
	Inventory    []models.Inventory   `json:"inventory"`
	Customers    []models.Customer    `json:"customers"`
	Orders       []models.Order       `json:"orders"`
	DealerOrders []models.DealerOrder `json:"dealer_orders"`
	Debts        []models.Debt        `json:"debts"`
	Promotions   []models.Promotion   `json:"promotions"`
	Pricing      []models.Pricing     `json:"pricing"`
	TestDrives   []models.TestDrive   `json:"test_drives"`
	Feedbacks    []models.Feedback    `json:"feedbacks"`
	Settings     []models.Settings    `json:"settings"`
}

type SeedUser struct {
	models.User
	Password string `json:"password"`
}

// Load reads the seed file at path, or the built-in demo data when path is empty.
func Load(path string) (*Data, error) {
	raw := embedded
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read fixtures: %w", err)
		}
		raw = b
	}
	return Parse(raw)
}

// Parse decodes seed data.
func Parse(raw []byte) (*Data, error) {
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return &d, nil
}

// Apply replaces the content of every store with the seed data.
func (d *Data) Apply(r *dealership.Registry) error {
	users := make([]models.User, 0, len(d.Users))
	for _, su := range d.Users {
		u := su.User
		if su.Password != "" {
			hash, err := auth.HashPassword(su.Password)
			if err != nil {
				return fmt.Errorf("seed user %s: %w", u.Username, err)
			}
			u.PasswordHash = hash
		}
		users = append(users, u)
	}

	r.Users.Load(users)
	r.Dealers.Load(d.Dealers)
	r.VehicleTypes.Load(d.VehicleTypes)
	r.Vehicles.Load(d.Vehicles)
	r.Inventory.Load(d.Inventory)
	r.Customers.Load(d.Customers)
	r.Orders.Load(d.Orders)
	r.DealerOrders.Load(d.DealerOrders)
	r.Debts.Load(d.Debts)
	r.Promotions.Load(d.Promotions)
	r.Pricing.Load(d.Pricing)
	r.TestDrives.Load(d.TestDrives)
	r.Feedbacks.Load(d.Feedbacks)
	r.Settings.Load(d.Settings)
	return nil
}

// Seed loads the fixtures at path into r.
func Seed(r *dealership.Registry, path string) error {
	d, err := Load(path)
	if err != nil {
		return err
	}
	return d.Apply(r)
}

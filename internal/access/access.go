// Package access maps each dashboard role to the resources it may read or change.
package access

import (
	"fmt"

	"ev-dealer-hub/internal/models"
)

// Resource names a collection or screen the API exposes.
type Resource string

const (
	Dealers      Resource = "dealers"
	Vehicles     Resource = "vehicles"
	VehicleTypes Resource = "vehicle_types"
	Users        Resource = "users"
	Inventory    Resource = "inventory"
	Orders       Resource = "orders"
	DealerOrders Resource = "dealer_orders"
	Customers    Resource = "customers"
	Debts        Resource = "debts"
	Promotions   Resource = "promotions"
	Pricing      Resource = "pricing"
	TestDrives   Resource = "test_drives"
	Feedbacks    Resource = "feedbacks"
	Settings     Resource = "settings"
	Reports      Resource = "reports"
	Assistant    Resource = "assistant"
)

// Access is ordered: Write implies Read.
type Access int

const (
	None Access = iota
	Read
	Write
)

func (a Access) String() string {
	switch a {
	case Read:
		return "read"
	case Write:
		return "write"
	default:
		return "none"
	}
}

// Capabilities is the role → resource lookup table. Anything missing is None.
var Capabilities = map[models.Role]map[Resource]Access{
	models.RoleAdmin: {
		Dealers:      Write,
		Vehicles:     Write,
		VehicleTypes: Write,
		Users:        Write,
		Settings:     Write,
		Assistant:    Write,
		Reports:      Read,
		Inventory:    Read,
		Orders:       Read,
		DealerOrders: Read,
		Customers:    Read,
		Debts:        Read,
		Promotions:   Read,
		Pricing:      Read,
		TestDrives:   Read,
		Feedbacks:    Read,
	},
	models.RoleEVMStaff: {
		Vehicles:     Write,
		VehicleTypes: Write,
		Inventory:    Write,
		Dealers:      Write,
		DealerOrders: Write,
		Pricing:      Write,
		Promotions:   Write,
		Debts:        Write,
		Reports:      Read,
		Orders:       Read,
		Customers:    Read,
		Settings:     Read,
	},
	models.RoleDealerManager: {
		Orders:       Write,
		Customers:    Write,
		Users:        Write,
		Inventory:    Write,
		DealerOrders: Write,
		Debts:        Write,
		Feedbacks:    Write,
		TestDrives:   Write,
		Reports:      Read,
		Vehicles:     Read,
		VehicleTypes: Read,
		Promotions:   Read,
		Pricing:      Read,
		Settings:     Read,
	},
	models.RoleDealerStaff: {
		Orders:       Write,
		Customers:    Write,
		TestDrives:   Write,
		Feedbacks:    Write,
		DealerOrders: Write,
		Vehicles:     Read,
		VehicleTypes: Read,
		Promotions:   Read,
		Inventory:    Read,
		Reports:      Read,
		Settings:     Read,
	},
}

// ParseRole rejects anything outside the closed role set.
func ParseRole(s string) (models.Role, error) {
	r := models.Role(s)
	if _, ok := Capabilities[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Level returns the access role holds on res.
func Level(role models.Role, res Resource) Access {
	return Capabilities[role][res]
}

// Can reports whether role holds at least want on res.
func Can(role models.Role, res Resource, want Access) bool {
	if want == None {
		return true
	}
	return Level(role, res) >= want
}

// DealerScoped reports whether the role only sees its own dealer's records.
func DealerScoped(role models.Role) bool {
	return role.IsDealerRole()
}

package handlers

import (
	"context"
	"encoding/json"
	"strconv"

	"ev-dealer-hub/internal/access"
	"ev-dealer-hub/internal/auth"
	"ev-dealer-hub/internal/dealership"
	"ev-dealer-hub/internal/form"
	"ev-dealer-hub/internal/models"
	"ev-dealer-hub/internal/store"

	"github.com/shopspring/decimal"
)

// problems collects field messages for one validation error.
type problems map[string]string

func (p problems) err(entity string) error {
	if len(p) == 0 {
		return nil
	}
	return &form.ValidationError{Entity: entity, Fields: p}
}

func exists[T any, P store.Record[T]](st *store.Store[T, P], id uint) bool {
	_, err := st.Get(id)
	return err == nil
}

// idFrom reads an id out of a raw JSON value.
func idFrom(v any) (uint, bool) {
	var n int64
	switch x := v.(type) {
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return 0, false
		}
		n = i
	case float64:
		n = int64(x)
	case string:
		i, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return 0, false
		}
		n = i
	case uint:
		return x, x > 0
	default:
		return 0, false
	}
	return uint(n), n > 0
}

func withStatus(status string) func(dealership.Session, map[string]any, *form.Draft) {
	return func(_ dealership.Session, _ map[string]any, d *form.Draft) {
		d.Set("status", status)
	}
}

func (s *Server) dealers() *resource[models.Dealer, *models.Dealer] {
	return &resource[models.Dealer, *models.Dealer]{
		name:     access.Dealers,
		store:    s.reg.Dealers,
		schema:   dealership.Schemas[access.Dealers],
		defaults: withStatus(models.StatusActive),
		toggle:   true,
	}
}

func (s *Server) vehicleTypes() *resource[models.VehicleType, *models.VehicleType] {
	return &resource[models.VehicleType, *models.VehicleType]{
		name:     access.VehicleTypes,
		store:    s.reg.VehicleTypes,
		schema:   dealership.Schemas[access.VehicleTypes],
		defaults: withStatus(models.StatusActive),
		toggle:   true,
	}
}

func (s *Server) vehicles() *resource[models.Vehicle, *models.Vehicle] {
	return &resource[models.Vehicle, *models.Vehicle]{
		name:     access.Vehicles,
		store:    s.reg.Vehicles,
		schema:   dealership.Schemas[access.Vehicles],
		defaults: withStatus(models.StatusActive),
		toggle:   true,
		check: func(_ dealership.Session, _ map[string]any, v *models.Vehicle) error {
			p := problems{}
			if !exists(s.reg.VehicleTypes, v.VehicleTypeID) {
				p["vehicle_type_id"] = "does not exist"
			}
			return p.err("vehicle")
		},
	}
}

func (s *Server) users() *resource[models.User, *models.User] {
	return &resource[models.User, *models.User]{
		name:     access.Users,
		store:    s.reg.Users,
		schema:   dealership.Schemas[access.Users],
		defaults: withStatus(models.StatusActive),
		toggle:   true,
		check: func(sess dealership.Session, values map[string]any, u *models.User) error {
			p := problems{}
			if pw, ok := values["password"].(string); ok {
				if msg := s.reg.CurrentSettings().PasswordProblem(pw); msg != "" {
					p["password"] = msg
				} else {
					hash, err := auth.HashPassword(pw)
					if err != nil {
						return err
					}
					u.PasswordHash = hash
				}
			}
			if other, ok := s.reg.FindUser(u.Username); ok && other.ID != u.ID {
				p["username"] = "is already taken"
			}
			switch {
			case u.Role.IsDealerRole() && u.DealerID == nil:
				p["dealer_id"] = "is required for dealer roles"
			case u.Role.IsDealerRole() && !exists(s.reg.Dealers, *u.DealerID):
				p["dealer_id"] = "does not exist"
			case !u.Role.IsDealerRole() && sess.Scoped():
				p["role"] = "must be a dealer role"
			case !u.Role.IsDealerRole():
				u.DealerID = nil
			}
			return p.err("user")
		},
		guard: func(sess dealership.Session, id uint) error {
			if id == sess.UserID {
				return &conflictError{msg: "You cannot remove or deactivate your own account"}
			}
			return nil
		},
	}
}

func (s *Server) inventory() *resource[models.Inventory, *models.Inventory] {
	return &resource[models.Inventory, *models.Inventory]{
		name:   access.Inventory,
		store:  s.reg.Inventory,
		schema: dealership.Schemas[access.Inventory],
		check: func(_ dealership.Session, _ map[string]any, inv *models.Inventory) error {
			p := problems{}
			if !exists(s.reg.Dealers, inv.DealerID) {
				p["dealer_id"] = "does not exist"
			}
			if !exists(s.reg.Vehicles, inv.VehicleID) {
				p["vehicle_id"] = "does not exist"
			}
			if _, dup := s.reg.Inventory.Find(func(o models.Inventory) bool {
				return o.ID != inv.ID && o.DealerID == inv.DealerID && o.VehicleID == inv.VehicleID
			}); dup {
				p["vehicle_id"] = "already has a stock row at this dealer"
			}
			inv.LastUpdated = s.reg.Now()
			return p.err("inventory")
		},
	}
}

func (s *Server) customers() *resource[models.Customer, *models.Customer] {
	return &resource[models.Customer, *models.Customer]{
		name:   access.Customers,
		store:  s.reg.Customers,
		schema: dealership.Schemas[access.Customers],
		check: func(_ dealership.Session, _ map[string]any, cu *models.Customer) error {
			p := problems{}
			if !exists(s.reg.Dealers, cu.DealerID) {
				p["dealer_id"] = "does not exist"
			}
			return p.err("customer")
		},
	}
}

// checkCustomer reports whether the customer exists and buys from dealerID.
func (s *Server) checkCustomer(p problems, customerID, dealerID uint) {
	c, err := s.reg.Customers.Get(customerID)
	switch {
	case err != nil:
		p["customer_id"] = "does not exist"
	case c.DealerID != dealerID:
		p["customer_id"] = "belongs to another dealer"
	}
}

func (s *Server) orders() *resource[models.Order, *models.Order] {
	return &resource[models.Order, *models.Order]{
		name:   access.Orders,
		store:  s.reg.Orders,
		schema: dealership.Schemas[access.Orders],
		defaults: func(sess dealership.Session, input map[string]any, d *form.Draft) {
			d.Set("user_id", sess.UserID)
			d.Set("order_date", s.reg.Now())
			d.Set("status", models.OrderPending)
			d.Set("paid_amount", "0")
			if _, priced := input["unit_price"]; priced {
				return
			}
			dealerID, okD := idFrom(d.Get("dealer_id"))
			if v, ok := idFrom(input["dealer_id"]); ok {
				dealerID, okD = v, true
			}
			vehicleID, okV := idFrom(input["vehicle_id"])
			if !okD || !okV {
				return
			}
			if q, err := s.reg.QuotePrice(dealerID, vehicleID); err == nil {
				d.Set("unit_price", q.UnitPrice.String())
			}
		},
		check: func(_ dealership.Session, _ map[string]any, o *models.Order) error {
			p := problems{}
			if !exists(s.reg.Dealers, o.DealerID) {
				p["dealer_id"] = "does not exist"
			}
			if !exists(s.reg.Vehicles, o.VehicleID) {
				p["vehicle_id"] = "does not exist"
			}
			if !exists(s.reg.Users, o.UserID) {
				p["user_id"] = "does not exist"
			}
			s.checkCustomer(p, o.CustomerID, o.DealerID)
			if o.PaidAmount.GreaterThan(o.TotalAmount) {
				p["paid_amount"] = "cannot exceed the total amount"
			}
			o.Settle()
			return p.err("order")
		},
		status: s.reg.SetOrderStatus,
	}
}

func (s *Server) dealerOrders() *resource[models.DealerOrder, *models.DealerOrder] {
	return &resource[models.DealerOrder, *models.DealerOrder]{
		name:   access.DealerOrders,
		store:  s.reg.DealerOrders,
		schema: dealership.Schemas[access.DealerOrders],
		defaults: func(_ dealership.Session, input map[string]any, d *form.Draft) {
			d.Set("order_date", s.reg.Now())
			d.Set("status", models.DealerOrderPending)
			if _, priced := input["unit_price"]; priced {
				return
			}
			dealerID, okD := idFrom(d.Get("dealer_id"))
			if v, ok := idFrom(input["dealer_id"]); ok {
				dealerID, okD = v, true
			}
			vehicleID, okV := idFrom(input["vehicle_id"])
			if okD && okV {
				if price, ok := s.wholesalePrice(dealerID, vehicleID); ok {
					d.Set("unit_price", price.String())
				}
			}
		},
		stamp: func(sess dealership.Session, o *models.DealerOrder) {
			o.CreatedBy = sess.UserID
			o.ApprovedBy = nil
		},
		check: func(_ dealership.Session, _ map[string]any, o *models.DealerOrder) error {
			p := problems{}
			if !exists(s.reg.Dealers, o.DealerID) {
				p["dealer_id"] = "does not exist"
			}
			if !exists(s.reg.Vehicles, o.VehicleID) {
				p["vehicle_id"] = "does not exist"
			}
			return p.err("dealer_order")
		},
		status: func(ctx context.Context, sess dealership.Session, id uint, to string) (models.DealerOrder, error) {
			// Dealers place and follow their orders; the manufacturer decides them.
			if sess.Scoped() && to != models.DealerOrderPending {
				return models.DealerOrder{}, errForbidden
			}
			return s.reg.SetDealerOrderStatus(ctx, sess, id, to)
		},
	}
}

// wholesalePrice is the dealer's active wholesale price for the vehicle,
// falling back to the listed price.
func (s *Server) wholesalePrice(dealerID, vehicleID uint) (decimal.Decimal, bool) {
	if p, ok := s.reg.Pricing.Find(func(p models.Pricing) bool {
		return p.DealerID == dealerID && p.VehicleID == vehicleID && p.Status == models.StatusActive
	}); ok {
		return p.WholesalePrice, true
	}
	v, err := s.reg.Vehicles.Get(vehicleID)
	if err != nil {
		return decimal.Zero, false
	}
	return v.ListedPrice, true
}

func (s *Server) debts() *resource[models.Debt, *models.Debt] {
	return &resource[models.Debt, *models.Debt]{
		name:   access.Debts,
		store:  s.reg.Debts,
		schema: dealership.Schemas[access.Debts],
		defaults: func(_ dealership.Session, _ map[string]any, d *form.Draft) {
			d.Set("status", models.DebtCurrent)
			d.Set("paid_amount", "0")
		},
		check: func(_ dealership.Session, _ map[string]any, debt *models.Debt) error {
			p := problems{}
			if !exists(s.reg.Dealers, debt.DealerID) {
				p["dealer_id"] = "does not exist"
			}
			s.checkCustomer(p, debt.CustomerID, debt.DealerID)
			if debt.OrderID != 0 {
				o, err := s.reg.Orders.Get(debt.OrderID)
				switch {
				case err != nil:
					p["order_id"] = "does not exist"
				case o.DealerID != debt.DealerID:
					p["order_id"] = "belongs to another dealer"
				}
			}
			if debt.PaidAmount.GreaterThan(debt.TotalAmount) {
				p["paid_amount"] = "cannot exceed the total amount"
			}
			debt.Reassess(s.reg.Now())
			return p.err("debt")
		},
		status: s.reg.SetDebtStatus,
	}
}

func (s *Server) promotions() *resource[models.Promotion, *models.Promotion] {
	return &resource[models.Promotion, *models.Promotion]{
		name:     access.Promotions,
		store:    s.reg.Promotions,
		schema:   dealership.Schemas[access.Promotions],
		defaults: withStatus(models.StatusActive),
		toggle:   true,
		stamp: func(sess dealership.Session, promo *models.Promotion) {
			promo.CreatedBy = sess.UserID
		},
		check: func(_ dealership.Session, _ map[string]any, promo *models.Promotion) error {
			p := problems{}
			if promo.EndDate.Before(promo.StartDate) {
				p["end_date"] = "must not be before the start date"
			}
			if promo.DealerID != nil && !exists(s.reg.Dealers, *promo.DealerID) {
				p["dealer_id"] = "does not exist"
			}
			for _, id := range promo.VehicleIDs {
				if !exists(s.reg.Vehicles, id) {
					p["vehicle_ids"] = "contains an unknown vehicle " + strconv.FormatUint(uint64(id), 10)
					break
				}
			}
			if promo.DiscountType == models.DiscountPercentage && promo.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
				p["discount_value"] = "must be at most 100 percent"
			}
			return p.err("promotion")
		},
	}
}

func (s *Server) pricing() *resource[models.Pricing, *models.Pricing] {
	return &resource[models.Pricing, *models.Pricing]{
		name:   access.Pricing,
		store:  s.reg.Pricing,
		schema: dealership.Schemas[access.Pricing],
		defaults: func(_ dealership.Session, _ map[string]any, d *form.Draft) {
			d.Set("status", models.StatusActive)
			d.Set("min_order_quantity", 1)
		},
		toggle: true,
		check: func(_ dealership.Session, _ map[string]any, pr *models.Pricing) error {
			p := problems{}
			if !exists(s.reg.Dealers, pr.DealerID) {
				p["dealer_id"] = "does not exist"
			}
			if !exists(s.reg.Vehicles, pr.VehicleID) {
				p["vehicle_id"] = "does not exist"
			}
			if pr.ValidTo.Before(pr.ValidFrom) {
				p["valid_to"] = "must not be before valid_from"
			}
			if pr.WholesalePrice.GreaterThan(pr.RetailPrice) {
				p["wholesale_price"] = "must not exceed the retail price"
			}
			return p.err("pricing")
		},
	}
}

func (s *Server) testDrives() *resource[models.TestDrive, *models.TestDrive] {
	return &resource[models.TestDrive, *models.TestDrive]{
		name:   access.TestDrives,
		store:  s.reg.TestDrives,
		schema: dealership.Schemas[access.TestDrives],
		defaults: func(sess dealership.Session, _ map[string]any, d *form.Draft) {
			d.Set("user_id", sess.UserID)
			d.Set("status", models.TestDriveScheduled)
		},
		check: func(_ dealership.Session, _ map[string]any, td *models.TestDrive) error {
			p := problems{}
			if !exists(s.reg.Vehicles, td.VehicleID) {
				p["vehicle_id"] = "does not exist"
			}
			s.checkCustomer(p, td.CustomerID, td.DealerID)
			return p.err("test_drive")
		},
		status: s.reg.SetTestDriveStatus,
	}
}

func (s *Server) feedbacks() *resource[models.Feedback, *models.Feedback] {
	return &resource[models.Feedback, *models.Feedback]{
		name:   access.Feedbacks,
		store:  s.reg.Feedbacks,
		schema: dealership.Schemas[access.Feedbacks],
		defaults: func(_ dealership.Session, _ map[string]any, d *form.Draft) {
			d.Set("status", models.FeedbackPending)
			d.Set("created_date", s.reg.Now())
		},
		check: func(_ dealership.Session, _ map[string]any, f *models.Feedback) error {
			p := problems{}
			s.checkCustomer(p, f.CustomerID, f.DealerID)
			if f.VehicleID != 0 && !exists(s.reg.Vehicles, f.VehicleID) {
				p["vehicle_id"] = "does not exist"
			}
			return p.err("feedback")
		},
		status: s.reg.SetFeedbackStatus,
	}
}

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ev-dealer-hub/internal/access"
	"ev-dealer-hub/internal/dealership"

	"github.com/google/generative-ai-go/genai"
	"github.com/shopspring/decimal"
)

var declarations = []*genai.FunctionDeclaration{
	{
		Name:        "check_inventory",
		Description: "Get the vehicle catalogue and the stock held by each dealer. Use this to find ANY vehicle details like ID, Name, Price or Stock.",
	},
	{
		Name:        "get_revenue_report",
		Description: "Get sales revenue, collected and outstanding amounts, broken down by dealer.",
	},
	{
		Name:        "list_overdue_debts",
		Description: "List the customer debts that are past their due date and still open.",
	},
	{
		Name:        "update_vehicle_price",
		Description: "Update the listed price of a specific vehicle using its ID",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"vehicle_id": {Type: genai.TypeInteger, Description: "ID of the vehicle"},
				"new_price":  {Type: genai.TypeNumber, Description: "New listed price in VND"},
			},
			Required: []string{"vehicle_id", "new_price"},
		},
	},
}

// toolbox runs the assistant's tools as the signed-in user, so every tool
// sees exactly what that user could see through the API.
type toolbox struct {
	reg  *dealership.Registry
	sess dealership.Session
}

type vehicleRow struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	ListedPrice decimal.Decimal `json:"listed_price"`
}

type stockRow struct {
	DealerID  uint   `json:"dealer_id"`
	VehicleID uint   `json:"vehicle_id"`
	Vehicle   string `json:"vehicle"`
	Available int    `json:"available"`
	Reserved  int    `json:"reserved"`
}

type overdueRow struct {
	ID         uint            `json:"id"`
	DealerID   uint            `json:"dealer_id"`
	CustomerID uint            `json:"customer_id"`
	OrderID    uint            `json:"order_id"`
	Remaining  decimal.Decimal `json:"remaining"`
	DueDate    string          `json:"due_date"`
	DaysLate   int             `json:"days_late"`
}

// run executes one tool call. Failures are reported back to the model
// rather than ending the conversation.
func (t *toolbox) run(ctx context.Context, name string, args map[string]any) map[string]any {
	out, err := t.call(ctx, name, args)
	if err == nil {
		out, err = plain(out)
	}
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return out
}

// plain reduces a result to the JSON types a function response can carry.
func plain(v map[string]any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *toolbox) call(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	switch name {
	case "check_inventory":
		return t.checkInventory(), nil
	case "get_revenue_report":
		return t.revenueReport(), nil
	case "list_overdue_debts":
		return t.overdueDebts(), nil
	case "update_vehicle_price":
		return t.updateVehiclePrice(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool %q", name)
	}
}

func (t *toolbox) checkInventory() map[string]any {
	vehicles := t.reg.Vehicles.List()
	names := make(map[uint]string, len(vehicles))
	catalogue := make([]vehicleRow, 0, len(vehicles))
	for _, v := range vehicles {
		names[v.ID] = v.ModelName
		catalogue = append(catalogue, vehicleRow{ID: v.ID, Name: v.ModelName, Brand: v.Brand, ListedPrice: v.ListedPrice})
	}

	stock := []stockRow{}
	for _, inv := range dealership.Visible(t.sess, t.reg.Inventory.List()) {
		stock = append(stock, stockRow{
			DealerID:  inv.DealerID,
			VehicleID: inv.VehicleID,
			Vehicle:   names[inv.VehicleID],
			Available: inv.AvailableQuantity,
			Reserved:  inv.ReservedQuantity,
		})
	}
	return map[string]any{"vehicles": catalogue, "stock": stock}
}

func (t *toolbox) revenueReport() map[string]any {
	rep := t.reg.Revenue(t.sess)
	return map[string]any{
		"total_revenue":    rep.TotalRevenue,
		"collected":        rep.Collected,
		"outstanding":      rep.Outstanding,
		"orders":           rep.Orders,
		"completed_orders": rep.CompletedOrders,
		"by_dealer":        rep.ByDealer,
	}
}

func (t *toolbox) overdueDebts() map[string]any {
	now := t.reg.Now()
	rows := []overdueRow{}
	for _, d := range dealership.Visible(t.sess, t.reg.Debts.List()) {
		if !d.IsOpen() || !d.IsOverdue(now) {
			continue
		}
		rows = append(rows, overdueRow{
			ID:         d.ID,
			DealerID:   d.DealerID,
			CustomerID: d.CustomerID,
			OrderID:    d.OrderID,
			Remaining:  d.RemainingAmount,
			DueDate:    d.DueDate.Format(time.DateOnly),
			DaysLate:   int(now.Sub(d.DueDate).Hours() / 24),
		})
	}
	return map[string]any{"debts": rows, "count": len(rows)}
}

func (t *toolbox) updateVehiclePrice(ctx context.Context, args map[string]any) (map[string]any, error) {
	if !access.Can(t.sess.Role, access.Vehicles, access.Write) {
		return nil, errors.New("this user may not change vehicle prices")
	}
	id, ok := args["vehicle_id"].(float64)
	if !ok || id <= 0 {
		return nil, errors.New("vehicle_id must be a positive number")
	}
	price, ok := args["new_price"].(float64)
	if !ok || price <= 0 {
		return nil, errors.New("new_price must be greater than 0")
	}

	newPrice := decimal.NewFromFloat(price).Round(2)
	v, err := t.reg.Vehicles.Patch(ctx, uint(id), map[string]any{"listed_price": newPrice})
	if err != nil {
		return nil, err
	}
	return map[string]any{"status": "Success", "vehicle": v.ModelName, "new_price": v.ListedPrice}, nil
}

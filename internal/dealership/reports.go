package dealership

import (
	"sort"

	"ev-dealer-hub/internal/metrics"
	"ev-dealer-hub/internal/models"

	"github.com/shopspring/decimal"
)

// Every report is recomputed from the stores on each call and only covers
// what the session may see.

func orderTotal(o models.Order) decimal.Decimal     { return o.TotalAmount }
func orderPaid(o models.Order) decimal.Decimal      { return o.PaidAmount }
func orderRemaining(o models.Order) decimal.Decimal { return o.RemainingAmount }
func isCompleted(o models.Order) bool               { return o.Status == models.OrderCompleted }
func isCounted(o models.Order) bool                 { return o.Status != models.OrderCancelled }

// countedOrders are the session's orders that were not cancelled.
func (r *Registry) countedOrders(sess Session) []models.Order {
	return metrics.Filter(Visible(sess, r.Orders.List()), isCounted)
}

type Overview struct {
	Dealers         int             `json:"dealers"`
	ActiveDealers   int             `json:"active_dealers"`
	Vehicles        int             `json:"vehicles"`
	ActiveVehicles  int             `json:"active_vehicles"`
	Users           int             `json:"users"`
	Customers       int             `json:"customers"`
	Orders          int             `json:"orders"`
	PendingOrders   int             `json:"pending_orders"`
	DealerOrders    int             `json:"dealer_orders"`
	Revenue         decimal.Decimal `json:"revenue"`
	Collected       decimal.Decimal `json:"collected"`
	OutstandingDebt decimal.Decimal `json:"outstanding_debt"`
	OverdueDebts    int             `json:"overdue_debts"`
	Stock           int             `json:"stock"`
	LowStockItems   int             `json:"low_stock_items"`
}

// Overview is the headline card row of the home dashboard.
func (r *Registry) Overview(sess Session) Overview {
	settings := r.CurrentSettings()
	dealers := r.Dealers.List()
	if sess.Scoped() {
		dealers = metrics.Filter(dealers, func(d models.Dealer) bool { return d.ID == sess.dealerOf() })
	}
	vehicles := r.Vehicles.List()
	orders := r.countedOrders(sess)
	debts := Visible(sess, r.Debts.List())
	stock := Visible(sess, r.Inventory.List())

	isActive := func(status string) bool { return status == models.StatusActive }
	return Overview{
		Dealers:         len(dealers),
		ActiveDealers:   metrics.Count(dealers, func(d models.Dealer) bool { return isActive(d.Status) }),
		Vehicles:        len(vehicles),
		ActiveVehicles:  metrics.Count(vehicles, func(v models.Vehicle) bool { return isActive(v.Status) }),
		Users:           len(Visible(sess, r.Users.List())),
		Customers:       len(Visible(sess, r.Customers.List())),
		Orders:          len(orders),
		PendingOrders:   metrics.Count(orders, func(o models.Order) bool { return o.Status == models.OrderPending }),
		DealerOrders:    len(Visible(sess, r.DealerOrders.List())),
		Revenue:         metrics.Sum(orders, orderTotal),
		Collected:       metrics.Sum(orders, orderPaid),
		OutstandingDebt: metrics.Sum(metrics.Filter(debts, models.Debt.IsOpen), func(d models.Debt) decimal.Decimal { return d.RemainingAmount }),
		OverdueDebts:    metrics.Count(debts, func(d models.Debt) bool { return d.Status == models.DebtOverdue }),
		Stock:           metrics.SumInt(stock, models.Inventory.TotalStock),
		LowStockItems:   metrics.Count(stock, func(i models.Inventory) bool { return i.TotalStock() < settings.LowStockThreshold }),
	}
}

type DealerRevenue struct {
	DealerID   uint            `json:"dealer_id"`
	DealerName string          `json:"dealer_name"`
	Orders     int             `json:"orders"`
	Revenue    decimal.Decimal `json:"revenue"`
	Collected  decimal.Decimal `json:"collected"`
	Share      float64         `json:"share"`
}

type StaffPerformance struct {
	UserID         uint            `json:"user_id"`
	Name           string          `json:"name"`
	Orders         int             `json:"orders"`
	Completed      int             `json:"completed"`
	CompletionRate float64         `json:"completion_rate"`
	Revenue        decimal.Decimal `json:"revenue"`
}

type CustomerRevenue struct {
	CustomerID uint            `json:"customer_id"`
	Name       string          `json:"name"`
	Orders     int             `json:"orders"`
	Revenue    decimal.Decimal `json:"revenue"`
}

type VehicleRevenue struct {
	VehicleID uint            `json:"vehicle_id"`
	ModelName string          `json:"model_name"`
	Units     int             `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type RevenueReport struct {
	TotalRevenue    decimal.Decimal    `json:"total_revenue"`
	Collected       decimal.Decimal    `json:"collected"`
	Outstanding     decimal.Decimal    `json:"outstanding"`
	CollectionRate  float64            `json:"collection_rate"`
	Orders          int                `json:"orders"`
	CompletedOrders int                `json:"completed_orders"`
	CompletionRate  float64            `json:"completion_rate"`
	AverageOrder    float64            `json:"average_order"`
	ByDealer        []DealerRevenue    `json:"by_dealer"`
	ByStaff         []StaffPerformance `json:"by_staff"`
	TopCustomers    []CustomerRevenue  `json:"top_customers"`
	ByVehicle       []VehicleRevenue   `json:"by_vehicle"`
}

// Revenue breaks sales down by dealer, salesperson, customer and vehicle.
func (r *Registry) Revenue(sess Session) RevenueReport {
	orders := r.countedOrders(sess)
	total := metrics.Sum(orders, orderTotal)
	collected := metrics.Sum(orders, orderPaid)
	completed := metrics.Count(orders, isCompleted)

	rep := RevenueReport{
		TotalRevenue:    total,
		Collected:       collected,
		Outstanding:     metrics.Sum(orders, orderRemaining),
		CollectionRate:  metrics.PercentageOf(collected, total),
		Orders:          len(orders),
		CompletedOrders: completed,
		CompletionRate:  metrics.PercentageOfInt(completed, len(orders)),
		AverageOrder:    metrics.Average(orders, orderTotal),
		ByDealer:        []DealerRevenue{},
		ByStaff:         []StaffPerformance{},
		TopCustomers:    []CustomerRevenue{},
		ByVehicle:       []VehicleRevenue{},
	}

	byDealer := metrics.GroupBy(orders, func(o models.Order) uint { return o.DealerID }, orderTotal)
	for _, id := range byDealer.Keys {
		g := byDealer.Get(id)
		rep.ByDealer = append(rep.ByDealer, DealerRevenue{
			DealerID:   id,
			DealerName: r.dealerName(id),
			Orders:     g.Count,
			Revenue:    g.Sum,
			Collected:  metrics.Sum(g.Items, orderPaid),
			Share:      metrics.PercentageOf(g.Sum, total),
		})
	}
	rep.ByDealer = metrics.TopN(rep.ByDealer, func(d DealerRevenue) decimal.Decimal { return d.Revenue }, 0)

	byStaff := metrics.GroupBy(orders, func(o models.Order) uint { return o.UserID }, orderTotal)
	for _, id := range byStaff.Keys {
		g := byStaff.Get(id)
		done := metrics.Count(g.Items, isCompleted)
		rep.ByStaff = append(rep.ByStaff, StaffPerformance{
			UserID:         id,
			Name:           r.userName(id),
			Orders:         g.Count,
			Completed:      done,
			CompletionRate: metrics.PercentageOfInt(done, g.Count),
			Revenue:        g.Sum,
		})
	}
	rep.ByStaff = metrics.TopN(rep.ByStaff, func(s StaffPerformance) decimal.Decimal { return s.Revenue }, 0)

	byCustomer := metrics.GroupBy(orders, func(o models.Order) uint { return o.CustomerID }, orderTotal)
	customers := make([]CustomerRevenue, 0, byCustomer.Len())
	for _, id := range byCustomer.Keys {
		g := byCustomer.Get(id)
		customers = append(customers, CustomerRevenue{CustomerID: id, Name: r.customerName(id), Orders: g.Count, Revenue: g.Sum})
	}
	rep.TopCustomers = metrics.TopN(customers, func(c CustomerRevenue) decimal.Decimal { return c.Revenue }, 5)

	byVehicle := metrics.GroupBy(orders, func(o models.Order) uint { return o.VehicleID }, orderTotal)
	for _, id := range byVehicle.Keys {
		g := byVehicle.Get(id)
		rep.ByVehicle = append(rep.ByVehicle, VehicleRevenue{
			VehicleID: id,
			ModelName: r.vehicleName(id),
			Units:     metrics.SumInt(g.Items, func(o models.Order) int { return o.Quantity }),
			Revenue:   g.Sum,
		})
	}
	rep.ByVehicle = metrics.TopN(rep.ByVehicle, func(v VehicleRevenue) decimal.Decimal { return v.Revenue }, 0)
	return rep
}

type ProductRow struct {
	VehicleID uint            `json:"vehicle_id"`
	ModelName string          `json:"model_name"`
	Brand     string          `json:"brand"`
	UnitsSold int             `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
	Stock     int             `json:"stock"`
	Turnover  float64         `json:"turnover"`
}

type BrandRow struct {
	Brand     string          `json:"brand"`
	Models    int             `json:"models"`
	UnitsSold int             `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
	Stock     int             `json:"stock"`
}

type DealerStockRow struct {
	DealerID   uint            `json:"dealer_id"`
	DealerName string          `json:"dealer_name"`
	UnitsSold  int             `json:"units_sold"`
	Revenue    decimal.Decimal `json:"revenue"`
	Stock      int             `json:"stock"`
}

type StockLevels struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

type ProductReport struct {
	Products    []ProductRow     `json:"products"`
	Brands      []BrandRow       `json:"brands"`
	Dealers     []DealerStockRow `json:"dealers"`
	StockLevels StockLevels      `json:"stock_levels"`
	TopSellers  []ProductRow     `json:"top_sellers"`
}

// Products reports sales and stock per vehicle, computed from real orders
// and stock rows.
func (r *Registry) Products(sess Session) ProductReport {
	settings := r.CurrentSettings()
	orders := r.countedOrders(sess)
	stock := Visible(sess, r.Inventory.List())
	units := func(o models.Order) int { return o.Quantity }

	salesByVehicle := metrics.GroupBy(orders, func(o models.Order) uint { return o.VehicleID }, orderTotal)
	stockByVehicle := metrics.GroupBy(stock, func(i models.Inventory) uint { return i.VehicleID }, nil)

	rep := ProductReport{Products: []ProductRow{}, Brands: []BrandRow{}, Dealers: []DealerStockRow{}}
	for _, v := range r.Vehicles.List() {
		sales := salesByVehicle.Get(v.ID)
		row := ProductRow{
			VehicleID: v.ID,
			ModelName: v.ModelName,
			Brand:     v.Brand,
			UnitsSold: metrics.SumInt(sales.Items, units),
			Revenue:   sales.Sum,
			Stock:     metrics.SumInt(stockByVehicle.Get(v.ID).Items, models.Inventory.TotalStock),
		}
		row.Turnover = metrics.PercentageOfInt(row.UnitsSold, row.Stock)
		rep.Products = append(rep.Products, row)

		switch stockLevel(row.Stock, settings) {
		case "low":
			rep.StockLevels.Low++
		case "high":
			rep.StockLevels.High++
		default:
			rep.StockLevels.Medium++
		}
	}

	byBrand := metrics.GroupBy(rep.Products, func(p ProductRow) string { return p.Brand }, func(p ProductRow) decimal.Decimal { return p.Revenue })
	for _, brand := range byBrand.Keys {
		g := byBrand.Get(brand)
		rep.Brands = append(rep.Brands, BrandRow{
			Brand:     brand,
			Models:    g.Count,
			UnitsSold: metrics.SumInt(g.Items, func(p ProductRow) int { return p.UnitsSold }),
			Revenue:   g.Sum,
			Stock:     metrics.SumInt(g.Items, func(p ProductRow) int { return p.Stock }),
		})
	}

	salesByDealer := metrics.GroupBy(orders, func(o models.Order) uint { return o.DealerID }, orderTotal)
	stockByDealer := metrics.GroupBy(stock, func(i models.Inventory) uint { return i.DealerID }, nil)
	dealerIDs := append([]uint{}, stockByDealer.Keys...)
	for _, id := range salesByDealer.Keys {
		if _, ok := stockByDealer.Buckets[id]; !ok {
			dealerIDs = append(dealerIDs, id)
		}
	}
	sort.Slice(dealerIDs, func(i, j int) bool { return dealerIDs[i] < dealerIDs[j] })
	for _, id := range dealerIDs {
		sales := salesByDealer.Get(id)
		rep.Dealers = append(rep.Dealers, DealerStockRow{
			DealerID:   id,
			DealerName: r.dealerName(id),
			UnitsSold:  metrics.SumInt(sales.Items, units),
			Revenue:    sales.Sum,
			Stock:      metrics.SumInt(stockByDealer.Get(id).Items, models.Inventory.TotalStock),
		})
	}

	rep.TopSellers = metrics.TopN(
		metrics.Filter(rep.Products, func(p ProductRow) bool { return p.UnitsSold > 0 }),
		func(p ProductRow) decimal.Decimal { return decimal.NewFromInt(int64(p.UnitsSold)) }, 5)
	return rep
}

// stockLevel buckets a stock count: below the low threshold is "low",
// above the high threshold is "high".
func stockLevel(stock int, s models.Settings) string {
	switch {
	case stock < s.LowStockThreshold:
		return "low"
	case stock > s.HighStockThreshold:
		return "high"
	}
	return "medium"
}

type InventoryRow struct {
	models.Inventory
	DealerName string `json:"dealer_name"`
	ModelName  string `json:"model_name"`
	TotalStock int    `json:"total_stock"`
	Level      string `json:"level"`
}

type InventorySummary struct {
	Rows      int             `json:"rows"`
	Available int             `json:"available"`
	Reserved  int             `json:"reserved"`
	Total     int             `json:"total"`
	Value     decimal.Decimal `json:"value"`
	Levels    StockLevels     `json:"levels"`
	LowStock  []InventoryRow  `json:"low_stock"`
}

// InventorySummary totals stock and values it at the vehicles' listed prices.
func (r *Registry) InventorySummary(sess Session) InventorySummary {
	settings := r.CurrentSettings()
	stock := Visible(sess, r.Inventory.List())
	rep := InventorySummary{
		Rows:      len(stock),
		Available: metrics.SumInt(stock, func(i models.Inventory) int { return i.AvailableQuantity }),
		Reserved:  metrics.SumInt(stock, func(i models.Inventory) int { return i.ReservedQuantity }),
		Total:     metrics.SumInt(stock, models.Inventory.TotalStock),
		LowStock:  []InventoryRow{},
	}
	rep.Value = metrics.Sum(stock, func(i models.Inventory) decimal.Decimal {
		v, err := r.Vehicles.Get(i.VehicleID)
		if err != nil {
			return decimal.Zero
		}
		return v.ListedPrice.Mul(decimal.NewFromInt(int64(i.TotalStock())))
	})
	for _, i := range stock {
		level := stockLevel(i.TotalStock(), settings)
		switch level {
		case "low":
			rep.Levels.Low++
			rep.LowStock = append(rep.LowStock, InventoryRow{
				Inventory:  i,
				DealerName: r.dealerName(i.DealerID),
				ModelName:  r.vehicleName(i.VehicleID),
				TotalStock: i.TotalStock(),
				Level:      level,
			})
		case "high":
			rep.Levels.High++
		default:
			rep.Levels.Medium++
		}
	}
	return rep
}

type DealerDebt struct {
	DealerID    uint            `json:"dealer_id"`
	DealerName  string          `json:"dealer_name"`
	Debts       int             `json:"debts"`
	Total       decimal.Decimal `json:"total"`
	Paid        decimal.Decimal `json:"paid"`
	Remaining   decimal.Decimal `json:"remaining"`
	PaidPercent float64         `json:"paid_percent"`
}

type DebtSummary struct {
	Debts         int             `json:"debts"`
	Total         decimal.Decimal `json:"total"`
	Paid          decimal.Decimal `json:"paid"`
	Remaining     decimal.Decimal `json:"remaining"`
	PaidPercent   float64         `json:"paid_percent"`
	Current       int             `json:"current"`
	Overdue       int             `json:"overdue"`
	Settled       int             `json:"settled"`
	OverdueAmount decimal.Decimal `json:"overdue_amount"`
	ByDealer      []DealerDebt    `json:"by_dealer"`
}

// DebtSummary totals customer debts. Cancelled debts are left out.
func (r *Registry) DebtSummary(sess Session) DebtSummary {
	debts := metrics.Filter(Visible(sess, r.Debts.List()), func(d models.Debt) bool { return d.Status != models.DebtCancelled })
	total := func(d models.Debt) decimal.Decimal { return d.TotalAmount }
	paid := func(d models.Debt) decimal.Decimal { return d.PaidAmount }
	remaining := func(d models.Debt) decimal.Decimal { return d.RemainingAmount }
	status := func(s string) func(models.Debt) bool {
		return func(d models.Debt) bool { return d.Status == s }
	}

	rep := DebtSummary{
		Debts:         len(debts),
		Total:         metrics.Sum(debts, total),
		Paid:          metrics.Sum(debts, paid),
		Remaining:     metrics.Sum(debts, remaining),
		Current:       metrics.Count(debts, status(models.DebtCurrent)),
		Overdue:       metrics.Count(debts, status(models.DebtOverdue)),
		Settled:       metrics.Count(debts, status(models.DebtPaid)),
		OverdueAmount: metrics.Sum(metrics.Filter(debts, status(models.DebtOverdue)), remaining),
		ByDealer:      []DealerDebt{},
	}
	rep.PaidPercent = metrics.PercentageOf(rep.Paid, rep.Total)

	byDealer := metrics.GroupBy(debts, func(d models.Debt) uint { return d.DealerID }, total)
	for _, id := range byDealer.Keys {
		g := byDealer.Get(id)
		p := metrics.Sum(g.Items, paid)
		rep.ByDealer = append(rep.ByDealer, DealerDebt{
			DealerID:    id,
			DealerName:  r.dealerName(id),
			Debts:       g.Count,
			Total:       g.Sum,
			Paid:        p,
			Remaining:   metrics.Sum(g.Items, remaining),
			PaidPercent: metrics.PercentageOf(p, g.Sum),
		})
	}
	return rep
}

type PricingSummary struct {
	Entries         int     `json:"entries"`
	Active          int     `json:"active"`
	Expired         int     `json:"expired"`
	AverageDiscount float64 `json:"average_discount"`
	AverageMargin   float64 `json:"average_margin"`
	AverageRetail   float64 `json:"average_retail"`
}

// PricingSummary averages the dealers' price lists.
func (r *Registry) PricingSummary(sess Session) PricingSummary {
	now := r.Now()
	prices := Visible(sess, r.Pricing.List())
	return PricingSummary{
		Entries:         len(prices),
		Active:          metrics.Count(prices, func(p models.Pricing) bool { return p.Status == models.StatusActive && !p.IsExpired(now) }),
		Expired:         metrics.Count(prices, func(p models.Pricing) bool { return p.IsExpired(now) }),
		AverageDiscount: metrics.Average(prices, func(p models.Pricing) decimal.Decimal { return p.DiscountRate }),
		AverageMargin:   metrics.Average(prices, func(p models.Pricing) decimal.Decimal { return p.RetailPrice.Sub(p.WholesalePrice) }),
		AverageRetail:   metrics.Average(prices, func(p models.Pricing) decimal.Decimal { return p.RetailPrice }),
	}
}

type PromotionSummary struct {
	Programs   int            `json:"programs"`
	Running    int            `json:"running"`
	Upcoming   int            `json:"upcoming"`
	Expired    int            `json:"expired"`
	Inactive   int            `json:"inactive"`
	ByType     map[string]int `json:"by_type"`
	DealerWide int            `json:"dealer_wide"`
}

// PromotionSummary counts programmes by where they are in their lifetime.
func (r *Registry) PromotionSummary(sess Session) PromotionSummary {
	now := r.Now()
	promos := Visible(sess, r.Promotions.List())
	rep := PromotionSummary{Programs: len(promos), ByType: map[string]int{}}
	for _, p := range promos {
		rep.ByType[p.DiscountType]++
		if p.DealerID == nil {
			rep.DealerWide++
		}
		switch {
		case p.Status != models.StatusActive:
			rep.Inactive++
		case p.IsExpired(now):
			rep.Expired++
		case now.Before(p.StartDate):
			rep.Upcoming++
		default:
			rep.Running++
		}
	}
	return rep
}

type FeedbackSummary struct {
	Total         int            `json:"total"`
	ByStatus      map[string]int `json:"by_status"`
	ByType        map[string]int `json:"by_type"`
	AverageRating float64        `json:"average_rating"`
	ResolvedRate  float64        `json:"resolved_rate"`
}

// FeedbackSummary averages ratings over the feedback that has one.
func (r *Registry) FeedbackSummary(sess Session) FeedbackSummary {
	items := Visible(sess, r.Feedbacks.List())
	rated := metrics.Filter(items, func(f models.Feedback) bool { return f.Rating > 0 })
	rep := FeedbackSummary{
		Total:         len(items),
		ByStatus:      map[string]int{},
		ByType:        map[string]int{},
		AverageRating: metrics.Average(rated, func(f models.Feedback) decimal.Decimal { return decimal.NewFromInt(int64(f.Rating)) }),
	}
	for _, f := range items {
		rep.ByStatus[f.Status]++
		rep.ByType[f.Type]++
	}
	rep.ResolvedRate = metrics.PercentageOfInt(rep.ByStatus[models.FeedbackResolved], rep.Total)
	return rep
}

type PersonalReport struct {
	Orders              int             `json:"orders"`
	CompletedOrders     int             `json:"completed_orders"`
	Revenue             decimal.Decimal `json:"revenue"`
	Collected           decimal.Decimal `json:"collected"`
	Customers           int             `json:"customers"`
	TestDrives          int             `json:"test_drives"`
	CompletedTestDrives int             `json:"completed_test_drives"`
	RecentOrders        []models.Order  `json:"recent_orders"`
}

// Personal reports the signed-in salesperson's own figures.
func (r *Registry) Personal(sess Session) PersonalReport {
	mine := metrics.Filter(r.countedOrders(sess), func(o models.Order) bool { return o.UserID == sess.UserID })
	drives := metrics.Filter(Visible(sess, r.TestDrives.List()), func(t models.TestDrive) bool { return t.UserID == sess.UserID })
	customers := metrics.GroupBy(mine, func(o models.Order) uint { return o.CustomerID }, nil)
	recent := metrics.TopN(mine, func(o models.Order) decimal.Decimal {
		return decimal.NewFromInt(o.OrderDate.Unix())
	}, 5)

	return PersonalReport{
		Orders:              len(mine),
		CompletedOrders:     metrics.Count(mine, isCompleted),
		Revenue:             metrics.Sum(mine, orderTotal),
		Collected:           metrics.Sum(mine, orderPaid),
		Customers:           customers.Len(),
		TestDrives:          len(drives),
		CompletedTestDrives: metrics.Count(drives, func(t models.TestDrive) bool { return t.Status == models.TestDriveCompleted }),
		RecentOrders:        recent,
	}
}

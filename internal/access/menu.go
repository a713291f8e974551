package access

import "ev-dealer-hub/internal/models"

// MenuItem is one sidebar entry.
type MenuItem struct {
	Label    string   `json:"label"`
	Icon     string   `json:"icon"`
	Path     string   `json:"path"`
	Resource Resource `json:"resource,omitempty"`
}

var common = []MenuItem{
	{Label: "Home", Icon: "🏠", Path: "/dashboard"},
	{Label: "Profile", Icon: "👤", Path: "/dashboard/profile"},
}

var menus = map[models.Role][]MenuItem{
	models.RoleAdmin: {
		{Label: "Dealer Management", Icon: "🏢", Path: "/dashboard/dealers", Resource: Dealers},
		{Label: "Product Management", Icon: "🚗", Path: "/dashboard/vehicles", Resource: Vehicles},
		{Label: "User Management", Icon: "👥", Path: "/dashboard/users", Resource: Users},
		{Label: "Overall Reports", Icon: "📊", Path: "/dashboard/reports", Resource: Reports},
		{Label: "System Settings", Icon: "⚙️", Path: "/dashboard/settings", Resource: Settings},
	},
	models.RoleEVMStaff: {
		{Label: "Product Management", Icon: "🚗", Path: "/dashboard/vehicles", Resource: Vehicles},
		{Label: "Inventory Management", Icon: "📦", Path: "/dashboard/inventory", Resource: Inventory},
		{Label: "Dealer Management", Icon: "🏢", Path: "/dashboard/dealers", Resource: Dealers},
		{Label: "Dealer Orders", Icon: "📋", Path: "/dashboard/orders", Resource: DealerOrders},
		{Label: "Pricing", Icon: "🏷️", Path: "/dashboard/pricing", Resource: Pricing},
		{Label: "Promotions", Icon: "🎁", Path: "/dashboard/promotions", Resource: Promotions},
		{Label: "Dealer Debts", Icon: "💳", Path: "/dashboard/debts", Resource: Debts},
		{Label: "Product Reports", Icon: "📊", Path: "/dashboard/reports", Resource: Reports},
	},
	models.RoleDealerManager: {
		{Label: "Sales Management", Icon: "💰", Path: "/dashboard/sales", Resource: Orders},
		{Label: "Customer Management", Icon: "👥", Path: "/dashboard/customers", Resource: Customers},
		{Label: "Staff Management", Icon: "👨‍💼", Path: "/dashboard/staff", Resource: Users},
		{Label: "Revenue Reports", Icon: "📊", Path: "/dashboard/reports", Resource: Reports},
		{Label: "Inventory Management", Icon: "📦", Path: "/dashboard/inventory", Resource: Inventory},
	},
	models.RoleDealerStaff: {
		{Label: "Sales", Icon: "💰", Path: "/dashboard/sales", Resource: Orders},
		{Label: "Customers", Icon: "👥", Path: "/dashboard/customers", Resource: Customers},
		{Label: "Products", Icon: "🚗", Path: "/dashboard/vehicles", Resource: Vehicles},
		{Label: "Test Drives", Icon: "🚙", Path: "/dashboard/test-drives", Resource: TestDrives},
		{Label: "Feedback", Icon: "💬", Path: "/dashboard/feedback", Resource: Feedbacks},
		{Label: "Promotions", Icon: "🎁", Path: "/dashboard/promotions", Resource: Promotions},
		{Label: "Personal Reports", Icon: "📊", Path: "/dashboard/reports", Resource: Reports},
	},
}

// Menu returns the sidebar for role: the shared entries, then the role's own.
// Unknown roles get the shared entries only.
func Menu(role models.Role) []MenuItem {
	items := make([]MenuItem, 0, len(common)+len(menus[role]))
	items = append(items, common...)
	return append(items, menus[role]...)
}

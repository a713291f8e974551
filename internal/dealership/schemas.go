package dealership

import (
	"ev-dealer-hub/internal/access"
	"ev-dealer-hub/internal/form"
	"ev-dealer-hub/internal/models"
)

var (
	activeOptions = []string{models.StatusActive, models.StatusInactive}
	roleOptions   = []string{
		string(models.RoleAdmin), string(models.RoleEVMStaff),
		string(models.RoleDealerManager), string(models.RoleDealerStaff),
	}
)

// ProfileSchema is the part of their own user record anyone may edit.
var ProfileSchema = &form.Schema{
	Entity: "user",
	Fields: []form.Field{
		{Name: "full_name", Kind: form.String, Required: true, Rules: "min=2,max=120"},
		{Name: "email", Kind: form.String, Rules: "email"},
		{Name: "phone", Kind: form.String, Rules: "max=30"},
		{Name: "address", Kind: form.String, Rules: "max=255"},
	},
}

// Schemas are the record forms of every editable resource.
var Schemas = map[access.Resource]*form.Schema{
	access.Users: {
		Entity: "user",
		Fields: []form.Field{
			{Name: "username", Kind: form.String, Required: true, Rules: "min=3,max=50"},
			{Name: "password", Kind: form.String, Required: true, Rules: "min=6,max=72"},
			{Name: "email", Kind: form.String, Rules: "email"},
			{Name: "full_name", Kind: form.String, Required: true, Rules: "max=120"},
			{Name: "phone", Kind: form.String, Rules: "max=30"},
			{Name: "address", Kind: form.String, Rules: "max=255"},
			{Name: "role", Kind: form.Enum, Required: true, Options: roleOptions},
			{Name: "dealer_id", Kind: form.Int, Nullable: true, Rules: "gt=0"},
			{Name: "status", Kind: form.Enum, Options: activeOptions},
		},
	},
	access.Dealers: {
		Entity: "dealer",
		Fields: []form.Field{
			{Name: "name", Kind: form.String, Required: true, Rules: "min=2,max=120"},
			{Name: "address", Kind: form.String, Required: true, Rules: "max=255"},
			{Name: "phone", Kind: form.String, Required: true, Rules: "min=8,max=30"},
			{Name: "representative_name", Kind: form.String, Rules: "max=120"},
			{Name: "region", Kind: form.Enum, Required: true, Options: []string{models.RegionNorth, models.RegionCentral, models.RegionSouth}},
			{Name: "status", Kind: form.Enum, Options: activeOptions},
		},
	},
	access.VehicleTypes: {
		Entity: "vehicle_type",
		Fields: []form.Field{
			{Name: "type_name", Kind: form.String, Required: true, Rules: "max=60"},
			{Name: "description", Kind: form.String, Rules: "max=255"},
			{Name: "status", Kind: form.Enum, Options: activeOptions},
		},
	},
	access.Vehicles: {
		Entity: "vehicle",
		Fields: []form.Field{
			{Name: "model_name", Kind: form.String, Required: true, Rules: "max=120"},
			{Name: "brand", Kind: form.String, Required: true, Rules: "max=60"},
			{Name: "year", Kind: form.Int, Required: true, Rules: "gte=2000,lte=2100"},
			{Name: "vehicle_type_id", Kind: form.Int, Required: true, Rules: "gt=0"},
			{Name: "version", Kind: form.String, Rules: "max=60"},
			{Name: "battery_capacity", Kind: form.Decimal, Rules: "gt=0"},
			{Name: "listed_price", Kind: form.Decimal, Required: true, Rules: "gt=0"},
			{Name: "available_colors", Kind: form.StringList},
			{Name: "specifications", Kind: form.Object},
			{Name: "status", Kind: form.Enum, Options: activeOptions},
		},
	},
	access.Inventory: {
		Entity: "inventory",
		Fields: []form.Field{
			{Name: "dealer_id", Kind: form.Int, Required: true, Rules: "gt=0"},
			{Name: "vehicle_id", Kind: form.Int, Required: true, Rules: "gt=0"},
			{Name: "available_quantity", Kind: form.Int, Required: true, Rules: "gte=0"},
			{Name: "reserved_quantity", Kind: form.Int, Rules: "gte=0"},
		},
	},
	access.Customers: {
		Entity: "customer",
		Fields: []form.Field{
			{Name: "full_name", Kind: form.String, Required: true, Rules: "min=2,max=120"},
			{Name: "phone", Kind: form.String, Required: true, Rules: "min=8,max=30"},
			{Name: "email", Kind: form.String, Rules: "email"},
			{Name: "citizen_id", Kind: form.String, Rules: "max=30"},
			{Name: "dealer_id", Kind: form.Int, Required: true, Rules: "gt=0"},
		},
	},
	access.Orders: {
		Entity: "order",
		Fields: []form.Field{
			{Name: "customer_id", Kind: form.Int, Required: true, Rules: "gt=0"},
			{Name: "dealer_id", Kind: form.Int, Required: true, Rules: "gt=0"},
			{Name: "vehicle_id", Kind: form.Int, Required: true, Rules: "gt=0"},
			{Name: "user_id", Kind: form.Int, Rules: "gt=0"},
			{Name: "quantity", Kind: form.Int, Required: true, Rules: "gte=1"},
			{Name: "unit_price", Kind: form.Decimal, Required: true, Rules: "gte=0"},
			{Name: "total_amount", Kind: form.Decimal, Rules: "gte=0"},
			{Name: "paid_amount", Kind: form.Decimal, Rules: "gte=0"},
			{Name: "remaining_amount", Kind: form.Decimal, Rules: "gte=0"},
			{Name: "payment_method", Kind: form.Enum, Required: true, Options: []string{models.PaymentCash, models.PaymentInstallment, models.PaymentBankTransfer}},
			{Name: "status", Kind: form.Enum, Options: []string{models.OrderPending, models.OrderProcessing, models.OrderCompleted, models.OrderCancelled}},
			{Name: "order_date", Kind: form.Date},
			{Name: "notes", Kind: form.String},
		},
		Derivations: []form.Derivation{
			form.Product("total_amount", "quantity", "unit_price"),
			form.Difference("remaining_amount", "total_amount", "paid_amount"),
		},
	},
	access.DealerOrders: {
		Entity: "dealer_order",
		Fields: []form.Field{
			{Name: "dealer_id", Kind: form.Int, Required: true, Rules: "gt=0"},
			{Name: "vehicle_id", Kind: form.Int, Required: true, Rules: "gt=0"},
			{Name: "quantity", Kind: form.Int, Required: true, Rules: "gte=1"},
			{Name: "unit_price", Kind: form.Decimal, Required: true, Rules: "gte=0"},
			{Name: "total_amount", Kind: form.Decimal, Rules: "gte=0"},
			{Name: "order_date", Kind: form.Date},
			{Name: "delivery_date", Kind: form.Date, Nullable: true},
			{Name: "status", Kind: form.Enum, Options: []string{models.DealerOrderPending, models.DealerOrderApproved, models.DealerOrderDelivered, models.DealerOrderRejected}},
			{Name: "notes", Kind: form.String},
		},
		Derivations: []form.Derivation{
			form.Product("total_amount", "quantity", "unit_price"),
		},
	},
	access.Debts: {
		Entity: "debt",
		Fields: []form.Field{
			{Name: "dealer_id", Kind: form.Int, Required: true, Rules: "gt=0"},
			{Name: "customer_id", Kind: form.Int, Required: true, Rules: "gt=0"},
			{Name: "order_id", Kind: form.Int, Rules: "gt=0"},
			{Name: "total_amount", Kind: form.Decimal, Required: true, Rules: "gt=0"},
			{Name: "paid_amount", Kind: form.Decimal, Rules: "gte=0"},
			{Name: "remaining_amount", Kind: form.Decimal, Rules: "gte=0"},
			{Name: "due_date", Kind: form.Date, Required: true},
			{Name: "status", Kind: form.Enum, Options: []string{models.DebtCurrent, models.DebtOverdue, models.DebtPaid, models.DebtCancelled}},
			{Name: "payment_schedule", Kind: form.String, Rules: "max=20"},
			{Name: "installments_remaining", Kind: form.Int, Rules: "gte=0"},
		},
		Derivations: []form.Derivation{
			form.Difference("remaining_amount", "total_amount", "paid_amount"),
		},
	},
	access.Promotions: {
		Entity: "promotion",
		Fields: []form.Field{
			{Name: "program_name", Kind: form.String, Required: true, Rules: "max=160"},
			{Name: "description", Kind: form.String},
			{Name: "conditions", Kind: form.String},
			{Name: "discount_type", Kind: form.Enum, Required: true, Options: []string{models.DiscountPercentage, models.DiscountFixed}},
			{Name: "discount_value", Kind: form.Decimal, Required: true, Rules: "gt=0"},
			{Name: "start_date", Kind: form.Date, Required: true},
			{Name: "end_date", Kind: form.Date, Required: true},
			{Name: "dealer_id", Kind: form.Int, Nullable: true, Rules: "gt=0"},
			{Name: "vehicle_ids", Kind: form.IDList},
			{Name: "status", Kind: form.Enum, Options: activeOptions},
		},
	},
	access.Pricing: {
		Entity: "pricing",
		Fields: []form.Field{
			{Name: "vehicle_id", Kind: form.Int, Required: true, Rules: "gt=0"},
			{Name: "dealer_id", Kind: form.Int, Required: true, Rules: "gt=0"},
			{Name: "wholesale_price", Kind: form.Decimal, Required: true, Rules: "gt=0"},
			{Name: "retail_price", Kind: form.Decimal, Required: true, Rules: "gt=0"},
			{Name: "discount_rate", Kind: form.Decimal},
			{Name: "min_order_quantity", Kind: form.Int, Rules: "gte=1"},
			{Name: "valid_from", Kind: form.Date, Required: true},
			{Name: "valid_to", Kind: form.Date, Required: true},
			{Name: "status", Kind: form.Enum, Options: activeOptions},
		},
		Derivations: []form.Derivation{
			form.DiscountRate("discount_rate", "retail_price", "wholesale_price"),
		},
	},
	access.TestDrives: {
		Entity: "test_drive",
		Fields: []form.Field{
			{Name: "customer_id", Kind: form.Int, Required: true, Rules: "gt=0"},
			{Name: "vehicle_id", Kind: form.Int, Required: true, Rules: "gt=0"},
			{Name: "dealer_id", Kind: form.Int, Required: true, Rules: "gt=0"},
			{Name: "user_id", Kind: form.Int, Rules: "gt=0"},
			{Name: "vin", Kind: form.String, Rules: "max=40"},
			{Name: "scheduled_at", Kind: form.Date, Required: true},
			{Name: "location", Kind: form.String, Rules: "max=160"},
			{Name: "status", Kind: form.Enum, Options: []string{models.TestDriveScheduled, models.TestDriveInProgress, models.TestDriveCompleted, models.TestDriveCancelled}},
			{Name: "result", Kind: form.String},
			{Name: "notes", Kind: form.String},
		},
	},
	access.Feedbacks: {
		Entity: "feedback",
		Fields: []form.Field{
			{Name: "customer_id", Kind: form.Int, Required: true, Rules: "gt=0"},
			{Name: "dealer_id", Kind: form.Int, Required: true, Rules: "gt=0"},
			{Name: "vehicle_id", Kind: form.Int, Rules: "gt=0"},
			{Name: "type", Kind: form.Enum, Required: true, Options: []string{models.FeedbackComplaint, models.FeedbackGeneral, models.FeedbackSuggestion}},
			{Name: "title", Kind: form.String, Required: true, Rules: "max=200"},
			{Name: "content", Kind: form.String, Required: true},
			{Name: "rating", Kind: form.Int, Rules: "gte=1,lte=5"},
			{Name: "status", Kind: form.Enum, Options: []string{models.FeedbackPending, models.FeedbackProcessing, models.FeedbackResolved}},
			{Name: "created_date", Kind: form.Date},
		},
	},
	access.Settings: {
		Entity: "settings",
		Fields: []form.Field{
			{Name: "site_name", Kind: form.String, Required: true, Rules: "max=120"},
			{Name: "site_description", Kind: form.String, Rules: "max=255"},
			{Name: "admin_email", Kind: form.String, Rules: "email"},
			{Name: "support_phone", Kind: form.String, Rules: "max=30"},
			{Name: "currency", Kind: form.String, Required: true, Rules: "len=3"},
			{Name: "timezone", Kind: form.String, Required: true},
			{Name: "maintenance_mode", Kind: form.Bool},
			{Name: "session_timeout_minutes", Kind: form.Int, Rules: "gte=5,lte=10080"},
			{Name: "low_stock_threshold", Kind: form.Int, Rules: "gte=0"},
			{Name: "high_stock_threshold", Kind: form.Int, Rules: "gte=0"},
			{Name: "password_min_length", Kind: form.Int, Rules: "gte=6,lte=72"},
			{Name: "password_require_number", Kind: form.Bool},
			{Name: "password_require_special", Kind: form.Bool},
			{Name: "max_login_attempts", Kind: form.Int, Rules: "gte=0,lte=20"},
			{Name: "lockout_minutes", Kind: form.Int, Rules: "gte=1,lte=1440"},
		},
	},
}

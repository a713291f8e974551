package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ev-dealer-hub/internal/auth"
	"ev-dealer-hub/internal/dealership"
	"ev-dealer-hub/internal/fixtures"
	"ev-dealer-hub/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
	auth.PasswordCost = bcrypt.MinCost
}

var testNow = time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)

// Seeded user ids.
const (
	adminID   uint = 1
	evmID     uint = 2
	managerID uint = 3
	staffID   uint = 4
	staff2ID  uint = 5
)

type testEnv struct {
	t      *testing.T
	router *gin.Engine
	reg    *dealership.Registry
	issuer *auth.Issuer
}

func newTestEnv(t *testing.T, assistant Assistant) *testEnv {
	t.Helper()
	reg := dealership.NewRegistry()
	reg.Now = func() time.Time { return testNow }
	if err := fixtures.Seed(reg, ""); err != nil {
		t.Fatalf("seed: %v", err)
	}
	issuer := auth.NewIssuer("test-secret")
	srv := NewServer(reg, issuer, assistant)
	return &testEnv{t: t, router: srv.Router([]string{"http://localhost:5173"}), reg: reg, issuer: issuer}
}

func (e *testEnv) token(userID uint) string {
	e.t.Helper()
	tok, err := e.issuer.GenerateToken(auth.Claims{UserID: userID}, time.Hour)
	if err != nil {
		e.t.Fatal(err)
	}
	return tok
}

// do sends body as JSON on behalf of userID; 0 sends no token.
func (e *testEnv) do(method, path string, userID uint, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			e.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer "+e.token(userID))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return out
}

type errorBody struct {
	Error     string            `json:"error"`
	Fields    map[string]string `json:"fields"`
	RequestID string            `json:"request_id"`
}

func money(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	w := env.do(http.MethodGet, "/health", 0, nil)
	expectStatus(t, w, http.StatusOK)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/login", 0, gin.H{"username": "staff", "password": "staff123"})
	expectStatus(t, w, http.StatusOK)
	resp := decodeBody[LoginResponse](t, w)
	if resp.Token == "" || resp.Role != models.RoleDealerStaff || resp.DealerID == nil || *resp.DealerID != 1 {
		t.Fatalf("unexpected login response %+v", resp)
	}
	if len(resp.Menu) == 0 || resp.Menu[0].Label != "Home" {
		t.Errorf("expected the staff menu, got %+v", resp.Menu)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	me := httptest.NewRecorder()
	env.router.ServeHTTP(me, req)
	expectStatus(t, me, http.StatusOK)

	tests := []struct {
		name string
		body gin.H
		want int
	}{
		{"wrong password", gin.H{"username": "staff", "password": "nope"}, http.StatusUnauthorized},
		{"unknown user", gin.H{"username": "ghost", "password": "staff123"}, http.StatusUnauthorized},
		{"missing password", gin.H{"username": "staff"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, env.do(http.MethodPost, "/login", 0, tt.body), tt.want)
		})
	}
}

func TestLogin_DisabledAccount(t *testing.T) {
	env := newTestEnv(t, nil)
	expectStatus(t, env.do(http.MethodPost, "/api/users/5/toggle", adminID, nil), http.StatusOK)

	w := env.do(http.MethodPost, "/login", 0, gin.H{"username": "staff2", "password": "staff123"})
	expectStatus(t, w, http.StatusForbidden)

	// tokens issued before the account was disabled stop working too
	expectStatus(t, env.do(http.MethodGet, "/api/me", staff2ID, nil), http.StatusUnauthorized)
}

func TestRoleCapabilities(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		user   uint
		body   any
		want   int
	}{
		{"no token", http.MethodGet, "/api/vehicles", 0, nil, http.StatusUnauthorized},
		{"staff reads vehicles", http.MethodGet, "/api/vehicles", staffID, nil, http.StatusOK},
		{"staff cannot read dealers", http.MethodGet, "/api/dealers", staffID, nil, http.StatusForbidden},
		{"staff cannot edit vehicles", http.MethodPatch, "/api/vehicles/1", staffID, gin.H{"year": 2025}, http.StatusForbidden},
		{"admin cannot create orders", http.MethodPost, "/api/orders", adminID, gin.H{}, http.StatusForbidden},
		{"evm edits vehicles", http.MethodPatch, "/api/vehicles/1", evmID, gin.H{"year": 2025}, http.StatusOK},
		{"ask is admin only", http.MethodPost, "/api/ask", managerID, gin.H{"message": "hi"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, env.do(tt.method, tt.path, tt.user, tt.body), tt.want)
		})
	}
}

func TestList_ScopedToDealer(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodGet, "/api/orders", staff2ID, nil)
	expectStatus(t, w, http.StatusOK)
	orders := decodeBody[[]models.Order](t, w)
	if len(orders) != 1 || orders[0].DealerID != 2 {
		t.Fatalf("expected only dealer 2's order, got %+v", orders)
	}

	w = env.do(http.MethodGet, "/api/orders/1", staff2ID, nil)
	expectStatus(t, w, http.StatusNotFound)

	w = env.do(http.MethodGet, "/api/users", managerID, nil)
	expectStatus(t, w, http.StatusOK)
	for _, u := range decodeBody[[]models.User](t, w) {
		if u.DealerID == nil || *u.DealerID != 1 {
			t.Errorf("manager should only see dealer 1 staff, saw %+v", u)
		}
	}
}

func TestCreateOrder_QuotesAndDerives(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/orders", staffID, gin.H{
		"customer_id":    1,
		"vehicle_id":     1,
		"quantity":       2,
		"payment_method": models.PaymentCash,
	})
	expectStatus(t, w, http.StatusCreated)
	o := decodeBody[models.Order](t, w)

	// retail 1.5B at dealer 1, best promotion 10% off
	if o.ID != 4 || o.DealerID != 1 || o.UserID != staffID || o.Status != models.OrderPending {
		t.Fatalf("unexpected order %+v", o)
	}
	if !o.UnitPrice.Equal(money(1_350_000_000)) || !o.TotalAmount.Equal(money(2_700_000_000)) || !o.RemainingAmount.Equal(o.TotalAmount) {
		t.Errorf("unexpected amounts unit=%s total=%s remaining=%s", o.UnitPrice, o.TotalAmount, o.RemainingAmount)
	}
	if !o.OrderDate.Equal(testNow) {
		t.Errorf("expected order date %v, got %v", testNow, o.OrderDate)
	}
}

func TestCreate_ReportsEveryInvalidField(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/orders", staffID, gin.H{"quantity": 0, "nickname": "x"})
	expectStatus(t, w, http.StatusUnprocessableEntity)
	body := decodeBody[errorBody](t, w)
	for _, field := range []string{"customer_id", "vehicle_id", "quantity", "payment_method", "nickname"} {
		if _, ok := body.Fields[field]; !ok {
			t.Errorf("expected a message for %s, got %v", field, body.Fields)
		}
	}
	if body.RequestID == "" {
		t.Errorf("expected the request id in the error body")
	}
}

func TestCreate_OwnDealerOnly(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/customers", staffID, gin.H{
		"full_name": "Pham Van Moi",
		"phone":     "0909999888",
		"dealer_id": 2,
	})
	expectStatus(t, w, http.StatusUnprocessableEntity)
	if body := decodeBody[errorBody](t, w); body.Fields["dealer_id"] == "" {
		t.Errorf("expected a dealer_id message, got %+v", body)
	}

	w = env.do(http.MethodPost, "/api/customers", staffID, gin.H{"full_name": "Pham Van Moi", "phone": "0909999888"})
	expectStatus(t, w, http.StatusCreated)
	if c := decodeBody[models.Customer](t, w); c.DealerID != 1 || c.ID != 4 {
		t.Errorf("expected the customer at dealer 1 with id 4, got %+v", c)
	}
}

func TestPatchOrder_RecomputesDerivedFields(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPatch, "/api/orders/2", managerID, gin.H{"quantity": 2})
	expectStatus(t, w, http.StatusOK)
	o := decodeBody[models.Order](t, w)
	if !o.TotalAmount.Equal(money(3_600_000_000)) || !o.RemainingAmount.Equal(money(2_700_000_000)) {
		t.Errorf("unexpected totals %s / %s", o.TotalAmount, o.RemainingAmount)
	}
	if o.Notes != "50% paid" {
		t.Errorf("untouched fields must survive a patch, got notes %q", o.Notes)
	}

	w = env.do(http.MethodPatch, "/api/orders/2", managerID, gin.H{"payment_method": "barter"})
	expectStatus(t, w, http.StatusUnprocessableEntity)
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t, nil)

	expectStatus(t, env.do(http.MethodDelete, "/api/customers/3", managerID, nil), http.StatusNotFound)
	expectStatus(t, env.do(http.MethodDelete, "/api/customers/2", managerID, nil), http.StatusNoContent)
	expectStatus(t, env.do(http.MethodGet, "/api/customers/2", managerID, nil), http.StatusNotFound)
	expectStatus(t, env.do(http.MethodDelete, "/api/customers/abc", managerID, nil), http.StatusBadRequest)
}

func TestStatusTransitions(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/test-drives/1/status", staffID, gin.H{"status": models.TestDriveCompleted})
	expectStatus(t, w, http.StatusConflict)

	w = env.do(http.MethodPost, "/api/test-drives/1/status", staffID, gin.H{"status": models.TestDriveInProgress})
	expectStatus(t, w, http.StatusOK)

	w = env.do(http.MethodPost, "/api/feedbacks/1/status", staffID, gin.H{"status": models.FeedbackProcessing})
	expectStatus(t, w, http.StatusOK)
	w = env.do(http.MethodPost, "/api/feedbacks/1/status", staffID, gin.H{"status": models.FeedbackResolved})
	expectStatus(t, w, http.StatusOK)
	f := decodeBody[models.Feedback](t, w)
	if f.ResolvedBy == nil || *f.ResolvedBy != staffID || f.ResolvedDate == nil {
		t.Errorf("expected the resolver to be stamped, got %+v", f)
	}

	expectStatus(t, env.do(http.MethodPost, "/api/orders/1/status", staffID, gin.H{}), http.StatusBadRequest)
}

func TestDealerOrderDecisionsBelongToTheManufacturer(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/dealer-orders/1/status", managerID, gin.H{"status": models.DealerOrderApproved})
	expectStatus(t, w, http.StatusForbidden)

	w = env.do(http.MethodPost, "/api/dealer-orders/1/status", evmID, gin.H{"status": models.DealerOrderApproved})
	expectStatus(t, w, http.StatusOK)
	if o := decodeBody[models.DealerOrder](t, w); o.ApprovedBy == nil || *o.ApprovedBy != evmID {
		t.Errorf("expected approved_by %d, got %+v", evmID, o.ApprovedBy)
	}

	w = env.do(http.MethodPost, "/api/dealer-orders/2/status", evmID, gin.H{"status": models.DealerOrderDelivered})
	expectStatus(t, w, http.StatusOK)
	inv, _ := env.reg.Inventory.Get(2)
	if inv.AvailableQuantity != 6 {
		t.Errorf("expected 3 delivered units on top of 3, got %d", inv.AvailableQuantity)
	}
}

func TestCreateDealerOrder_UsesWholesalePrice(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/dealer-orders", managerID, gin.H{"vehicle_id": 2, "quantity": 2})
	expectStatus(t, w, http.StatusCreated)
	o := decodeBody[models.DealerOrder](t, w)
	if o.DealerID != 1 || o.CreatedBy != managerID || o.Status != models.DealerOrderPending {
		t.Fatalf("unexpected dealer order %+v", o)
	}
	if !o.UnitPrice.Equal(money(1_700_000_000)) || !o.TotalAmount.Equal(money(3_400_000_000)) {
		t.Errorf("unexpected amounts %s / %s", o.UnitPrice, o.TotalAmount)
	}
}

func TestPayments(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/orders/2/payments", staffID, gin.H{"amount": 1_000_000_000})
	expectStatus(t, w, http.StatusUnprocessableEntity)

	w = env.do(http.MethodPost, "/api/orders/2/payments", staffID, gin.H{"amount": 900_000_000})
	expectStatus(t, w, http.StatusOK)
	res := decodeBody[dealership.PaymentResult](t, w)
	if res.Order == nil || res.Order.Status != models.OrderCompleted || !res.Order.RemainingAmount.IsZero() {
		t.Fatalf("expected the order to be completed, got %+v", res.Order)
	}
	if len(res.Debts) != 1 || res.Debts[0].Status != models.DebtPaid {
		t.Errorf("expected the linked debt to be paid, got %+v", res.Debts)
	}

	w = env.do(http.MethodPost, "/api/debts/1/payments", staffID, gin.H{"amount": 100_000_000})
	expectStatus(t, w, http.StatusForbidden)

	w = env.do(http.MethodPost, "/api/debts/1/payments", managerID, gin.H{"amount": 100_000_000})
	expectStatus(t, w, http.StatusOK)
	order, _ := env.reg.Orders.Get(1)
	if !order.PaidAmount.Equal(money(600_000_000)) {
		t.Errorf("a debt payment must pay the order down, paid is %s", order.PaidAmount)
	}
}

func TestRefreshDebts(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/debts/refresh", managerID, nil)
	expectStatus(t, w, http.StatusOK)
	body := decodeBody[struct {
		Updated []models.Debt `json:"updated"`
	}](t, w)
	if len(body.Updated) != 1 || body.Updated[0].ID != 1 || body.Updated[0].Status != models.DebtCurrent {
		t.Errorf("expected debt 1 back to current, got %+v", body.Updated)
	}
}

func TestReserveStock(t *testing.T) {
	env := newTestEnv(t, nil)

	expectStatus(t, env.do(http.MethodPost, "/api/inventory/1/reserve", managerID, gin.H{"quantity": 10}), http.StatusConflict)

	w := env.do(http.MethodPost, "/api/inventory/1/reserve", managerID, gin.H{"quantity": 2})
	expectStatus(t, w, http.StatusOK)
	inv := decodeBody[models.Inventory](t, w)
	if inv.AvailableQuantity != 3 || inv.ReservedQuantity != 4 || !inv.LastUpdated.Equal(testNow) {
		t.Errorf("unexpected stock row %+v", inv)
	}

	w = env.do(http.MethodPost, "/api/inventory", managerID, gin.H{"vehicle_id": 1, "available_quantity": 1})
	expectStatus(t, w, http.StatusUnprocessableEntity)
}

func TestUsers(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/users", adminID, gin.H{
		"username": "staff", "password": "secret1", "full_name": "Dup", "role": "dealer_staff", "dealer_id": 1,
	})
	expectStatus(t, w, http.StatusUnprocessableEntity)
	if body := decodeBody[errorBody](t, w); body.Fields["username"] == "" {
		t.Errorf("expected a duplicate username message, got %+v", body)
	}

	w = env.do(http.MethodPost, "/api/users", managerID, gin.H{
		"username": "boss", "password": "secret1", "full_name": "Not Allowed", "role": "admin",
	})
	expectStatus(t, w, http.StatusUnprocessableEntity)

	w = env.do(http.MethodPost, "/api/users", managerID, gin.H{
		"username": "newbie", "password": "secret1", "full_name": "New Staff", "role": "dealer_staff",
	})
	expectStatus(t, w, http.StatusCreated)
	created := decodeBody[models.User](t, w)
	if created.DealerID == nil || *created.DealerID != 1 || created.Status != models.StatusActive {
		t.Fatalf("unexpected user %+v", created)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("secret1")) || bytes.Contains(w.Body.Bytes(), []byte("password")) {
		t.Errorf("the password must never be returned: %s", w.Body.String())
	}
	stored, _ := env.reg.Users.Get(created.ID)
	if !auth.CheckPassword(stored.PasswordHash, "secret1") {
		t.Errorf("expected the password to be hashed on create")
	}

	w = env.do(http.MethodPatch, "/api/users/4", managerID, gin.H{"password": "changed1"})
	expectStatus(t, w, http.StatusOK)
	stored, _ = env.reg.Users.Get(4)
	if !auth.CheckPassword(stored.PasswordHash, "changed1") {
		t.Errorf("expected the password to change on patch")
	}

	expectStatus(t, env.do(http.MethodDelete, "/api/users/1", adminID, nil), http.StatusConflict)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPut, "/api/me/password", staffID, gin.H{"current_password": "wrong", "new_password": "brandnew1"})
	expectStatus(t, w, http.StatusUnprocessableEntity)

	// the seeded policy wants a number in every new password
	w = env.do(http.MethodPut, "/api/me/password", staffID, gin.H{"current_password": "staff123", "new_password": "brandnew"})
	expectStatus(t, w, http.StatusUnprocessableEntity)
	if body := decodeBody[errorBody](t, w); body.Fields["new_password"] != "must contain a number" {
		t.Errorf("expected the policy message, got %+v", body)
	}

	w = env.do(http.MethodPut, "/api/me/password", staffID, gin.H{"current_password": "staff123", "new_password": "brandnew1"})
	expectStatus(t, w, http.StatusOK)

	w = env.do(http.MethodPost, "/login", 0, gin.H{"username": "staff", "password": "brandnew1"})
	expectStatus(t, w, http.StatusOK)
}

func TestPasswordPolicyFollowsSettings(t *testing.T) {
	env := newTestEnv(t, nil)
	newUser := func(username, password string) *httptest.ResponseRecorder {
		return env.do(http.MethodPost, "/api/users", adminID, gin.H{
			"username": username, "password": password, "full_name": "Policy Test", "role": "evm_staff",
		})
	}

	w := newUser("nodigits", "password")
	expectStatus(t, w, http.StatusUnprocessableEntity)
	if body := decodeBody[errorBody](t, w); body.Fields["password"] != "must contain a number" {
		t.Errorf("expected the number rule, got %+v", body)
	}

	expectStatus(t, env.do(http.MethodPut, "/api/settings", adminID, gin.H{
		"password_min_length": 10, "password_require_special": true,
	}), http.StatusOK)

	w = newUser("short", "abc12345!")
	expectStatus(t, w, http.StatusUnprocessableEntity)
	if body := decodeBody[errorBody](t, w); body.Fields["password"] != "must be at least 10 characters" {
		t.Errorf("expected the length rule, got %+v", body)
	}
	w = newUser("plain", "abcdefgh12")
	expectStatus(t, w, http.StatusUnprocessableEntity)
	if body := decodeBody[errorBody](t, w); body.Fields["password"] != "must contain a special character" {
		t.Errorf("expected the special character rule, got %+v", body)
	}
	expectStatus(t, newUser("strong", "abcdefg12!"), http.StatusCreated)
}

func TestLogin_LocksOutAfterRepeatedFailures(t *testing.T) {
	env := newTestEnv(t, nil)
	expectStatus(t, env.do(http.MethodPut, "/api/settings", adminID, gin.H{"max_login_attempts": 3, "lockout_minutes": 10}), http.StatusOK)

	for i := 0; i < 3; i++ {
		expectStatus(t, env.do(http.MethodPost, "/login", 0, gin.H{"username": "staff", "password": "nope"}), http.StatusUnauthorized)
	}
	w := env.do(http.MethodPost, "/login", 0, gin.H{"username": "staff", "password": "staff123"})
	expectStatus(t, w, http.StatusTooManyRequests)
	if w.Header().Get("Retry-After") != "600" {
		t.Errorf("expected a 10 minute Retry-After, got %q", w.Header().Get("Retry-After"))
	}

	// other accounts are unaffected
	expectStatus(t, env.do(http.MethodPost, "/login", 0, gin.H{"username": "manager", "password": "manager123"}), http.StatusOK)

	env.reg.Now = func() time.Time { return testNow.Add(10 * time.Minute) }
	expectStatus(t, env.do(http.MethodPost, "/login", 0, gin.H{"username": "staff", "password": "staff123"}), http.StatusOK)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPatch, "/api/me", staffID, gin.H{
		"full_name": "Tran Thi Staff", "phone": "0909123456", "address": "12 Le Loi, District 1",
	})
	expectStatus(t, w, http.StatusOK)
	if u := decodeBody[models.User](t, w); u.FullName != "Tran Thi Staff" || u.Phone != "0909123456" || u.Address != "12 Le Loi, District 1" {
		t.Errorf("unexpected profile %+v", u)
	}
	stored, _ := env.reg.Users.Get(staffID)
	if stored.Role != models.RoleDealerStaff || !auth.CheckPassword(stored.PasswordHash, "staff123") {
		t.Errorf("expected role and password untouched, got %+v", stored)
	}

	// evm_staff cannot write users, yet may still edit their own profile
	expectStatus(t, env.do(http.MethodPatch, "/api/me", evmID, gin.H{"email": "evm@evdealer.com"}), http.StatusOK)

	tests := []struct {
		name  string
		body  gin.H
		field string
	}{
		{"role", gin.H{"role": "admin"}, "role"},
		{"dealer", gin.H{"dealer_id": 2}, "dealer_id"},
		{"bad email", gin.H{"email": "not-an-email"}, "email"},
		{"blank name", gin.H{"full_name": ""}, "full_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPatch, "/api/me", evmID, tt.body)
			expectStatus(t, w, http.StatusUnprocessableEntity)
			if body := decodeBody[errorBody](t, w); body.Fields[tt.field] == "" {
				t.Errorf("expected a message for %s, got %+v", tt.field, body)
			}
		})
	}
	if u, _ := env.reg.Users.Get(evmID); u.Role != models.RoleEVMStaff || u.Email != "evm@evdealer.com" {
		t.Errorf("expected only the email to change, got %+v", u)
	}
}

func TestToggle(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/dealers/2/toggle", adminID, nil)
	expectStatus(t, w, http.StatusOK)
	if d := decodeBody[models.Dealer](t, w); d.Status != models.StatusInactive {
		t.Errorf("expected dealer 2 to be inactive, got %q", d.Status)
	}
	w = env.do(http.MethodPost, "/api/dealers/2/toggle", adminID, nil)
	if d := decodeBody[models.Dealer](t, w); d.Status != models.StatusActive {
		t.Errorf("expected dealer 2 to be active again, got %q", d.Status)
	}
}

func TestReports(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, name := range []string{"overview", "revenue", "products", "inventory", "debts", "pricing", "promotions", "feedback", "personal"} {
		expectStatus(t, env.do(http.MethodGet, "/api/reports/"+name, managerID, nil), http.StatusOK)
	}
	expectStatus(t, env.do(http.MethodGet, "/api/reports/nope", managerID, nil), http.StatusNotFound)

	w := env.do(http.MethodGet, "/api/reports/revenue", staff2ID, nil)
	rev := decodeBody[dealership.RevenueReport](t, w)
	if len(rev.ByDealer) != 1 || rev.ByDealer[0].DealerID != 2 {
		t.Errorf("expected revenue for dealer 2 only, got %+v", rev.ByDealer)
	}
}

func TestSchema(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodGet, "/api/schemas/orders", staffID, nil)
	expectStatus(t, w, http.StatusOK)
	var schema struct {
		Title      string   `json:"title"`
		Required   []string `json:"required"`
		Properties map[string]struct {
			Type     string `json:"type"`
			Enum     []any  `json:"enum"`
			ReadOnly bool   `json:"readOnly"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &schema); err != nil {
		t.Fatal(err)
	}
	if schema.Title != "order" || !containsString(schema.Required, "customer_id") || containsString(schema.Required, "notes") {
		t.Errorf("unexpected schema header %q %v", schema.Title, schema.Required)
	}
	if len(schema.Properties["payment_method"].Enum) != 3 {
		t.Errorf("expected payment method options, got %+v", schema.Properties["payment_method"])
	}
	if !schema.Properties["id"].ReadOnly || schema.Properties["quantity"].ReadOnly {
		t.Errorf("expected id read-only and quantity editable")
	}

	expectStatus(t, env.do(http.MethodGet, "/api/schemas/dealer-orders", staffID, nil), http.StatusOK)
	expectStatus(t, env.do(http.MethodGet, "/api/schemas/dealers", staffID, nil), http.StatusForbidden)
	expectStatus(t, env.do(http.MethodGet, "/api/schemas/nope", staffID, nil), http.StatusNotFound)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestSettingsAndMaintenance(t *testing.T) {
	env := newTestEnv(t, nil)

	expectStatus(t, env.do(http.MethodGet, "/api/settings", staffID, nil), http.StatusOK)
	expectStatus(t, env.do(http.MethodPut, "/api/settings", staffID, gin.H{"site_name": "Mine"}), http.StatusForbidden)
	expectStatus(t, env.do(http.MethodPut, "/api/settings", adminID, gin.H{"low_stock_threshold": 20}), http.StatusUnprocessableEntity)
	expectStatus(t, env.do(http.MethodPut, "/api/settings", adminID, gin.H{"currency": "DONG"}), http.StatusUnprocessableEntity)

	w := env.do(http.MethodPut, "/api/settings", adminID, gin.H{"maintenance_mode": true})
	expectStatus(t, w, http.StatusOK)
	if s := decodeBody[models.Settings](t, w); !s.MaintenanceMode || s.SiteName != "EV Dealer Management System" {
		t.Errorf("unexpected settings %+v", s)
	}

	expectStatus(t, env.do(http.MethodGet, "/api/customers", staffID, nil), http.StatusOK)
	w = env.do(http.MethodPost, "/api/customers", staffID, gin.H{"full_name": "Pham Van Moi", "phone": "0909999888"})
	expectStatus(t, w, http.StatusServiceUnavailable)
}

type fakeAssistant struct {
	got dealership.Session
}

func (f *fakeAssistant) Ask(_ context.Context, sess dealership.Session, message string) (string, error) {
	f.got = sess
	return "echo: " + message, nil
}

func TestAskAI(t *testing.T) {
	expectStatus(t, newTestEnv(t, nil).do(http.MethodPost, "/api/ask", adminID, gin.H{"message": "hi"}), http.StatusServiceUnavailable)

	fake := &fakeAssistant{}
	env := newTestEnv(t, fake)
	expectStatus(t, env.do(http.MethodPost, "/api/ask", adminID, gin.H{}), http.StatusBadRequest)

	w := env.do(http.MethodPost, "/api/ask", adminID, gin.H{"message": "hi"})
	expectStatus(t, w, http.StatusOK)
	if body := decodeBody[map[string]string](t, w); body["reply"] != "echo: hi" {
		t.Errorf("unexpected reply %v", body)
	}
	if fake.got.UserID != adminID {
		t.Errorf("expected the assistant to run as the admin, got %+v", fake.got)
	}
}

func TestServeSPA(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<div id=\"root\"></div>"), 0o644); err != nil {
		t.Fatal(err)
	}
	env := newTestEnv(t, nil)
	ServeSPA(env.router, dir)

	w := env.do(http.MethodGet, "/dashboard/sales", 0, nil)
	expectStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), `id="root"`) {
		t.Errorf("expected index.html, got %s", w.Body.String())
	}

	w = env.do(http.MethodGet, "/api/nope", staffID, nil)
	expectStatus(t, w, http.StatusNotFound)
	if !strings.Contains(w.Body.String(), "Not found") {
		t.Errorf("expected a JSON 404 for unknown api paths, got %s", w.Body.String())
	}
}

func TestVehicleBatteryCapacity(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/vehicles", adminID, gin.H{
		"model_name": "VF 9 Plus", "brand": "VinFast", "year": 2024, "vehicle_type_id": 1,
		"battery_capacity": 123.5, "listed_price": 2_000_000_000,
	})
	expectStatus(t, w, http.StatusCreated)
	created := decodeBody[models.Vehicle](t, w)
	if !created.BatteryCapacity.Equal(decimal.RequireFromString("123.5")) {
		t.Errorf("expected 123.5 kWh, got %s", created.BatteryCapacity)
	}

	w = env.do(http.MethodPatch, "/api/vehicles/1", evmID, gin.H{"battery_capacity": 80})
	expectStatus(t, w, http.StatusOK)
	if v, _ := env.reg.Vehicles.Get(1); !v.BatteryCapacity.Equal(decimal.NewFromInt(80)) || v.ModelName == "" {
		t.Errorf("expected 80 kWh with the rest untouched, got %+v", v)
	}

	w = env.do(http.MethodPatch, "/api/vehicles/1", evmID, gin.H{"battery_capacity": 0})
	expectStatus(t, w, http.StatusUnprocessableEntity)
	if body := decodeBody[errorBody](t, w); body.Fields["battery_capacity"] == "" {
		t.Errorf("expected a battery_capacity message, got %+v", body)
	}

	w = env.do(http.MethodGet, "/api/schemas/vehicles", adminID, nil)
	expectStatus(t, w, http.StatusOK)
	var schema struct {
		Properties map[string]struct {
			Type   string `json:"type"`
			Format string `json:"format"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &schema); err != nil {
		t.Fatal(err)
	}
	if p := schema.Properties["battery_capacity"]; p.Type != "string" || p.Format != "decimal" {
		t.Errorf("expected battery_capacity described like the JSON it is sent as, got %+v", p)
	}
}

func TestMarkDebtPaid_SettlesTheOrder(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/debts/2/status", managerID, gin.H{"status": "paid"})
	expectStatus(t, w, http.StatusOK)
	if d := decodeBody[models.Debt](t, w); d.Status != models.DebtPaid || !d.RemainingAmount.IsZero() {
		t.Errorf("expected debt 2 paid off, got %s %s", d.Status, d.RemainingAmount)
	}
	order, _ := env.reg.Orders.Get(2)
	if order.Status != models.OrderCompleted || !order.RemainingAmount.IsZero() || !order.PaidAmount.Equal(money(1_800_000_000)) {
		t.Errorf("expected order 2 completed, got %s paid %s remaining %s", order.Status, order.PaidAmount, order.RemainingAmount)
	}
}

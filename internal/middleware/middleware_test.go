package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ev-dealer-hub/internal/access"
	"ev-dealer-hub/internal/auth"
	"ev-dealer-hub/internal/dealership"
	"ev-dealer-hub/internal/models"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRegistry() *dealership.Registry {
	reg := dealership.NewRegistry()
	dealer := uint(1)
	reg.Users.Load([]models.User{
		{Base: models.Base{ID: 1}, Username: "admin", Role: models.RoleAdmin, Status: models.StatusActive},
		{Base: models.Base{ID: 2}, Username: "staff", Role: models.RoleDealerStaff, DealerID: &dealer, Status: models.StatusActive},
		{Base: models.Base{ID: 3}, Username: "gone", Role: models.RoleDealerStaff, DealerID: &dealer, Status: models.StatusInactive},
	})
	return reg
}

func token(t *testing.T, issuer *auth.Issuer, userID uint, role models.Role) string {
	t.Helper()
	tok, err := issuer.GenerateToken(auth.Claims{UserID: userID, Role: string(role)}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestAuthMiddleware(t *testing.T) {
	issuer := auth.NewIssuer("test")
	reg := newRegistry()

	r := gin.New()
	r.GET("/me", AuthMiddleware(issuer, reg), func(c *gin.Context) {
		c.JSON(http.StatusOK, CurrentSession(c))
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"no bearer prefix", token(t, issuer, 1, models.RoleAdmin), http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"inactive user", "Bearer " + token(t, issuer, 3, models.RoleDealerStaff), http.StatusUnauthorized},
		{"deleted user", "Bearer " + token(t, issuer, 99, models.RoleAdmin), http.StatusUnauthorized},
		{"valid", "Bearer " + token(t, issuer, 2, models.RoleDealerStaff), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func withSession(s dealership.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetSession(c, s)
		c.Next()
	}
}

func TestRequireAccess(t *testing.T) {
	staff := dealership.Session{UserID: 2, Role: models.RoleDealerStaff}
	r := gin.New()
	r.Use(withSession(staff))
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	r.GET("/vehicles", RequireAccess(access.Vehicles), ok)
	r.POST("/vehicles", RequireAccess(access.Vehicles), ok)
	r.GET("/dealers", RequireAccess(access.Dealers), ok)

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/vehicles", http.StatusNoContent},
		{http.MethodPost, "/vehicles", http.StatusForbidden},
		{http.MethodGet, "/dealers", http.StatusForbidden},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		if w.Code != tt.want {
			t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.want, w.Code)
		}
	}
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.GET("/admin", withSession(dealership.Session{Role: models.RoleEVMStaff}), RequireRole(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestMaintenance(t *testing.T) {
	reg := newRegistry()
	if _, err := reg.UpdateSettings(context.Background(), map[string]any{"maintenance_mode": true}); err != nil {
		t.Fatal(err)
	}

	run := func(s dealership.Session, method string) int {
		r := gin.New()
		r.Handle(method, "/x", withSession(s), Maintenance(reg), func(c *gin.Context) { c.Status(http.StatusNoContent) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, "/x", nil))
		return w.Code
	}

	staff := dealership.Session{Role: models.RoleDealerStaff}
	admin := dealership.Session{Role: models.RoleAdmin}
	if got := run(staff, http.MethodPost); got != http.StatusServiceUnavailable {
		t.Errorf("expected staff writes to be blocked, got %d", got)
	}
	if got := run(staff, http.MethodGet); got != http.StatusNoContent {
		t.Errorf("expected staff reads to pass, got %d", got)
	}
	if got := run(admin, http.MethodPatch); got != http.StatusNoContent {
		t.Errorf("expected admin writes to pass, got %d", got)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(w.Header().Get(RequestIDHeader)) != 36 {
		t.Errorf("expected a generated UUID, got %q", w.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("expected the caller's id to be kept, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "bad id with spaces")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got == "bad id with spaces" {
		t.Errorf("expected an unsafe id to be replaced")
	}
}

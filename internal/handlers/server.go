// Package handlers exposes the dealership over JSON HTTP for the dashboard SPA.
package handlers

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"ev-dealer-hub/internal/access"
	"ev-dealer-hub/internal/auth"
	"ev-dealer-hub/internal/dealership"
	"ev-dealer-hub/internal/middleware"
	"ev-dealer-hub/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func init() {
	// Keep money exact: numbers reach the forms as json.Number, not float64.
	binding.EnableDecoderUseNumber = true
}

// Assistant answers free-form questions on behalf of a signed-in user.
type Assistant interface {
	Ask(ctx context.Context, sess dealership.Session, message string) (string, error)
}

// Server owns the HTTP surface of one registry.
type Server struct {
	reg       *dealership.Registry
	issuer    *auth.Issuer
	assistant Assistant
	lockout   *auth.Lockout
}

// NewServer wires the handlers. assistant may be nil, which disables /api/ask.
func NewServer(reg *dealership.Registry, issuer *auth.Issuer, assistant Assistant) *Server {
	return &Server{reg: reg, issuer: issuer, assistant: assistant, lockout: auth.NewLockout()}
}

// Router builds the gin engine. Browsers are only allowed from origins.
func (s *Server) Router(origins []string) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.RequestID())

	// --- The Bridge Configuration (React dev server and deployed SPA) ---
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "online"}) })
	r.POST("/login", s.Login)

	// --- PROTECTED ROUTES ---
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(s.issuer, s.reg))
	api.Use(middleware.Maintenance(s.reg))
	{
		api.GET("/me", s.Me)
		api.PATCH("/me", s.UpdateProfile)
		api.GET("/me/menu", s.MyMenu)
		api.PUT("/me/password", s.ChangePassword)

		api.GET("/schemas/:resource", s.GetSchema)
		api.GET("/reports/:name", middleware.RequireAccess(access.Reports), s.GetReport)

		api.GET("/settings", middleware.RequireAccess(access.Settings), s.GetSettings)
		api.PUT("/settings", middleware.RequireAccess(access.Settings), s.UpdateSettings)

		mount(api, "/dealers", s.dealers())
		mount(api, "/vehicle-types", s.vehicleTypes())
		mount(api, "/vehicles", s.vehicles())
		mount(api, "/users", s.users())
		mount(api, "/customers", s.customers())
		mount(api, "/promotions", s.promotions())
		mount(api, "/pricing", s.pricing())
		mount(api, "/test-drives", s.testDrives())
		mount(api, "/feedbacks", s.feedbacks())
		mount(api, "/dealer-orders", s.dealerOrders())

		inventory := mount(api, "/inventory", s.inventory())
		inventory.POST("/:id/reserve", s.ReserveStock)
		inventory.POST("/:id/release", s.ReleaseStock)

		orders := mount(api, "/orders", s.orders())
		orders.GET("/quote", s.GetQuote)
		orders.POST("/:id/payments", s.PayOrder)

		debts := mount(api, "/debts", s.debts())
		debts.POST("/refresh", s.RefreshDebts)
		debts.POST("/:id/payments", s.PayDebt)

		// AI is restricted to Admin
		api.POST("/ask", middleware.RequireRole(models.RoleAdmin), s.AskAI)
	}
	return r
}

// ServeSPA serves the built dashboard from dir. Unknown paths outside /api
// fall back to index.html so the SPA can route them itself.
func ServeSPA(r *gin.Engine, dir string) {
	r.Static("/assets", filepath.Join(dir, "assets"))
	index := filepath.Join(dir, "index.html")
	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.File(index)
	})
}

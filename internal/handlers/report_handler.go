package handlers

import (
	"net/http"

	"ev-dealer-hub/internal/dealership"
	"ev-dealer-hub/internal/middleware"

	"github.com/gin-gonic/gin"
)

// reports maps /api/reports/:name onto the report builders. Every report is
// scoped to the caller's session.
var reports = map[string]func(*dealership.Registry, dealership.Session) any{
	"overview":   func(r *dealership.Registry, s dealership.Session) any { return r.Overview(s) },
	"revenue":    func(r *dealership.Registry, s dealership.Session) any { return r.Revenue(s) },
	"products":   func(r *dealership.Registry, s dealership.Session) any { return r.Products(s) },
	"inventory":  func(r *dealership.Registry, s dealership.Session) any { return r.InventorySummary(s) },
	"debts":      func(r *dealership.Registry, s dealership.Session) any { return r.DebtSummary(s) },
	"pricing":    func(r *dealership.Registry, s dealership.Session) any { return r.PricingSummary(s) },
	"promotions": func(r *dealership.Registry, s dealership.Session) any { return r.PromotionSummary(s) },
	"feedback":   func(r *dealership.Registry, s dealership.Session) any { return r.FeedbackSummary(s) },
	"personal":   func(r *dealership.Registry, s dealership.Session) any { return r.Personal(s) },
}

// --- GET: /api/reports/:name ---
func (s *Server) GetReport(c *gin.Context) {
	build, ok := reports[c.Param("name")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown report"})
		return
	}
	c.JSON(http.StatusOK, build(s.reg, middleware.CurrentSession(c)))
}

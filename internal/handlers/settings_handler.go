package handlers

import (
	"log"
	"net/http"

	"ev-dealer-hub/internal/access"
	"ev-dealer-hub/internal/dealership"
	"ev-dealer-hub/internal/form"
	"ev-dealer-hub/internal/middleware"

	"github.com/gin-gonic/gin"
)

// --- GET: /api/settings ---
func (s *Server) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.reg.CurrentSettings())
}

// --- PUT: /api/settings ---
func (s *Server) UpdateSettings(c *gin.Context) {
	input, ok := bindInput(c)
	if !ok {
		return
	}

	// 1. Validate only what was sent
	current := s.reg.CurrentSettings()
	draft, err := form.DraftFrom(dealership.Schemas[access.Settings], current)
	if err != nil {
		respondError(c, err)
		return
	}
	draft.Apply(input)
	changes, err := draft.Changes()
	if err != nil {
		respondError(c, err)
		return
	}

	// 2. Save; the registry keeps the thresholds in order
	updated, err := s.reg.UpdateSettings(c.Request.Context(), changes)
	if err != nil {
		respondError(c, err)
		return
	}
	if updated.MaintenanceMode != current.MaintenanceMode {
		log.Printf("⚠️ Maintenance mode set to %t by %s", updated.MaintenanceMode, middleware.CurrentSession(c).Username)
	}
	c.JSON(http.StatusOK, updated)
}

package main

import (
	"context"
	"log"
	"os"

	"ev-dealer-hub/internal/ai"
	"ev-dealer-hub/internal/auth"
	"ev-dealer-hub/internal/config"
	"ev-dealer-hub/internal/database"
	"ev-dealer-hub/internal/dealership"
	"ev-dealer-hub/internal/fixtures"
	"ev-dealer-hub/internal/handlers"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// 1. Build the registry: from the database when one is configured,
	// from the seed fixtures otherwise
	reg := dealership.NewRegistry()
	seed := func(r *dealership.Registry) error { return fixtures.Seed(r, cfg.FixturePath) }
	if cfg.Persistent() {
		db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			log.Fatal("❌ Database unavailable: ", err)
		}
		if err := database.Attach(context.Background(), db, reg, seed); err != nil {
			log.Fatal("❌ Failed to load the dealership data: ", err)
		}
	} else {
		if err := seed(reg); err != nil {
			log.Fatal("❌ Failed to load the seed data: ", err)
		}
		log.Println("⚠️ No DB_DSN set, running in memory on the seed data. Changes are lost on restart.")
	}

	// 2. The assistant is optional
	var assistant handlers.Assistant
	if cfg.GeminiAPIKey != "" {
		assistant = ai.NewAgent(cfg.GeminiAPIKey, reg)
	} else {
		log.Println("🔒 GEMINI_API_KEY not set, the assistant is DISABLED.")
	}

	srv := handlers.NewServer(reg, auth.NewIssuer(cfg.JWTSecret), assistant)
	r := srv.Router(cfg.AllowedOrigins)

	// 3. DEPLOYMENT: Serve the React dashboard when it was built next to us
	if cfg.WebDir != "" {
		if _, err := os.Stat(cfg.WebDir); err == nil {
			handlers.ServeSPA(r, cfg.WebDir)
			log.Println("✅ Serving the dashboard from " + cfg.WebDir)
		} else {
			log.Printf("⚠️ WEB_DIR %s not found, serving the API only", cfg.WebDir)
		}
	}

	log.Println("🚀 Server starting on " + cfg.BaseURL)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}

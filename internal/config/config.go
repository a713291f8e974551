// Package config reads the server settings from the environment.
package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config is everything the server needs at start-up.
type Config struct {
	Port           string
	BaseURL        string
	JWTSecret      string
	AllowedOrigins []string
	DBDriver       string
	DBDSN          string
	GeminiAPIKey   string
	FixturePath    string
	WebDir         string
	GinMode        string
}

const devSecret = "ev_dealer_hub_dev_secret"

// Load reads .env if present, then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults.
func FromEnv(getenv func(string) string) Config {
	cfg := Config{
		Port:           getenv("PORT"),
		BaseURL:        getenv("BASE_URL"),
		JWTSecret:      getenv("JWT_SECRET"),
		AllowedOrigins: splitAndTrim(getenv("ALLOWED_ORIGINS")),
		DBDriver:       strings.ToLower(getenv("DB_DRIVER")),
		DBDSN:          getenv("DB_DSN"),
		GeminiAPIKey:   getenv("GEMINI_API_KEY"),
		FixturePath:    getenv("FIXTURE_PATH"),
		WebDir:         getenv("WEB_DIR"),
		GinMode:        getenv("GIN_MODE"),
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + cfg.Port
	}
	if cfg.JWTSecret == "" {
		log.Println("⚠️ WARNING: JWT_SECRET is not set, using the development secret")
		cfg.JWTSecret = devSecret
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:5173"}
	}
	if cfg.DBDriver == "" {
		cfg.DBDriver = "mysql"
	}
	return cfg
}

// Persistent reports whether a database was configured.
func (c Config) Persistent() bool {
	return c.DBDSN != ""
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

package config

import "testing"

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv(env(nil))
	if cfg.Port != "8080" || cfg.BaseURL != "http://localhost:8080" || cfg.DBDriver != "mysql" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.JWTSecret == "" || cfg.Persistent() {
		t.Errorf("expected a dev secret and no database, got %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
}

func TestFromEnv(t *testing.T) {
	cfg := FromEnv(env(map[string]string{
		"PORT":            "9000",
		"JWT_SECRET":      "s3cret",
		"ALLOWED_ORIGINS": "https://a.example, https://b.example ,",
		"DB_DRIVER":       "Postgres",
		"DB_DSN":          "host=localhost",
	}))
	if cfg.Port != "9000" || cfg.BaseURL != "http://localhost:9000" || cfg.JWTSecret != "s3cret" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.DBDriver != "postgres" || !cfg.Persistent() {
		t.Errorf("expected a postgres database, got %+v", cfg)
	}
}

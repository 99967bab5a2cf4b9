package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"ACCESS_TOKEN_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" || !cfg.IsDevelopment() {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Auth.TokenTTL != 720*time.Hour || cfg.Auth.SaltRounds != 10 {
		t.Fatalf("unexpected auth defaults: %+v", cfg.Auth)
	}
	if cfg.Redis.Addr != "" || cfg.Redis.LocationTTL != 24*time.Hour {
		t.Fatalf("unexpected redis defaults: %+v", cfg.Redis)
	}
	if cfg.Pagination.DefaultLimit != 20 || cfg.Pagination.MaxLimit != 20 || cfg.Pagination.GeoMaxLimit != 50 {
		t.Fatalf("unexpected pagination defaults: %+v", cfg.Pagination)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	if _, err := load(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatalf("expected error without ACCESS_TOKEN_SECRET")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"ACCESS_TOKEN_SECRET": "s3cret",
		"ENV":                 "production",
		"ACCESS_TOKEN_TTL":    "1h",
		"REDIS_ADDR":          "localhost:6379",
		"GEO_MAX_LIMIT":       "100",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.IsDevelopment() || cfg.Auth.TokenTTL != time.Hour || cfg.Redis.Addr != "localhost:6379" || cfg.Pagination.GeoMaxLimit != 100 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_InvalidPagination(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"ACCESS_TOKEN_SECRET": "s3cret",
		"PAGE_DEFAULT_LIMIT":  "50",
		"PAGE_MAX_LIMIT":      "20",
	}))
	if err == nil {
		t.Fatalf("expected error when default limit exceeds max")
	}
}

func TestLoadDotEnv(t *testing.T) {
	if err := loadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("STEMBOUND_DOTENV_TEST=loaded\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("STEMBOUND_DOTENV_TEST") })

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
	if got := os.Getenv("STEMBOUND_DOTENV_TEST"); got != "loaded" {
		t.Fatalf("expected variable from .env, got %q", got)
	}
}

package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Console.Addr != ":3000" {
		t.Fatalf("unexpected console addr %q", cfg.Console.Addr)
	}
	if cfg.API.BaseURL != "http://localhost:8080/api" {
		t.Fatalf("unexpected base url %q", cfg.API.BaseURL)
	}
	if cfg.API.RedirectDelay != 100*time.Millisecond {
		t.Fatalf("unexpected redirect delay %v", cfg.API.RedirectDelay)
	}
	if cfg.Store.Backend != StoreFile {
		t.Fatalf("unexpected store backend %q", cfg.Store.Backend)
	}
	if !cfg.Development() {
		t.Fatalf("expected development by default")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"API_BASE_URL": "https://shop.example.com/api",
		"TOKEN_STORE":  "redis",
		"REDIS_DB":     "3",
		"ENV":          "production",
	}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.API.BaseURL != "https://shop.example.com/api" || cfg.Store.Backend != StoreRedis || cfg.Redis.DB != 3 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Development() {
		t.Fatalf("production must not be development")
	}
}

func TestLoadFrom_UnknownStore(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"TOKEN_STORE": "cookie",
	}))
	if err == nil {
		t.Fatalf("expected error for unknown store backend")
	}
}

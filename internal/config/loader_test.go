package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsAndEnvOverlay(t *testing.T) {
	t.Setenv("FLEETCORE_JWT_SECRET", "env-secret")
	t.Setenv("FLEETCORE_PORT", "9090")
	t.Setenv("FLEETCORE_ACCESS_TOKEN_EXPIRY", "5m")
	t.Setenv("FLEETCORE_PG_MAX_CONNS", "30")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Errorf("jwt secret not taken from env")
	}
	if cfg.Auth.AccessTokenExpiry != 5*time.Minute {
		t.Errorf("access expiry = %v, want 5m", cfg.Auth.AccessTokenExpiry)
	}
	if cfg.Postgres.MaxConns != 30 {
		t.Errorf("max conns = %d, want 30", cfg.Postgres.MaxConns)
	}
	// Untouched defaults survive.
	if cfg.Cache.VisibilityTTL != 30*time.Second {
		t.Errorf("visibility ttl = %v, want default 30s", cfg.Cache.VisibilityTTL)
	}
}

func TestLoadYAMLThenEnvWins(t *testing.T) {
	t.Setenv("FLEETCORE_JWT_SECRET", "env-secret")
	t.Setenv("FLEETCORE_LOG_LEVEL", "debug")

	path := filepath.Join(t.TempDir(), "fleetcore.yaml")
	yaml := []byte("server:\n  port: \"7070\"\nlogging:\n  level: warn\n")
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != "7070" {
		t.Errorf("port = %q, want yaml value 7070", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, env must override yaml", cfg.Logging.Level)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("FLEETCORE_JWT_SECRET", "")

	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing jwt secret")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	t.Setenv("FLEETCORE_JWT_SECRET", "env-secret")

	path := filepath.Join(t.TempDir(), "fleetcore.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: [unterminated\n"), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

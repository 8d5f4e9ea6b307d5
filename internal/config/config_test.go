package config

import (
	"testing"
	"time"

	"github.com/relink-app/relink/internal/ua"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"RELINK_JWT_SECRET", "RELINK_PORT", "RELINK_DB_PATH", "RELINK_BASE_URL",
		"RELINK_ARCHIVED_URL", "RELINK_GEOIP_PATH", "RELINK_BUFFER_SIZE",
		"RELINK_TOKEN_CACHE_SIZE", "RELINK_LOOKUP_TIMEOUT", "RELINK_RETENTION_DAYS",
		"RELINK_UA_FALLBACK", "RELINK_ALLOW_ANONYMOUS_EDIT", "RELINK_FILTER_BOTS",
		"RELINK_FILTER_DATACENTER",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_MinimalValid(t *testing.T) {
	clearEnv(t)
	t.Setenv("RELINK_JWT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.DBPath != "./relink.db" {
		t.Errorf("dbpath = %q, want %q", cfg.DBPath, "./relink.db")
	}
	if cfg.ArchivedURL != DefaultArchivedURL {
		t.Errorf("archived url = %q, want default", cfg.ArchivedURL)
	}
	if cfg.BufferSize != 50000 {
		t.Errorf("buffer size = %d, want 50000", cfg.BufferSize)
	}
	if cfg.LookupTimeout != 2*time.Second {
		t.Errorf("lookup timeout = %v, want 2s", cfg.LookupTimeout)
	}
	if cfg.RetentionDays != 365 {
		t.Errorf("retention days = %d, want 365", cfg.RetentionDays)
	}
	if cfg.UAFallback != ua.FallbackUnknown {
		t.Errorf("ua fallback = %q, want %q", cfg.UAFallback, ua.FallbackUnknown)
	}
	if !cfg.AllowAnonymousEdit {
		t.Error("allow anonymous edit = false, want true by default")
	}
	if cfg.FilterBots || cfg.FilterDatacenter {
		t.Error("traffic filters should be off by default")
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	clearEnv(t)
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing RELINK_JWT_SECRET")
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("RELINK_JWT_SECRET", "s3cret")
	t.Setenv("RELINK_PORT", "9090")
	t.Setenv("RELINK_ARCHIVED_URL", "https://example.com/gone")
	t.Setenv("RELINK_UA_FALLBACK", ua.FallbackOther)
	t.Setenv("RELINK_RETENTION_DAYS", "30")
	t.Setenv("RELINK_LOOKUP_TIMEOUT", "500ms")
	t.Setenv("RELINK_ALLOW_ANONYMOUS_EDIT", "false")
	t.Setenv("RELINK_FILTER_BOTS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %q, want %q", cfg.Port, "9090")
	}
	if cfg.ArchivedURL != "https://example.com/gone" {
		t.Errorf("archived url = %q", cfg.ArchivedURL)
	}
	if cfg.UAFallback != ua.FallbackOther {
		t.Errorf("ua fallback = %q, want %q", cfg.UAFallback, ua.FallbackOther)
	}
	if cfg.RetentionDays != 30 {
		t.Errorf("retention days = %d, want 30", cfg.RetentionDays)
	}
	if cfg.LookupTimeout != 500*time.Millisecond {
		t.Errorf("lookup timeout = %v, want 500ms", cfg.LookupTimeout)
	}
	if cfg.AllowAnonymousEdit {
		t.Error("allow anonymous edit = true, want false")
	}
	if !cfg.FilterBots {
		t.Error("filter bots = false, want true")
	}
}

func TestLoad_BadUAFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("RELINK_JWT_SECRET", "secret")
	t.Setenv("RELINK_UA_FALLBACK", "mystery")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid RELINK_UA_FALLBACK")
	}
}

func TestLoad_RetentionOutOfBounds(t *testing.T) {
	clearEnv(t)
	t.Setenv("RELINK_JWT_SECRET", "secret")

	for _, v := range []string{"0", "-5", "3651"} {
		t.Setenv("RELINK_RETENTION_DAYS", v)
		if _, err := Load(); err == nil {
			t.Errorf("RELINK_RETENTION_DAYS=%s: expected error", v)
		}
	}
}

func TestLoad_UnparseableNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("RELINK_JWT_SECRET", "secret")
	t.Setenv("RELINK_BUFFER_SIZE", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BufferSize != 50000 {
		t.Errorf("buffer size = %d, want default 50000", cfg.BufferSize)
	}
}

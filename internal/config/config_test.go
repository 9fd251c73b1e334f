package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file errored: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadOverridesAndBackfills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.yaml")
	body := "addr: \":9999\"\nseed: 42\nday_duration_s: 120\nnight_duration_s: -5\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.Seed != 42 || cfg.DayDurationS != 120 {
		t.Fatalf("overrides lost: %+v", cfg)
	}
	// Invalid values fall back rather than propagate.
	if cfg.NightDurationS != Default().NightDurationS {
		t.Fatalf("night duration = %v, want default", cfg.NightDurationS)
	}
	if cfg.DBPath != Default().DBPath {
		t.Fatalf("db path not backfilled: %q", cfg.DBPath)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("addr: [unterminated"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("malformed yaml accepted")
	}
}

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_ENV", "nonexistent")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("port = %d, want 8080", cfg.Port)
	}
	if cfg.Mode != "release" {
		t.Fatalf("mode = %q, want release", cfg.Mode)
	}
	if cfg.ReadLimit != 32768 {
		t.Fatalf("read limit = %d, want 32768", cfg.ReadLimit)
	}
	if cfg.PingPeriod != 54*time.Second {
		t.Fatalf("ping period = %v, want 54s", cfg.PingPeriod)
	}
}

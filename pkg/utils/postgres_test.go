package utils

import (
	"testing"
	"time"
)

func TestPostgresPoolDefaults(t *testing.T) {
	cfg := PostgresPoolConfig{}.withDefaults()
	if cfg.MaxOpenConns != 25 || cfg.MaxIdleConns != 25 {
		t.Fatalf("unexpected conn limits %+v", cfg)
	}
	if cfg.ConnMaxLifetime != 30*time.Minute || cfg.PingTimeout != 5*time.Second {
		t.Fatalf("unexpected durations %+v", cfg)
	}
}

func TestPostgresPoolDefaultsKeepExplicitValues(t *testing.T) {
	cfg := PostgresPoolConfig{MaxOpenConns: 5, PingTimeout: time.Second}.withDefaults()
	if cfg.MaxOpenConns != 5 || cfg.PingTimeout != time.Second {
		t.Fatalf("explicit values overridden %+v", cfg)
	}
}

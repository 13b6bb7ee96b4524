package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ships != 12 || cfg.CrewPerShip != 20 || cfg.Port != 8080 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.TickInterval != time.Second {
		t.Errorf("tick interval = %s, want 1s", cfg.TickInterval)
	}
	if cfg.AlertThreshold != 0.3 || cfg.CustodyThreshold != 0.6 {
		t.Errorf("thresholds = %v/%v", cfg.AlertThreshold, cfg.CustodyThreshold)
	}
	if cfg.AdminKey != "" || cfg.CatalogPath != "" {
		t.Error("optional settings should default empty")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FLEETSIM_SHIPS", "4")
	t.Setenv("FLEETSIM_ADMIN_KEY", "k")
	t.Setenv("FLEETSIM_CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("FLEETSIM_TICK_INTERVAL", "250ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ships != 4 || cfg.AdminKey != "k" {
		t.Errorf("overrides = %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("cors origins = %v", cfg.CORSOrigins)
	}
	if cfg.TickInterval != 250*time.Millisecond {
		t.Errorf("tick interval = %s", cfg.TickInterval)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{name: "malformed int", key: "FLEETSIM_SHIPS", val: "many", want: "parse env:"},
		{name: "malformed duration", key: "FLEETSIM_TICK_INTERVAL", val: "soon", want: "parse env:"},
		{name: "zero ships", key: "FLEETSIM_SHIPS", val: "0", want: "ships must be positive"},
		{name: "threshold range", key: "FLEETSIM_ALERT_THRESHOLD", val: "1.5", want: "alert threshold"},
		{name: "port range", key: "FLEETSIM_PORT", val: "70000", want: "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

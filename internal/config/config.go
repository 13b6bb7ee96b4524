// Package config loads fleetsim settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the runtime configuration. Every field has an env default so an
// empty environment yields a runnable setup.
type Config struct {
	DBPath      string `env:"FLEETSIM_DB"           envDefault:"data/fleetsim.db"`
	Seed        int64  `env:"FLEETSIM_SEED"         envDefault:"42"`
	Ships       int    `env:"FLEETSIM_SHIPS"        envDefault:"12"`
	CrewPerShip int    `env:"FLEETSIM_CREW"         envDefault:"20"`
	Radius      int    `env:"FLEETSIM_SECTOR_RADIUS" envDefault:"12"`
	CatalogPath string `env:"FLEETSIM_CATALOG"`

	Port        int      `env:"FLEETSIM_PORT"         envDefault:"8080"`
	AdminKey    string   `env:"FLEETSIM_ADMIN_KEY"`
	CORSOrigins []string `env:"FLEETSIM_CORS_ORIGINS" envSeparator:","`

	Workers            int           `env:"FLEETSIM_WORKERS"`
	EscalationCapacity int           `env:"FLEETSIM_ESCALATION_CAPACITY" envDefault:"8"`
	BreachCapacity     int           `env:"FLEETSIM_BREACH_CAPACITY"     envDefault:"16"`
	AlertThreshold     float32       `env:"FLEETSIM_ALERT_THRESHOLD"     envDefault:"0.3"`
	CustodyThreshold   float32       `env:"FLEETSIM_CUSTODY_THRESHOLD"   envDefault:"0.6"`
	AckDelay           uint64        `env:"FLEETSIM_ACK_DELAY"           envDefault:"30"`
	TickInterval       time.Duration `env:"FLEETSIM_TICK_INTERVAL"       envDefault:"1s"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate reports the first out-of-range setting.
func (c Config) Validate() error {
	switch {
	case c.DBPath == "":
		return fmt.Errorf("db path is required")
	case c.Ships < 1:
		return fmt.Errorf("ships must be positive, got %d", c.Ships)
	case c.CrewPerShip < 0:
		return fmt.Errorf("crew per ship must not be negative, got %d", c.CrewPerShip)
	case c.Radius < 1:
		return fmt.Errorf("sector radius must be positive, got %d", c.Radius)
	case c.Port < 0 || c.Port > 65535:
		return fmt.Errorf("port %d out of range", c.Port)
	case c.Workers < 0:
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	case c.EscalationCapacity < 1:
		return fmt.Errorf("escalation capacity must be positive, got %d", c.EscalationCapacity)
	case c.BreachCapacity < 1:
		return fmt.Errorf("breach capacity must be positive, got %d", c.BreachCapacity)
	case c.AlertThreshold < 0 || c.AlertThreshold > 1:
		return fmt.Errorf("alert threshold must be within [0,1], got %g", c.AlertThreshold)
	case c.CustodyThreshold < 0 || c.CustodyThreshold > 1:
		return fmt.Errorf("custody threshold must be within [0,1], got %g", c.CustodyThreshold)
	case c.TickInterval <= 0:
		return fmt.Errorf("tick interval must be positive, got %s", c.TickInterval)
	}
	return nil
}

package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Storage driver names accepted in AUCTION_STORAGE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Config holds all runtime settings, populated from the environment
// (with an optional .env file for local development).
type Config struct {
	Port             int           `envconfig:"PORT" default:"8080"`
	GinMode          string        `envconfig:"GIN_MODE" default:"release"`
	StorageDriver    string        `envconfig:"STORAGE_DRIVER" default:"memory"`
	PostgresDSN      string        `envconfig:"POSTGRES_DSN"`
	LockWait         time.Duration `envconfig:"LOCK_WAIT" default:"2s"`
	SubscriberBuffer int           `envconfig:"SUBSCRIBER_BUFFER" default:"64"`
}

// Load reads configuration from the environment under the AUCTION_
// prefix. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("auction", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	switch cfg.StorageDriver {
	case DriverMemory:
	case DriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres driver selected but AUCTION_POSTGRES_DSN is empty")
		}
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
	return &cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Package config defines service configuration and how it is loaded.
package config

import (
	"fmt"
	"runtime"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory recompute queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of recompute workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many recompute request ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// StoreDriver selects the grade store: memory or sqlite.
	StoreDriver string `koanf:"store_driver"`

	// StoreDSN is the SQLite database path; required for the sqlite driver.
	StoreDSN string `koanf:"store_dsn"`

	// DefaultRegion is used by featured lookups that name no region.
	DefaultRegion string `koanf:"default_region"`

	// BatchConcurrency bounds parallel gradings in a batch recompute.
	BatchConcurrency int `koanf:"batch_concurrency"`

	// MaxFeaturedLimit caps GET /featured?limit.
	MaxFeaturedLimit int `koanf:"max_featured_limit"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		QueueSize:        10_000,
		WorkerCount:      runtime.NumCPU() * 2,
		DedupeSize:       50_000,
		StoreDriver:      StoreMemory,
		DefaultRegion:    "korea",
		BatchConcurrency: runtime.NumCPU() * 4,
		MaxFeaturedLimit: 100,
	}
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.DedupeSize <= 0:
		return fmt.Errorf("%w: dedupe_size must be positive, got %d", ErrInvalidConfig, c.DedupeSize)
	case c.BatchConcurrency <= 0:
		return fmt.Errorf("%w: batch_concurrency must be positive, got %d", ErrInvalidConfig, c.BatchConcurrency)
	case c.MaxFeaturedLimit <= 0:
		return fmt.Errorf("%w: max_featured_limit must be positive, got %d", ErrInvalidConfig, c.MaxFeaturedLimit)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}

	switch c.StoreDriver {
	case StoreMemory:
	case StoreSQLite:
		if c.StoreDSN == "" {
			return fmt.Errorf("%w: store_dsn is required for the sqlite driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	return nil
}

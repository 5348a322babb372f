package config

import (
	"time"

	"github.com/medconnect/graphd/internal/graph"
)

// Config is the root configuration for the graphd service.
type Config struct {
	Core      CoreConfig      `mapstructure:"core" yaml:"core" validate:"required"`
	Graph     graph.Config    `mapstructure:"graph" yaml:"graph" validate:"required"`
	Database  DBConfig        `mapstructure:"database" yaml:"database" validate:"required"`
	Analytics AnalyticsConfig `mapstructure:"analytics" yaml:"analytics"`
	Events    EventsConfig    `mapstructure:"events" yaml:"events"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Tracing   TracingConfig   `mapstructure:"tracing" yaml:"tracing"`
}

// CoreConfig contains core application settings.
type CoreConfig struct {
	HomeDir string        `mapstructure:"home_dir" yaml:"home_dir"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"min=1s"`
	Debug   bool          `mapstructure:"debug" yaml:"debug"`
}

// DBConfig contains relational store configuration.
type DBConfig struct {
	Path           string        `mapstructure:"path" yaml:"path"`
	MaxConnections int           `mapstructure:"max_connections" yaml:"max_connections" validate:"min=1,max=100"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"min=1s"`
	WALMode        bool          `mapstructure:"wal_mode" yaml:"wal_mode"`
}

// AnalyticsConfig controls the periodic graph analytics pipeline.
type AnalyticsConfig struct {
	// Enabled controls whether the background runner starts with the service.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Interval between analytics runs (default: 6h).
	Interval time.Duration `mapstructure:"interval" yaml:"interval" validate:"min=1m"`

	// RunOnStart triggers one run immediately when the runner starts.
	RunOnStart bool `mapstructure:"run_on_start" yaml:"run_on_start"`
}

// EventsConfig contains event bus tuning.
type EventsConfig struct {
	// BufferSize is the per-subscriber channel buffer (default: 100).
	BufferSize int `mapstructure:"buffer_size" yaml:"buffer_size" validate:"min=1,max=100000"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=json text"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
}

package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/medconnect/graphd/internal/graph"
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	homeDir := getDefaultHomeDir()

	return &Config{
		Core: CoreConfig{
			HomeDir: homeDir,
			Timeout: 5 * time.Minute,
			Debug:   false,
		},
		Graph: graph.DefaultConfig(),
		Database: DBConfig{
			Path:           filepath.Join(homeDir, "graphd.db"),
			MaxConnections: 10,
			Timeout:        30 * time.Second,
			WALMode:        true,
		},
		Analytics: AnalyticsConfig{
			Enabled:    true,
			Interval:   6 * time.Hour,
			RunOnStart: true,
		},
		Events: EventsConfig{
			BufferSize: 100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:  false,
			Endpoint: "",
		},
	}
}

// getDefaultHomeDir returns the default graphd home directory.
// It uses ~/.graphd or falls back to a temporary directory if user home
// cannot be determined.
func getDefaultHomeDir() string {
	userHome, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".graphd")
	}
	return filepath.Join(userHome, ".graphd")
}

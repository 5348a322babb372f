package config

import (
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/medconnect/graphd/internal/types"
)

// ConfigLoader handles loading configuration from files.
type ConfigLoader interface {
	Load(path string) (*Config, error)
	LoadWithDefaults(path string) (*Config, error)
}

// viperConfigLoader implements ConfigLoader using Viper.
type viperConfigLoader struct {
	validator ConfigValidator
}

// NewConfigLoader creates a new ConfigLoader instance.
func NewConfigLoader(validator ConfigValidator) ConfigLoader {
	return &viperConfigLoader{
		validator: validator,
	}
}

// Load loads configuration from the specified file path.
// Returns an error if the file doesn't exist or cannot be parsed.
func (l *viperConfigLoader) Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "reading config file", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED, "unmarshaling config", err)
	}

	// Secrets and endpoints may be given as ${VAR_NAME} placeholders.
	applyInterpolation(&cfg)

	if err := l.validator.Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadWithDefaults loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration.
func (l *viperConfigLoader) LoadWithDefaults(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := l.validator.Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return l.Load(path)
}

// setDefaults seeds viper with defaults so a partial file still yields a
// complete configuration.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("core.home_dir", def.Core.HomeDir)
	v.SetDefault("core.timeout", def.Core.Timeout)
	v.SetDefault("core.debug", def.Core.Debug)

	v.SetDefault("graph.uri", def.Graph.URI)
	v.SetDefault("graph.username", def.Graph.Username)
	v.SetDefault("graph.password", def.Graph.Password)
	v.SetDefault("graph.database", def.Graph.Database)
	v.SetDefault("graph.max_connection_pool_size", def.Graph.MaxConnectionPoolSize)
	v.SetDefault("graph.connection_timeout", def.Graph.ConnectionTimeout)
	v.SetDefault("graph.max_transaction_retry_time", def.Graph.MaxTransactionRetryTime)

	v.SetDefault("database.path", def.Database.Path)
	v.SetDefault("database.max_connections", def.Database.MaxConnections)
	v.SetDefault("database.timeout", def.Database.Timeout)
	v.SetDefault("database.wal_mode", def.Database.WALMode)

	v.SetDefault("analytics.enabled", def.Analytics.Enabled)
	v.SetDefault("analytics.interval", def.Analytics.Interval)
	v.SetDefault("analytics.run_on_start", def.Analytics.RunOnStart)

	v.SetDefault("events.buffer_size", def.Events.BufferSize)

	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)

	v.SetDefault("tracing.enabled", def.Tracing.Enabled)
	v.SetDefault("tracing.endpoint", def.Tracing.Endpoint)
}

// applyInterpolation expands ${VAR_NAME} in every string field that may carry
// a secret or an environment-dependent value.
func applyInterpolation(cfg *Config) {
	cfg.Core.HomeDir = interpolateString(cfg.Core.HomeDir)
	cfg.Graph.URI = interpolateString(cfg.Graph.URI)
	cfg.Graph.Username = interpolateString(cfg.Graph.Username)
	cfg.Graph.Password = interpolateString(cfg.Graph.Password)
	cfg.Graph.Database = interpolateString(cfg.Graph.Database)
	cfg.Database.Path = interpolateString(cfg.Database.Path)
	cfg.Logging.Level = interpolateString(cfg.Logging.Level)
	cfg.Logging.Format = interpolateString(cfg.Logging.Format)
	cfg.Tracing.Endpoint = interpolateString(cfg.Tracing.Endpoint)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolateString replaces ${VAR_NAME} with environment variable values.
// Unset variables leave the placeholder untouched.
func interpolateString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if envValue := os.Getenv(varName); envValue != "" {
			return envValue
		}
		return match
	})
}

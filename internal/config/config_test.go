package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graphd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, NewValidator().Validate(cfg))

	assert.Equal(t, "bolt://localhost:7687", cfg.Graph.URI)
	assert.Equal(t, 6*time.Hour, cfg.Analytics.Interval)
	assert.True(t, cfg.Analytics.RunOnStart)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_PartialFileFillsDefaults(t *testing.T) {
	path := writeConfigFile(t, `
graph:
  uri: neo4j://graph.internal:7687
  username: svc
  password: secret
logging:
  level: debug
`)

	cfg, err := NewConfigLoader(NewValidator()).Load(path)
	require.NoError(t, err)

	assert.Equal(t, "neo4j://graph.internal:7687", cfg.Graph.URI)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched sections keep their defaults.
	assert.Equal(t, 6*time.Hour, cfg.Analytics.Interval)
	assert.Equal(t, 100, cfg.Events.BufferSize)
	assert.Equal(t, 50, cfg.Graph.MaxConnectionPoolSize)
}

func TestLoad_MarshaledConfigRoundTrips(t *testing.T) {
	want := DefaultConfig()
	want.Graph.URI = "neo4j://round.trip:7687"
	want.Analytics.Interval = 2 * time.Hour

	data, err := yaml.Marshal(want)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "graphd.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	got, err := NewConfigLoader(NewValidator()).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "neo4j://round.trip:7687", got.Graph.URI)
	assert.Equal(t, 2*time.Hour, got.Analytics.Interval)
}

func TestLoad_EnvInterpolation(t *testing.T) {
	t.Setenv("GRAPHD_TEST_PASSWORD", "s3cr3t")

	path := writeConfigFile(t, `
graph:
  uri: bolt://localhost:7687
  username: svc
  password: ${GRAPHD_TEST_PASSWORD}
`)

	cfg, err := NewConfigLoader(NewValidator()).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", cfg.Graph.Password)
}

func TestLoad_UnsetEnvVarLeftUntouched(t *testing.T) {
	path := writeConfigFile(t, `
graph:
  uri: bolt://localhost:7687
  username: svc
  password: ${GRAPHD_TEST_UNSET_VAR}
`)

	cfg, err := NewConfigLoader(NewValidator()).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "${GRAPHD_TEST_UNSET_VAR}", cfg.Graph.Password)
}

func TestLoad_InvalidLoggingLevelRejected(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: loud
`)

	_, err := NewConfigLoader(NewValidator()).Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := NewConfigLoader(NewValidator()).Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadWithDefaults_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := NewConfigLoader(NewValidator()).LoadWithDefaults(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Graph.URI, cfg.Graph.URI)
}

func TestValidate_NilConfig(t *testing.T) {
	assert.Error(t, NewValidator().Validate(nil))
}

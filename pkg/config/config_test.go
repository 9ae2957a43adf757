package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-kpi/components/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, metrics.DefaultRetentionOptions(), cfg.RetentionOptions())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Bands.Path)
}

func TestLoadFileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kpi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
retention:
  window: 6
  low_threshold: 50
bands:
  path: bands.yaml
log:
  format: console
`), 0o600))
	t.Setenv("KPI_RETENTION_HIGH_THRESHOLD", "90")
	t.Setenv("KPI_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, metrics.RetentionOptions{Window: 6, HighThreshold: 90, LowThreshold: 50}, cfg.RetentionOptions())
	assert.Equal(t, "bands.yaml", cfg.Bands.Path)
	assert.Equal(t, "debug", cfg.LoggerConfig().Level)
	assert.Equal(t, "console", cfg.LoggerConfig().Format)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("KPI_RETENTION_LOW_THRESHOLD", "95")
	t.Setenv("KPI_LOG_FORMAT", "xml")

	_, err := Load("")
	require.Error(t, err)
	assert.ErrorIs(t, err, metrics.ErrConfiguration)
	assert.Contains(t, err.Error(), "log.format")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: load file")
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "retention.high_threshold", envKey("KPI_RETENTION_HIGH_THRESHOLD"))
	assert.Equal(t, "bands.path", envKey("KPI_BANDS_PATH"))
	assert.Equal(t, "debug", envKey("KPI_DEBUG"))
}

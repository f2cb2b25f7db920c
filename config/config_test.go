package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_ParsesYAMLFields(t *testing.T) {
	path := writeConfig(t, `
data:
  csv_path: testdata/bars.csv
  timeframe: minutes
  compression: 5
cerebro:
  preload: true
  run_once: true
  std_stats: true
broker:
  cash: 50000
  futures_mode: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "testdata/bars.csv", cfg.Data.CSVPath)
	assert.Equal(t, "minutes", cfg.Data.TimeFrame)
	assert.Equal(t, 5, cfg.Data.Compression)
	assert.True(t, cfg.Cerebro.Preload)
	assert.True(t, cfg.Cerebro.RunOnce)
	assert.True(t, cfg.Cerebro.StdStats)
	assert.Equal(t, 50000.0, cfg.Broker.Cash)
	assert.True(t, cfg.Broker.FuturesMode)
}

func TestLoad_FillsDefaultsForUnsetFields(t *testing.T) {
	path := writeConfig(t, `
data:
  csv_path: testdata/bars.csv
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "days", cfg.Data.TimeFrame)
	assert.Equal(t, 1, cfg.Data.Compression)
	assert.Equal(t, 100000.0, cfg.Broker.Cash)
	assert.Equal(t, 1.0, cfg.Broker.Multiplier)
	assert.Equal(t, "backlab.db", cfg.Storage.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_EnvOverridesWinOverYAML(t *testing.T) {
	path := writeConfig(t, `
log:
  level: warn
  format: text
storage:
  dsn: yaml.db
`)

	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("BACKLAB_DSN", "env.db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "env.db", cfg.Storage.DSN)
}

func TestLoad_MissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAMLReturnsError(t *testing.T) {
	path := writeConfig(t, "data:\n  csv_path: [unterminated\n")
	_, err := Load(path)
	assert.Error(t, err)
}

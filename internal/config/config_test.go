package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.Paths.DataDir)
	assert.Equal(t, "output/opsep", cfg.Paths.OutDir)
	assert.Equal(t, "lists/opsep", cfg.Paths.ListDir)
	assert.Equal(t, "batch_run_results.csv", cfg.Paths.ReportPath)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "sepbatch.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 900, cfg.Analyzer.TimeoutSecs)
	assert.Equal(t, 1, cfg.Batch.Concurrency)
	assert.InDelta(t, 2.0, cfg.Fetcher.RatePerSec, 0.001)
	assert.Equal(t, 3, cfg.Fetcher.MaxRetries)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
paths:
  list_dir: /srv/sep/lists
analyzer:
  command: opsep
  timeout_secs: 300
batch:
  concurrency: 4
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/sep/lists", cfg.Paths.ListDir)
	assert.Equal(t, "opsep", cfg.Analyzer.Command)
	assert.Equal(t, 300, cfg.Analyzer.TimeoutSecs)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still applied for untouched sections.
	assert.Equal(t, "sqlite", cfg.Store.Driver)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, 85.0, c.Dashboard.DefaultTargetOAE)
	assert.Equal(t, 12, c.Dashboard.TrendWeeks)
	assert.Equal(t, 4, c.Dashboard.MonthlyWeeks)
	assert.Equal(t, "data", c.Data.Dir)
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("dashboard:\n  trend_weeks: 8\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, c.Dashboard.TrendWeeks)
	// Untouched knobs keep their defaults.
	assert.Equal(t, 85.0, c.Dashboard.DefaultTargetOAE)
}

func TestLoadMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(":\t not yaml ["), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestPathEnvOverride(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/tmp/elsewhere.yml")
	assert.Equal(t, "/tmp/elsewhere.yml", Path())
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, "./config.yml", Path())
}

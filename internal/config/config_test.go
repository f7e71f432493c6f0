package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, 6, cfg.ShortPathSize)
	assert.Equal(t, "prod", cfg.SiteMode)
	assert.False(t, cfg.DevMode())
	assert.True(t, cfg.AnalyticsEnabled)
	assert.Contains(t, cfg.ReservedPaths, "last")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SITE_MODE", "dev")
	t.Setenv("SHORT_PATH_SIZE", "8")
	t.Setenv("RESERVED_PATHS", "one,two")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.DevMode())
	assert.Equal(t, 8, cfg.ShortPathSize)
	assert.Equal(t, []string{"one", "two"}, cfg.ReservedPaths)
}

func TestLoadRejectsBadPathSize(t *testing.T) {
	t.Setenv("SHORT_PATH_SIZE", "0")
	_, err := Load()
	assert.Error(t, err)
}

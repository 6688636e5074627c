package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "5175", cfg.Port)
	assert.Equal(t, ":5175", cfg.Addr())
	assert.Equal(t, 100, cfg.DefaultMax)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
}

func TestLoad_EnvAndDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DAILY_MAX=50\nPORT=9000\n"), 0o600))
	t.Setenv("PORT", "8080")
	t.Setenv("SESSION_TTL", "30m")
	t.Cleanup(func() { os.Unsetenv("DAILY_MAX") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port, "real env wins over .env")
	assert.Equal(t, 50, cfg.DailyMax)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
}

func TestLoad_BadValue(t *testing.T) {
	t.Setenv("DEFAULT_MAX", "lots")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

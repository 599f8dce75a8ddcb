package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ynt-app/youtube-no-translation/internal/innertube"
)

func TestNewFromEnv_Defaults(t *testing.T) {
	_ = godotenv.Load("./.env")

	cfg, err := NewFromEnv()
	require.NoError(t, err)

	// The default must be the full API base the client appends endpoint
	// paths to, not the bare page origin.
	assert.Equal(t, innertube.DefaultBaseURL, cfg.InnerTube.APIURL)
	assert.True(t, strings.HasSuffix(cfg.InnerTube.APIURL, "/youtubei/v1"))
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout())
	assert.Equal(t, 3*time.Second, cfg.BridgeTimeout())
	assert.Equal(t, "@every 5m", cfg.Engine.CacheSweepCron)
	assert.True(t, cfg.Control.Enabled)
	assert.Equal(t, "127.0.0.1:8654", cfg.Control.Addr)
}

func TestNewFromEnv_DataDir(t *testing.T) {
	t.Setenv("DATA_DIR", "")
	cfg, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/app/data", cfg.System.DataDir)
	assert.Equal(t, filepath.Join("/app/data", "settings.db"), cfg.DBPath())

	t.Setenv("DATA_DIR", "/tmp/ynt-data")
	cfg, err = NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/ynt-data", "settings.db"), cfg.DBPath())
}

func TestNewFromEnv_Overrides(t *testing.T) {
	t.Setenv("INNERTUBE_API_URL", "http://127.0.0.1:9999")
	t.Setenv("INNERTUBE_TIMEOUT", "3")
	t.Setenv("BRIDGE_TIMEOUT_MS", "750")
	t.Setenv("CONTROL_ENABLED", "false")

	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:9999", cfg.InnerTube.APIURL)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout())
	assert.Equal(t, 750*time.Millisecond, cfg.BridgeTimeout())
	assert.False(t, cfg.Control.Enabled)
}

func TestNewFromEnv_InvalidValues(t *testing.T) {
	t.Setenv("CACHE_SWEEP_CRON", "not a schedule")
	_, err := NewFromEnv()
	require.Error(t, err)

	t.Setenv("CACHE_SWEEP_CRON", "@every 5m")
	t.Setenv("CONTROL_ADDR", "no-port")
	_, err = NewFromEnv()
	require.Error(t, err)

	t.Setenv("CONTROL_ADDR", "127.0.0.1:8654")
	t.Setenv("INNERTUBE_TIMEOUT", "-1")
	_, err = NewFromEnv()
	require.Error(t, err)
}

func TestNewFromEnv_Options(t *testing.T) {
	cfg, err := NewFromEnv(func(c *Config) {
		c.System.LogLevel = "debug"
	})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.System.LogLevel)
}

package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ynt-app/youtube-no-translation/internal/innertube"
)

// Config holds all application configuration.
// Supports environment variables with sensible defaults.
//
// Environment Variables:
// InnerTube Configuration:
// - INNERTUBE_API_URL: Metadata API base, including the /youtubei/v1 prefix
//   (default: https://www.youtube.com/youtubei/v1)
// - INNERTUBE_TIMEOUT: Request timeout in seconds (default: 10)
//
// Engine Configuration:
// - BRIDGE_TIMEOUT_MS: Page-context round-trip timeout in milliseconds (default: 3000)
// - CACHE_SWEEP_CRON: Schedule of the response-cache sweep (default: @every 5m)
//
// Control Surface Configuration:
// - CONTROL_ADDR: Listen address of the local control API (default: 127.0.0.1:8654)
// - CONTROL_ENABLED: Serve the control API (default: true)
//
// System Configuration:
// - DATA_DIR: Directory for the settings database (default: /app/data)
// - LOG_LEVEL: debug, info, warn or error (default: info)

type Config struct {
	InnerTube InnerTubeConfig `json:"innertube"`
	Engine    EngineConfig    `json:"engine"`
	Control   ControlConfig   `json:"control"`
	System    SystemConfig    `json:"system"`
}

// InnerTubeConfig holds the configuration for the metadata API client.
type InnerTubeConfig struct {
	APIURL  string `json:"api_url"`
	Timeout int    `json:"timeout"`
}

// EngineConfig holds the engine tunables.
type EngineConfig struct {
	BridgeTimeoutMS int    `json:"bridge_timeout_ms"`
	CacheSweepCron  string `json:"cache_sweep_cron"`
}

// ControlConfig holds the configuration for the local control API.
type ControlConfig struct {
	Addr    string `json:"addr"`
	Enabled bool   `json:"enabled"`
}

// SystemConfig holds the system configuration.
type SystemConfig struct {
	DataDir  string `json:"data_dir"`
	LogLevel string `json:"log_level"`
}

// Option is a function type for configuring Config.
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment
// variables and options.
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		InnerTube: InnerTubeConfig{
			APIURL:  getEnvString("INNERTUBE_API_URL", innertube.DefaultBaseURL),
			Timeout: getEnvInt("INNERTUBE_TIMEOUT", 10),
		},
		Engine: EngineConfig{
			BridgeTimeoutMS: getEnvInt("BRIDGE_TIMEOUT_MS", 3000),
			CacheSweepCron:  getEnvString("CACHE_SWEEP_CRON", "@every 5m"),
		},
		Control: ControlConfig{
			Addr:    getEnvString("CONTROL_ADDR", "127.0.0.1:8654"),
			Enabled: getEnvBool("CONTROL_ENABLED", true),
		},
		System: SystemConfig{
			DataDir:  getEnvString("DATA_DIR", "/app/data"),
			LogLevel: getEnvString("LOG_LEVEL", "info"),
		},
	}

	for _, opt := range opts {
		opt(config)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DBPath returns the location of the settings database.
func (c *Config) DBPath() string {
	return filepath.Join(c.System.DataDir, "settings.db")
}

// HTTPTimeout returns the metadata request timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.InnerTube.Timeout) * time.Second
}

// BridgeTimeout returns the page-context round-trip timeout as a duration.
func (c *Config) BridgeTimeout() time.Duration {
	return time.Duration(c.Engine.BridgeTimeoutMS) * time.Millisecond
}

// validate checks if all required configuration is properly set.
func (c *Config) validate() error {
	if c.InnerTube.Timeout <= 0 {
		return fmt.Errorf("INNERTUBE_TIMEOUT must be positive")
	}
	if c.Engine.BridgeTimeoutMS <= 0 {
		return fmt.Errorf("BRIDGE_TIMEOUT_MS must be positive")
	}
	if _, err := cron.ParseStandard(c.Engine.CacheSweepCron); err != nil {
		return fmt.Errorf("CACHE_SWEEP_CRON is not a valid schedule: %w", err)
	}
	if c.Control.Enabled {
		if _, _, err := net.SplitHostPort(c.Control.Addr); err != nil {
			return fmt.Errorf("CONTROL_ADDR is not a valid listen address: %w", err)
		}
	}
	return nil
}

// getEnvString gets a string value from environment variables with default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean value from environment variables with default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

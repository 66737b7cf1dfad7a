package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for castdeck.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Registry  RegistryConfig  `yaml:"registry"`
	History   HistoryConfig   `yaml:"history"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Client    ClientConfig    `yaml:"client"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// RegistryConfig contains saved-device store settings.
type RegistryConfig struct {
	// StorePath is the path to the saved-device JSON file.
	// Relative paths resolve against the working directory.
	StorePath string `yaml:"store_path"`
}

// HistoryConfig contains activity-log database settings.
type HistoryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// RetentionDays bounds how long entries are kept; older entries are
	// pruned at startup. Zero disables pruning.
	RetentionDays int `yaml:"retention_days"`
}

// DiscoveryConfig contains device-discovery settings.
type DiscoveryConfig struct {
	// StrategyTimeout is the fixed per-strategy timeout in seconds.
	// Each transport strategy gets this budget; there are no retries.
	StrategyTimeout int `yaml:"strategy_timeout"`

	// ScanOnStartup triggers one background discovery run at startup.
	ScanOnStartup bool `yaml:"scan_on_startup"`
}

// ClientConfig contains SmartCast client settings.
type ClientConfig struct {
	// DeviceID identifies this controller to devices during pairing.
	// Generated and persisted on first run if empty.
	DeviceID string `yaml:"device_id"`

	// DeviceName is the controller name shown on the TV's pairing screen.
	DeviceName string `yaml:"device_name"`

	// Timeout is the per-call timeout in seconds for device requests.
	Timeout int `yaml:"timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: CASTDECK_SECTION_KEY
// For example: CASTDECK_REGISTRY_STORE_PATH, CASTDECK_API_PORT
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8530,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Registry: RegistryConfig{
			StorePath: "./data/devices.json",
		},
		History: HistoryConfig{
			Enabled:       true,
			Path:          "./data/castdeck.db",
			WALMode:       true,
			BusyTimeout:   5,
			RetentionDays: 90,
		},
		Discovery: DiscoveryConfig{
			StrategyTimeout: 5,
			ScanOnStartup:   true,
		},
		Client: ClientConfig{
			DeviceName: "castdeck",
			Timeout:    5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: CASTDECK_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CASTDECK_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("CASTDECK_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}
	if v := os.Getenv("CASTDECK_REGISTRY_STORE_PATH"); v != "" {
		cfg.Registry.StorePath = v
	}
	if v := os.Getenv("CASTDECK_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}
	if v := os.Getenv("CASTDECK_CLIENT_DEVICE_ID"); v != "" {
		cfg.Client.DeviceID = v
	}
	if v := os.Getenv("CASTDECK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.Registry.StorePath == "" {
		errs = append(errs, "registry.store_path is required")
	}

	if c.History.Enabled && c.History.Path == "" {
		errs = append(errs, "history.path is required when history is enabled")
	}

	if c.History.RetentionDays < 0 {
		errs = append(errs, "history.retention_days must not be negative")
	}

	if c.Discovery.StrategyTimeout < 1 {
		errs = append(errs, "discovery.strategy_timeout must be at least 1 second")
	}

	if c.Client.Timeout < 1 {
		errs = append(errs, "client.timeout must be at least 1 second")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// GetStrategyTimeout returns the per-strategy discovery timeout as a Duration.
func (c *Config) GetStrategyTimeout() time.Duration {
	return time.Duration(c.Discovery.StrategyTimeout) * time.Second
}

// GetClientTimeout returns the device request timeout as a Duration.
func (c *Config) GetClientTimeout() time.Duration {
	return time.Duration(c.Client.Timeout) * time.Second
}

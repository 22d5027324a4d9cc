package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Auth     AuthConfig     `yaml:"auth"`
	Advisor  AdvisorConfig  `yaml:"advisor"`
	Events   EventsConfig   `yaml:"events"`
	Clock    ClockConfig    `yaml:"clock"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	CORSOrigin      string   `yaml:"cors_origin"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AuthConfig contains current-user resolution settings. With no API key
// every request resolves to CustomerID.
type AuthConfig struct {
	APIKey     string `yaml:"-"` // env-only, never in YAML
	CustomerID string `yaml:"customer_id"`
}

// AdvisorConfig contains recommendation generator settings. Without an
// API key the built-in recommendations are served.
type AdvisorConfig struct {
	APIKey  string   `yaml:"-"` // env-only, never in YAML
	Model   string   `yaml:"model"`
	Timeout Duration `yaml:"timeout"`
}

// EventsConfig contains domain event publishing settings. Events are
// dropped when URL is empty.
type EventsConfig struct {
	URL    string `yaml:"url"`
	Prefix string `yaml:"prefix"`
}

// ClockConfig contains simulated clock settings.
type ClockConfig struct {
	// AutoAdvanceInterval advances the day on a timer; zero disables it.
	AutoAdvanceInterval Duration `yaml:"auto_advance_interval"`
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load loads configuration with precedence: defaults → YAML file → env vars.
// Returns an immutable Config suitable for concurrent read access.
func Load() (*Config, error) {
	cfg := newDefaults()

	configPath := getEnv("FINQUEST_CONFIG_PATH", "config/finquest.yaml")

	// Missing file is not an error
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific path.
// Used for testing and explicit path specification.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newDefaults returns a Config with all default values.
func newDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
			CORSOrigin:      "*",
		},
		Database: DatabaseConfig{
			Path: "data/finquest.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Auth: AuthConfig{
			CustomerID: "demo-customer",
		},
		Advisor: AdvisorConfig{
			Model:   "gpt-4o-mini",
			Timeout: Duration(20 * time.Second),
		},
		Events: EventsConfig{
			Prefix: "finquest",
		},
	}
}

// loadYAMLFile loads configuration from a YAML file if it exists.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only non-empty env vars override config values.
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("FINQUEST_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	envDuration("FINQUEST_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("FINQUEST_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("FINQUEST_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	if v := os.Getenv("FINQUEST_CORS_ORIGIN"); v != "" {
		cfg.Server.CORSOrigin = v
	}

	// Database
	if v := os.Getenv("FINQUEST_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Log
	if v := os.Getenv("FINQUEST_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("FINQUEST_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	// Auth
	if v := os.Getenv("FINQUEST_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("FINQUEST_CUSTOMER_ID"); v != "" {
		cfg.Auth.CustomerID = v
	}

	// Advisor (OPENAI_API_KEY is industry convention)
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Advisor.APIKey = v
	}
	if v := os.Getenv("FINQUEST_ADVISOR_MODEL"); v != "" {
		cfg.Advisor.Model = v
	}
	envDuration("FINQUEST_ADVISOR_TIMEOUT", &cfg.Advisor.Timeout)

	// Events
	if v := os.Getenv("FINQUEST_NATS_URL"); v != "" {
		cfg.Events.URL = v
	}
	if v := os.Getenv("FINQUEST_EVENTS_PREFIX"); v != "" {
		cfg.Events.Prefix = v
	}

	// Clock
	envDuration("FINQUEST_AUTO_ADVANCE_INTERVAL", &cfg.Clock.AutoAdvanceInterval)
}

// envDuration overrides *dst when key holds a parseable duration.
func envDuration(key string, dst *Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = Duration(d)
		}
	}
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// validate checks value ranges. Secrets are optional: their absence
// selects the demo customer and the built-in recommendations.
func (c *Config) validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range 1-65535", c.Server.Port))
	}
	for name, d := range map[string]Duration{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"advisor.timeout":         c.Advisor.Timeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if !logLevels[c.Log.Level] {
		errs = append(errs, fmt.Errorf("log.level %q must be one of debug, info, warn, error", c.Log.Level))
	}
	if c.Auth.CustomerID == "" {
		errs = append(errs, errors.New("auth.customer_id is required"))
	}
	if c.Events.URL != "" && c.Events.Prefix == "" {
		errs = append(errs, errors.New("events.prefix is required when events.url is set"))
	}
	if c.Clock.AutoAdvanceInterval < 0 {
		errs = append(errs, errors.New("clock.auto_advance_interval must not be negative"))
	}

	return errors.Join(errs...)
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

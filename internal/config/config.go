package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Backend   BackendConfig   `yaml:"backend"`
	Geography GeographyConfig `yaml:"geography"`
	Storage   StorageConfig   `yaml:"storage"`
	Chat      ChatConfig      `yaml:"chat"`
	Log       LogConfig       `yaml:"log"`
	Mock      MockConfig      `yaml:"mock"`
}

// BackendConfig points the client at the prediction service.
type BackendConfig struct {
	BaseURL string   `yaml:"base_url"`
	Timeout Duration `yaml:"timeout"` // zero waits indefinitely
}

// GeographyConfig points the client at the public state/district lookup.
type GeographyConfig struct {
	BaseURL string `yaml:"base_url"`
	Country string `yaml:"country"`
}

// StorageConfig locates the durable identity store.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// ChatConfig contains assistant defaults.
type ChatConfig struct {
	Language string `yaml:"language"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MockConfig configures the development backend served by `croppriceai mock-backend`.
type MockConfig struct {
	Port               int      `yaml:"port"`
	DatabasePath       string   `yaml:"database_path"`
	ReadTimeout        Duration `yaml:"read_timeout"`
	WriteTimeout       Duration `yaml:"write_timeout"`
	ShutdownTimeout    Duration `yaml:"shutdown_timeout"`
	AlertCheckInterval Duration `yaml:"alert_check_interval"`
	OpenAIModel        string   `yaml:"openai_model"`
	OpenAIAPIKey       string   `yaml:"-"` // env-only, never in YAML
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

	configPath := getEnv("CROPPRICEAI_CONFIG_PATH", "config/croppriceai.yaml")

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
		Backend: BackendConfig{
			BaseURL: "http://localhost:5000",
			Timeout: Duration(30 * time.Second),
		},
		Geography: GeographyConfig{
			BaseURL: "https://countriesnow.space/api/v0.1",
			Country: "India",
		},
		Storage: StorageConfig{
			Path: "~/.croppriceai/local.db",
		},
		Chat: ChatConfig{
			Language: "English",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Mock: MockConfig{
			Port:               5000,
			DatabasePath:       "data/mock_backend.db",
			ReadTimeout:        Duration(30 * time.Second),
			WriteTimeout:       Duration(30 * time.Second),
			ShutdownTimeout:    Duration(15 * time.Second),
			AlertCheckInterval: Duration(60 * time.Second),
			OpenAIModel:        "gpt-4o-mini",
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
	// Backend
	if v := os.Getenv("CROPPRICEAI_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("CROPPRICEAI_BACKEND_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Backend.Timeout = Duration(d)
		}
	}

	// Geography
	if v := os.Getenv("CROPPRICEAI_GEO_URL"); v != "" {
		cfg.Geography.BaseURL = v
	}
	if v := os.Getenv("CROPPRICEAI_GEO_COUNTRY"); v != "" {
		cfg.Geography.Country = v
	}

	// Storage
	if v := os.Getenv("CROPPRICEAI_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}

	// Chat
	if v := os.Getenv("CROPPRICEAI_LANGUAGE"); v != "" {
		cfg.Chat.Language = v
	}

	// Log
	if v := os.Getenv("CROPPRICEAI_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CROPPRICEAI_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	// Mock backend
	if v := os.Getenv("CROPPRICEAI_MOCK_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Mock.Port = port
		}
	}
	if v := os.Getenv("CROPPRICEAI_MOCK_DB_PATH"); v != "" {
		cfg.Mock.DatabasePath = v
	}
	if v := os.Getenv("CROPPRICEAI_ALERT_CHECK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Mock.AlertCheckInterval = Duration(d)
		}
	}
	if v := os.Getenv("CROPPRICEAI_OPENAI_MODEL"); v != "" {
		cfg.Mock.OpenAIModel = v
	}

	// OPENAI_API_KEY is industry convention
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Mock.OpenAIAPIKey = v
	}
}

// validate checks that configuration values are usable.
func (c *Config) validate() error {
	if err := validateBaseURL("backend.base_url", c.Backend.BaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("geography.base_url", c.Geography.BaseURL); err != nil {
		return err
	}
	if c.Backend.Timeout < 0 {
		return errors.New("backend.timeout must not be negative")
	}
	if c.Mock.AlertCheckInterval <= 0 {
		return errors.New("mock.alert_check_interval must be positive")
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		return errors.New("storage.path is required")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q must be one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q must be text or json", c.Log.Format)
	}
	return nil
}

func validateBaseURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s %q must be an absolute http(s) URL", field, raw)
	}
	return nil
}

// ExpandPath resolves a leading "~/" against the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tributary-ai/route-gateway/internal/provider/google"
	"github.com/tributary-ai/route-gateway/internal/security"
)

// Config represents the complete application configuration.
type Config struct {
	Server   ServerConfig             `yaml:"server"`
	Provider ProviderConfig           `yaml:"provider"`
	Logging  LoggingConfig            `yaml:"logging"`
	Limits   security.RateLimitConfig `yaml:"rate_limiting"`
	Audit    security.AuditConfig     `yaml:"audit"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string        `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
}

// ProviderConfig holds upstream provider configuration.
type ProviderConfig struct {
	Google *google.Config `yaml:"google"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
	Output string `yaml:"output"` // "stdout", "stderr", or file path
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	config.setDefaults()

	if configPath != "" {
		if err := config.loadFromFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	config.loadFromEnv()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default configuration values.
func (c *Config) setDefaults() {
	c.Server = ServerConfig{
		Port:           "8080",
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	c.Provider = ProviderConfig{
		Google: &google.Config{
			Timeout: 30 * time.Second,
		},
	}

	c.Logging = LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}

	c.Limits = security.RateLimitConfig{
		WindowDuration: time.Hour,
		RequestLimit:   50,
		SweepInterval:  5 * time.Minute,
	}

	c.Audit = security.AuditConfig{
		Enabled:       true,
		BufferSize:    1000,
		FlushInterval: 10 * time.Second,
	}
}

// loadFromFile loads configuration from a YAML file.
func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}

	return nil
}

// loadFromEnv loads configuration from environment variables.
func (c *Config) loadFromEnv() {
	if port := os.Getenv("ROUTE_GATEWAY_PORT"); port != "" {
		c.Server.Port = port
	}

	if apiKey := os.Getenv("GOOGLE_MAPS_API_KEY"); apiKey != "" {
		if c.Provider.Google != nil {
			c.Provider.Google.APIKey = apiKey
		}
	}

	if level := os.Getenv("ROUTE_GATEWAY_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}

	if format := os.Getenv("ROUTE_GATEWAY_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}
}

// validate validates the configuration. A missing upstream API key is
// fatal here, before any request is accepted.
func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Provider.Google == nil || c.Provider.Google.APIKey == "" {
		return fmt.Errorf("google maps API key is required (set GOOGLE_MAPS_API_KEY)")
	}

	if c.Limits.RequestLimit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}

	return nil
}

package config

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Transports supported by the server
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	Transport      string   `mapstructure:"transport"` // "stdio" or "http"
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// UpstreamConfig holds the Open Food Facts service endpoints
type UpstreamConfig struct {
	ProductBaseURL  string        `mapstructure:"product_base_url"`
	SearchBaseURL   string        `mapstructure:"search_base_url"`
	PricesBaseURL   string        `mapstructure:"prices_base_url"`
	RobotoffBaseURL string        `mapstructure:"robotoff_base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	UserAgent       string        `mapstructure:"user_agent"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
	File   string `mapstructure:"file"`
}

// MetricsConfig holds prometheus exposition settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load loads configuration from environment variables and config files.
// An empty configFile searches the default locations.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/offmcp/")
	}

	// .env is optional and never overrides variables already set
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	// Environment variable settings, e.g. OFFMCP_SERVER_PORT
	v.SetEnvPrefix("OFFMCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 28375)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.transport", TransportHTTP)
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Upstream defaults
	v.SetDefault("upstream.product_base_url", "https://world.openfoodfacts.org")
	v.SetDefault("upstream.search_base_url", "https://search.openfoodfacts.org")
	v.SetDefault("upstream.prices_base_url", "https://prices.openfoodfacts.org/api/v1")
	v.SetDefault("upstream.robotoff_base_url", "https://robotoff.openfoodfacts.org/api/v1")
	v.SetDefault("upstream.timeout", "30s")
	v.SetDefault("upstream.user_agent", "OpenFoodFacts-MCP/1.0.1")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Transport != TransportStdio && config.Server.Transport != TransportHTTP {
		return fmt.Errorf("server transport must be 'stdio' or 'http', got: %s", config.Server.Transport)
	}

	if config.Server.Transport == TransportHTTP && (config.Server.Port < 1 || config.Server.Port > 65535) {
		return fmt.Errorf("server port must be between 1 and 65535, got: %d", config.Server.Port)
	}

	urls := map[string]string{
		"upstream.product_base_url":  config.Upstream.ProductBaseURL,
		"upstream.search_base_url":   config.Upstream.SearchBaseURL,
		"upstream.prices_base_url":   config.Upstream.PricesBaseURL,
		"upstream.robotoff_base_url": config.Upstream.RobotoffBaseURL,
	}
	for key, raw := range urls {
		if err := validateBaseURL(raw); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	if config.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive, got: %s", config.Upstream.Timeout)
	}

	if config.Logging.Format != "json" && config.Logging.Format != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got: %s", config.Logging.Format)
	}

	if config.Metrics.Enabled && !strings.HasPrefix(config.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with '/', got: %s", config.Metrics.Path)
	}

	return nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an absolute http(s) URL, got: %q", raw)
	}
	return nil
}

// loadEnvFile sets KEY=VALUE pairs from ./.env that are not already present
// in the environment. A missing file is not an error.
func loadEnvFile() error {
	file, err := os.Open(".env")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, strings.Trim(strings.TrimSpace(value), `"'`)); err != nil {
			return err
		}
	}
	return scanner.Err()
}

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Search    SearchConfig    `mapstructure:"search"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig contains server-specific configuration
type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	AssetsDir   string `mapstructure:"assets_dir"`
	MountPrefix string `mapstructure:"mount_prefix"`
}

// SearchConfig controls keyword matching and classification
type SearchConfig struct {
	DefaultKeyword     string        `mapstructure:"default_keyword"`
	ImageExtensions    []string      `mapstructure:"image_extensions"`
	ExcludedExtensions []string      `mapstructure:"excluded_extensions"`
	Timeout            time.Duration `mapstructure:"timeout"`
}

// TelemetryConfig contains telemetry configuration
type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Load loads the configuration from viper
func Load() (*Config, error) {
	cfg := &Config{}

	// Set defaults
	setDefaults()

	// Unmarshal configuration
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// Post-process configuration
	if err := postProcess(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("server.assets_dir", "public")
	viper.SetDefault("server.mount_prefix", "/public")

	// Search defaults
	viper.SetDefault("search.default_keyword", "GreatLearning")
	viper.SetDefault("search.image_extensions", []string{".png", ".jpg", ".jpeg", ".gif", ".webp"})
	viper.SetDefault("search.excluded_extensions", []string{".css", ".css.map", ".js", ".map", ".html", ".json", ".txt"})
	viper.SetDefault("search.timeout", time.Duration(0))

	// Telemetry defaults
	viper.SetDefault("telemetry.enabled", false)

	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.json", false)

	// Environment variable mappings
	_ = viper.BindEnv("server.assets_dir", "ASSETS_DIR")
	_ = viper.BindEnv("search.default_keyword", "DEFAULT_KEYWORD")
	_ = viper.BindEnv("telemetry.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func postProcess(cfg *Config) error {
	// Ensure assets directory is absolute
	if !filepath.IsAbs(cfg.Server.AssetsDir) {
		abs, err := filepath.Abs(cfg.Server.AssetsDir)
		if err != nil {
			return err
		}
		cfg.Server.AssetsDir = abs
	}

	cfg.Server.MountPrefix = "/" + strings.Trim(strings.TrimSpace(cfg.Server.MountPrefix), "/")

	// Comma separated env values arrive as a single element
	cfg.Search.ImageExtensions = splitList(cfg.Search.ImageExtensions)
	cfg.Search.ExcludedExtensions = splitList(cfg.Search.ExcludedExtensions)

	if err := ValidateMountPrefix(cfg.Server.MountPrefix); err != nil {
		return err
	}

	return nil
}

// reservedRoutes are the first path segments the server registers itself
var reservedRoutes = []string{"api", "alive", "server_info"}

// ValidateMountPrefix rejects prefixes that would shadow the site root or
// collide with the server's own routes.
func ValidateMountPrefix(prefix string) error {
	trimmed := strings.Trim(strings.TrimSpace(prefix), "/")
	if trimmed == "" {
		return errors.New("server.mount_prefix must not be the site root")
	}

	first := strings.SplitN(trimmed, "/", 2)[0]
	for _, route := range reservedRoutes {
		if first == route {
			return fmt.Errorf("server.mount_prefix %q collides with the /%s route", prefix, route)
		}
	}
	return nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load loads the configuration from file. Without an explicit path a
// missing config file is not an error; defaults and WGAPI_* environment
// variables apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix("WGAPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".wgapi"))
		}

		// Check /etc
		v.AddConfigPath("/etc/wgapi/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Application defaults
	v.SetDefault("application.id", "demo")
	v.SetDefault("application.language", "en")
	v.SetDefault("application.game", "wot")
	v.SetDefault("application.region", "eu")

	// API defaults
	v.SetDefault("api.base_url", "https://api.worldoftanks.%s/%s/")
	v.SetDefault("api.user_agent", "wgapi-go (https://github.com/s0up4200/wgapi)")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("api.retry_count", 3)
	v.SetDefault("api.retry_interval", "0s")

	// Cache defaults
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.prefix", "wgapi:")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Application.ID == "" {
		return fmt.Errorf("application.id is required")
	}

	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if strings.Count(cfg.API.BaseURL, "%s") != 2 {
		return fmt.Errorf("invalid api.base_url: %s (must contain two %%s verbs for region and game)", cfg.API.BaseURL)
	}

	if cfg.API.RetryCount < 1 {
		return fmt.Errorf("invalid api.retry_count: %d (must be at least 1)", cfg.API.RetryCount)
	}

	validBackends := map[string]bool{
		"memory": true,
		"redis":  true,
	}
	if !validBackends[cfg.Cache.Backend] {
		return fmt.Errorf("invalid cache.backend: %s (must be 'memory' or 'redis')", cfg.Cache.Backend)
	}

	// Validate logging level
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}

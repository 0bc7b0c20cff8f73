package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Application ApplicationConfig `mapstructure:"application"`
	API         APIConfig         `mapstructure:"api"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ApplicationConfig holds the application key and call defaults
type ApplicationConfig struct {
	ID       string `mapstructure:"id"`
	Language string `mapstructure:"language"`
	Game     string `mapstructure:"game"`
	Region   string `mapstructure:"region"`
}

// APIConfig contains transport and retry settings
type APIConfig struct {
	// BaseURL is a format string taking the region and the game
	BaseURL       string        `mapstructure:"base_url"`
	UserAgent     string        `mapstructure:"user_agent"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryCount    int           `mapstructure:"retry_count"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	// SchemaDir overrides the embedded schemas when set
	SchemaDir string `mapstructure:"schema_dir"`
}

// CacheConfig selects the response cache backend
type CacheConfig struct {
	Backend string      `mapstructure:"backend"`
	Redis   RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// Package config provides configuration management using Viper.
// It loads configuration from environment variables, .env files, and config files.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerPort        = 8080
	defaultServerHost        = "0.0.0.0"
	defaultReadTimeout       = 30 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultDatabasePath      = "./data/airwave.db"
	defaultLogLevel          = "info"
	defaultLogPretty         = false
	defaultChannelsRoot      = "./channels"
	defaultProbeTimeout      = 5 * time.Second
	defaultScheduleHorizon   = 48 * time.Hour
	defaultWatchDebounce     = 2 * time.Second
	defaultWatchLibrary      = true
	defaultMigrationsPath    = "file://./migrations"
	defaultFallbackDurationS = 30
	envPrefix                = "AIRWAVE"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Library  LibraryConfig
	Schedule ScheduleConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Path           string
	MigrationsPath string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// LibraryConfig holds media library configuration
type LibraryConfig struct {
	// ChannelsRoot is the folder whose subfolders are channels. Each channel
	// folder must contain Shows/ and Commercials/ subfolders.
	ChannelsRoot string
	// ProbeTimeout bounds a single ffprobe invocation.
	ProbeTimeout time.Duration
	// FallbackDurationSeconds is substituted when a file cannot be probed.
	FallbackDurationSeconds int
	// Watch enables the fsnotify library watcher.
	Watch bool
	// WatchDebounce coalesces bursts of filesystem events into one rebuild.
	WatchDebounce time.Duration
}

// ScheduleConfig holds schedule construction configuration
type ScheduleConfig struct {
	// Horizon is how far past the epoch each channel timeline is built.
	Horizon time.Duration
}

// Load reads configuration from .env file, config files, environment variables, and defaults
func Load() (*Config, error) {
	// .env files are optional in production and CI where env vars are set directly
	_ = godotenv.Load() // nolint:errcheck // .env file is optional

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/airwave")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Config file is optional; defaults and env vars cover everything
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.host", defaultServerHost)
	v.SetDefault("server.readtimeout", defaultReadTimeout)
	v.SetDefault("server.writetimeout", defaultWriteTimeout)

	v.SetDefault("database.path", defaultDatabasePath)
	v.SetDefault("database.migrationspath", defaultMigrationsPath)

	v.SetDefault("logging.level", defaultLogLevel)
	v.SetDefault("logging.pretty", defaultLogPretty)

	v.SetDefault("library.channelsroot", defaultChannelsRoot)
	v.SetDefault("library.probetimeout", defaultProbeTimeout)
	v.SetDefault("library.fallbackdurationseconds", defaultFallbackDurationS)
	v.SetDefault("library.watch", defaultWatchLibrary)
	v.SetDefault("library.watchdebounce", defaultWatchDebounce)

	v.SetDefault("schedule.horizon", defaultScheduleHorizon)
}

// Validate checks that configuration values are valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("invalid read timeout: %v (must be > 0)", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("invalid write timeout: %v (must be > 0)", c.Server.WriteTimeout)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.Logging.Level, strings.Join(validLevels, ", "))
	}

	if c.Library.ChannelsRoot == "" {
		return fmt.Errorf("library channels root must not be empty")
	}
	if c.Library.ProbeTimeout <= 0 {
		return fmt.Errorf("invalid probe timeout: %v (must be > 0)", c.Library.ProbeTimeout)
	}
	if c.Library.FallbackDurationSeconds < 1 {
		return fmt.Errorf("invalid fallback duration: %d (must be >= 1 second)", c.Library.FallbackDurationSeconds)
	}

	if c.Schedule.Horizon < time.Hour {
		return fmt.Errorf("invalid schedule horizon: %v (must be >= 1h)", c.Schedule.Horizon)
	}

	return nil
}

// contains checks if a string slice contains a specific value
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

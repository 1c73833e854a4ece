package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Port != defaultServerPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, defaultServerPort)
	}
	if cfg.Server.Host != defaultServerHost {
		t.Errorf("Server.Host = %s, want %s", cfg.Server.Host, defaultServerHost)
	}
	if cfg.Database.Path != defaultDatabasePath {
		t.Errorf("Database.Path = %s, want %s", cfg.Database.Path, defaultDatabasePath)
	}
	if cfg.Logging.Level != defaultLogLevel {
		t.Errorf("Logging.Level = %s, want %s", cfg.Logging.Level, defaultLogLevel)
	}
	if cfg.Library.ChannelsRoot != defaultChannelsRoot {
		t.Errorf("Library.ChannelsRoot = %s, want %s", cfg.Library.ChannelsRoot, defaultChannelsRoot)
	}
	if cfg.Library.ProbeTimeout != defaultProbeTimeout {
		t.Errorf("Library.ProbeTimeout = %v, want %v", cfg.Library.ProbeTimeout, defaultProbeTimeout)
	}
	if cfg.Library.FallbackDurationSeconds != defaultFallbackDurationS {
		t.Errorf("Library.FallbackDurationSeconds = %d, want %d", cfg.Library.FallbackDurationSeconds, defaultFallbackDurationS)
	}
	if cfg.Schedule.Horizon != defaultScheduleHorizon {
		t.Errorf("Schedule.Horizon = %v, want %v", cfg.Schedule.Horizon, defaultScheduleHorizon)
	}
}

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Path:           "./data/airwave.db",
			MigrationsPath: "file://./migrations",
		},
		Logging: LoggingConfig{Level: "info"},
		Library: LibraryConfig{
			ChannelsRoot:            "./channels",
			ProbeTimeout:            5 * time.Second,
			FallbackDurationSeconds: 30,
			WatchDebounce:           2 * time.Second,
		},
		Schedule: ScheduleConfig{Horizon: 48 * time.Hour},
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "port too low",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: true,
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "zero read timeout",
			mutate:  func(c *Config) { c.Server.ReadTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: true,
		},
		{
			name:    "empty channels root",
			mutate:  func(c *Config) { c.Library.ChannelsRoot = "" },
			wantErr: true,
		},
		{
			name:    "zero probe timeout",
			mutate:  func(c *Config) { c.Library.ProbeTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "fallback duration below a second",
			mutate:  func(c *Config) { c.Library.FallbackDurationSeconds = 0 },
			wantErr: true,
		},
		{
			name:    "horizon below an hour",
			mutate:  func(c *Config) { c.Schedule.Horizon = 30 * time.Minute },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	Storage   StorageConfig   `mapstructure:"storage"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Goals     GoalsConfig     `mapstructure:"goals"`
	Report    ReportConfig    `mapstructure:"report"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Retention RetentionConfig `mapstructure:"retention"`
}

// StorageConfig defines storage backend settings
type StorageConfig struct {
	Type  string      `mapstructure:"type"` // "bolt" or "redis"
	Path  string      `mapstructure:"path"`
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig defines Redis connection settings
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	DialTimeout  string `mapstructure:"dial_timeout"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FeedConfig defines where the usage telemetry feeds come from
type FeedConfig struct {
	SnapshotPath      string `mapstructure:"snapshot_path"`
	NotificationsPath string `mapstructure:"notifications_path"` // "-" reads stdin
}

// GoalsConfig defines goal threshold defaults (minutes). Persisted
// values in the settings store override these.
type GoalsConfig struct {
	StudyTargetMinutes int64 `mapstructure:"study_target_minutes"`
	MediaLimitMinutes  int64 `mapstructure:"media_limit_minutes"`
}

// ReportConfig defines export settings
type ReportConfig struct {
	Limit     int    `mapstructure:"limit"`
	OutputDir string `mapstructure:"output_dir"`
}

// MetricsConfig defines the Prometheus endpoint settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// RetentionConfig defines how long day-scoped counters are kept
type RetentionConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Days      int    `mapstructure:"days"`
	SweepTime string `mapstructure:"sweep_time"` // HH:MM
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Configure viper
	v.SetConfigFile(configPath)
	v.SetEnvPrefix("SCREENPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and environment variables
	}

	// Unmarshal config
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Storage defaults
	v.SetDefault("storage.type", "bolt")
	v.SetDefault("storage.path", "/var/lib/screenpulse/screenpulse.bolt")
	v.SetDefault("storage.redis.host", "127.0.0.1")
	v.SetDefault("storage.redis.port", 6379)
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.pool_size", 10)
	v.SetDefault("storage.redis.min_idle_conns", 2)
	v.SetDefault("storage.redis.dial_timeout", "5s")
	v.SetDefault("storage.redis.read_timeout", "3s")
	v.SetDefault("storage.redis.write_timeout", "3s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Feed defaults
	v.SetDefault("feed.snapshot_path", "/var/lib/screenpulse/usage.json")
	v.SetDefault("feed.notifications_path", "/var/lib/screenpulse/notifications.jsonl")

	// Goal defaults match the settings-store defaults
	v.SetDefault("goals.study_target_minutes", 60)
	v.SetDefault("goals.media_limit_minutes", 120)

	// Report defaults
	v.SetDefault("report.limit", 45)
	v.SetDefault("report.output_dir", ".")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.addr", "127.0.0.1:9311")

	// Retention defaults
	v.SetDefault("retention.enabled", false)
	v.SetDefault("retention.days", 90)
	v.SetDefault("retention.sweep_time", "00:00")
}

// validate validates the configuration
func validate(cfg *Config) error {
	switch cfg.Storage.Type {
	case "", "bolt":
		cfg.Storage.Type = "bolt"
		if strings.TrimSpace(cfg.Storage.Path) == "" {
			return fmt.Errorf("storage path is required")
		}
	case "redis":
		if cfg.Storage.Redis.Host == "" {
			return fmt.Errorf("redis host is required")
		}
	default:
		return fmt.Errorf("unknown storage type: %s", cfg.Storage.Type)
	}

	if cfg.Goals.StudyTargetMinutes <= 0 {
		return fmt.Errorf("study target must be positive, got %d", cfg.Goals.StudyTargetMinutes)
	}
	if cfg.Goals.MediaLimitMinutes <= 0 {
		return fmt.Errorf("media limit must be positive, got %d", cfg.Goals.MediaLimitMinutes)
	}

	if cfg.Report.Limit <= 0 {
		return fmt.Errorf("report limit must be positive, got %d", cfg.Report.Limit)
	}

	if cfg.Retention.Enabled && cfg.Retention.Days <= 0 {
		return fmt.Errorf("retention days must be positive, got %d", cfg.Retention.Days)
	}

	return nil
}

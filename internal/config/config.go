package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Seeder   SeederConfig   `mapstructure:"seeder"`
	Stats    StatsConfig    `mapstructure:"stats"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// StorageConfig holds the event slot configuration
type StorageConfig struct {
	Backend         string `mapstructure:"backend"` // file, sqlite or memory
	FilePath        string `mapstructure:"file_path"`
	DBPath          string `mapstructure:"db_path"`
	Key             string `mapstructure:"key"`
	IDStrategy      string `mapstructure:"id_strategy"` // counter, length or uuid
	FilePermissions uint32 `mapstructure:"file_permissions"`
	DirPermissions  uint32 `mapstructure:"dir_permissions"`
}

// SeederConfig holds the default weekday ride
type SeederConfig struct {
	Enabled     bool     `mapstructure:"enabled"`
	Timezone    string   `mapstructure:"timezone"`
	Title       string   `mapstructure:"title"`
	Name        string   `mapstructure:"name"`
	Description string   `mapstructure:"description"`
	People      []string `mapstructure:"people"`
}

// StatsConfig holds per-category prices. Price keys use underscores in place
// of spaces ("rafa_escola").
type StatsConfig struct {
	Prices   map[string]float64 `mapstructure:"prices"`
	Currency string             `mapstructure:"currency"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables. A missing
// file is not an error: defaults and BOLEIA_* variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("BOLEIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Storage defaults
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.file_path", "./data/events.json")
	v.SetDefault("storage.db_path", "./data/boleia.db")
	v.SetDefault("storage.key", "ourEvents")
	v.SetDefault("storage.id_strategy", "counter")
	v.SetDefault("storage.file_permissions", 0o644)
	v.SetDefault("storage.dir_permissions", 0o755)

	// Seeder defaults
	v.SetDefault("seeder.enabled", true)
	v.SetDefault("seeder.timezone", "Local")
	v.SetDefault("seeder.title", "Boleia 🏎️")
	v.SetDefault("seeder.name", "Boleia")
	v.SetDefault("seeder.description", "O marque veio")
	v.SetDefault("seeder.people", []string{"Jota", "Marques"})

	// Stats defaults
	v.SetDefault("stats.currency", "EUR")

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Storage config
	switch c.Storage.Backend {
	case "file":
		if c.Storage.FilePath == "" {
			return fmt.Errorf("storage.file_path is required for the file backend")
		}
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("storage.db_path is required for the sqlite backend")
		}
		if c.Storage.Key == "" {
			return fmt.Errorf("storage.key is required for the sqlite backend")
		}
	case "memory":
	default:
		return fmt.Errorf("storage.backend must be one of: file, sqlite, memory")
	}
	validStrategies := map[string]bool{"counter": true, "length": true, "uuid": true}
	if !validStrategies[c.Storage.IDStrategy] {
		return fmt.Errorf("storage.id_strategy must be one of: counter, length, uuid")
	}

	// Validate Seeder config
	if c.Seeder.Enabled {
		if _, err := c.Seeder.Location(); err != nil {
			return fmt.Errorf("seeder.timezone is invalid: %w", err)
		}
		if c.Seeder.Title == "" {
			return fmt.Errorf("seeder.title is required when seeder is enabled")
		}
	}

	// Validate Stats config
	for key, price := range c.Stats.Prices {
		if price < 0 {
			return fmt.Errorf("stats.prices.%s must not be negative", key)
		}
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
		if c.Telegram.MaxRetries < 1 {
			return fmt.Errorf("telegram.max_retries must be at least 1")
		}
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// Location resolves the seeder timezone. "Local" and "" mean the host zone.
func (s SeederConfig) Location() (*time.Location, error) {
	if s.Timezone == "" || strings.EqualFold(s.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(s.Timezone)
}

// TitlePrices returns the prices keyed by event title ("rafa escola").
func (s StatsConfig) TitlePrices() map[string]float64 {
	out := make(map[string]float64, len(s.Prices))
	for key, price := range s.Prices {
		out[strings.ReplaceAll(strings.ToLower(key), "_", " ")] = price
	}
	return out
}

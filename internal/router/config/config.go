package config

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config - структура для хранения конфигураций приложения
type Config struct {
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	PostgresConn  string `mapstructure:"POSTGRES_CONN"`
	MigrationURL  string `mapstructure:"MIGRATION_URL"`

	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	Timezone          string        `mapstructure:"TIMEZONE"`
	RequestTTL        time.Duration `mapstructure:"REQUEST_TTL"`
	SlotStepMinutes   int           `mapstructure:"SLOT_STEP_MINUTES"`
	DurationTablePath string        `mapstructure:"DURATION_TABLE_PATH"`
	WorkshopsSeedPath string        `mapstructure:"WORKSHOPS_SEED_PATH"`

	NotifyWebhookURL string        `mapstructure:"NOTIFY_WEBHOOK_URL"`
	NotifyTimeout    time.Duration `mapstructure:"NOTIFY_TIMEOUT"`
}

var defaults = map[string]any{
	"SERVER_ADDRESS":      "0.0.0.0:8080",
	"STORAGE_DRIVER":      StoragePostgres,
	"POSTGRES_CONN":       "",
	"MIGRATION_URL":       "file://migrations",
	"JWT_SECRET":          "",
	"REQUEST_TIMEOUT":     "5s",
	"TIMEZONE":            "UTC",
	"REQUEST_TTL":         "72h",
	"SLOT_STEP_MINUTES":   60,
	"DURATION_TABLE_PATH": "",
	"WORKSHOPS_SEED_PATH": "",
	"NOTIFY_WEBHOOK_URL":  "",
	"NOTIFY_TIMEOUT":      "5s",
}

// LoadConfig загружает конфигурацию из файла app.env в каталоге path.
// Переменные окружения перекрывают значения из файла, файл необязателен.
func LoadConfig(path string) (cfg Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
	}
	if err = v.Unmarshal(&cfg); err != nil {
		return
	}
	err = cfg.Validate()
	return
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if c.PostgresConn == "" {
			return fmt.Errorf("POSTGRES_CONN is required for storage driver %q", c.StorageDriver)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q, expected %s or %s", c.StorageDriver, StoragePostgres, StorageMemory)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.SlotStepMinutes <= 0 {
		return fmt.Errorf("SLOT_STEP_MINUTES must be positive, got %d", c.SlotStepMinutes)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location возвращает часовой пояс расписания.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SlotStep возвращает шаг перебора окон.
func (c Config) SlotStep() time.Duration {
	return time.Duration(c.SlotStepMinutes) * time.Minute
}

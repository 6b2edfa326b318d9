package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENV" env-default:"development"`
	LogLevel    string `env:"LOG_LEVEL"`
	DBDSN       string `env:"DB_DSN" env-required:"true"`
	RedisAddr   string `env:"REDIS_ADDR" env-default:"localhost:6379"`

	HTTP HTTPServer

	TelegramToken     string `env:"TELEGRAM_TOKEN"`
	GoogleAccessToken string `env:"GOOGLE_ACCESS_TOKEN"`

	DefaultTimezone string        `env:"DEFAULT_TIMEZONE" env-default:"Asia/Seoul"`
	SlotLockTTL     time.Duration `env:"SLOT_LOCK_TTL" env-default:"30s"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL" env-default:"1h"`

	RecordingsFolder       string `env:"RECORDINGS_FOLDER"`
	RecordingsInstructorID int64  `env:"RECORDINGS_INSTRUCTOR_ID" env-default:"0"`

	// Пусто - используются встроенные миграции
	MigrationsDir string `env:"MIGRATIONS_DIR"`
}

type HTTPServer struct {
	Address         string        `env:"HTTP_ADDR" env-default:":8080"`
	Timeout         time.Duration `env:"HTTP_TIMEOUT" env-default:"10s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"15s"`
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Location часовой пояс по умолчанию для занятий без своего timezone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.DefaultTimezone)
	if err != nil {
		return nil, fmt.Errorf("load default timezone %q: %w", c.DefaultTimezone, err)
	}
	return loc, nil
}

func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

func (c *Config) GoogleEnabled() bool {
	return c.GoogleAccessToken != ""
}

// RecordingSweepEnabled сопоставление записей требует инструктора и Google
func (c *Config) RecordingSweepEnabled() bool {
	return c.GoogleEnabled() && c.RecordingsInstructorID != 0
}

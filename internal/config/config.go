package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

type Config struct {
	Port          string
	AllowOrigins  string
	ReqTimeoutSec int

	DBDriver   string // postgres or sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	LogLevel  string
	LogFormat string // json or text

	DefaultCurrency   string
	RecurringSchedule string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func duration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func Load() *Config {
	return &Config{
		Port:          getenv("PORT", "8080"),
		AllowOrigins:  getenv("ALLOW_ORIGINS", "*"),
		ReqTimeoutSec: atoi("REQUEST_TIMEOUT_SECONDS", 30),

		DBDriver:   strings.ToLower(getenv("DB_DRIVER", "postgres")),
		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPassword: getenv("DB_PASSWORD", ""),
		DBName:     getenv("DB_NAME", "finance"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),
		SQLitePath: getenv("SQLITE_PATH", "./data/finance.db"),

		JWTSecret:       getenv("JWT_SECRET", ""),
		AccessTokenTTL:  duration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: duration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(getenv("LOG_FORMAT", "json")),

		DefaultCurrency:   strings.ToUpper(getenv("DEFAULT_CURRENCY", "USD")),
		RecurringSchedule: getenv("RECURRING_SCHEDULE", "0 6 * * *"),
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Port == "" {
		problems = append(problems, "PORT is required")
	}
	if c.ReqTimeoutSec <= 0 {
		problems = append(problems, "REQUEST_TIMEOUT_SECONDS must be positive")
	}

	switch c.DBDriver {
	case "postgres":
		if c.DBHost == "" || c.DBName == "" {
			problems = append(problems, "DB_HOST and DB_NAME are required for postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			problems = append(problems, "SQLITE_PATH is required for sqlite")
		}
	default:
		problems = append(problems, fmt.Sprintf("DB_DRIVER %q is not supported (postgres, sqlite)", c.DBDriver))
	}

	if len(c.JWTSecret) < 16 {
		problems = append(problems, "JWT_SECRET must be at least 16 characters")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		problems = append(problems, "token TTLs must be positive")
	}
	if c.RefreshTokenTTL < c.AccessTokenTTL {
		problems = append(problems, "REFRESH_TOKEN_TTL must not be shorter than ACCESS_TOKEN_TTL")
	}

	if c.LogFormat != "json" && c.LogFormat != "text" {
		problems = append(problems, fmt.Sprintf("LOG_FORMAT %q is not supported (json, text)", c.LogFormat))
	}
	if len(c.DefaultCurrency) != 3 {
		problems = append(problems, "DEFAULT_CURRENCY must be a 3-letter code")
	}
	if _, err := cron.ParseStandard(c.RecurringSchedule); err != nil {
		problems = append(problems, fmt.Sprintf("RECURRING_SCHEDULE is invalid: %v", err))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

// PostgresDSN builds the connection URL from the DB_* settings.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without a zoneinfo database

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken        string
	LogLevel             string
	Environment          string
	Timezone             *time.Location // Reference timezone for all time expressions
	CountdownInterval    time.Duration
	NotifyMaxRetries     uint64
	ArrangementRetention time.Duration
	CronSpecSweep        string // For evicting finished arrangements
	TargetGroups         string // Inline "label=@a @b;label2=@c"
	TargetGroupsFile     string // Optional YAML file with the same mapping
}

// Load reads configuration from environment variables and the given .env files (if present).
// godotenv.Load will not override existing env variables.
func Load(envFiles ...string) (*AppConfig, error) {
	// Errors are ignored if the file doesn't exist.
	_ = godotenv.Load(envFiles...)

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.LogLevel = strings.ToLower(getEnvWithDefault("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getEnvWithDefault("ENVIRONMENT", "development"))

	tz := getEnvWithDefault("TIMEZONE", "Europe/Moscow")
	cfg.Timezone, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}

	cfg.CountdownInterval, err = time.ParseDuration(getEnvWithDefault("COUNTDOWN_INTERVAL", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid COUNTDOWN_INTERVAL: %w", err)
	}
	if cfg.CountdownInterval <= 0 {
		return nil, fmt.Errorf("COUNTDOWN_INTERVAL must be positive")
	}

	cfg.NotifyMaxRetries, err = strconv.ParseUint(getEnvWithDefault("NOTIFY_MAX_RETRIES", "3"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_MAX_RETRIES: %w", err)
	}

	cfg.ArrangementRetention, err = time.ParseDuration(getEnvWithDefault("ARRANGEMENT_RETENTION", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ARRANGEMENT_RETENTION: %w", err)
	}

	cfg.CronSpecSweep = getEnvWithDefault("CRON_SPEC_SWEEP", "*/10 * * * *") // Default: every 10 minutes

	cfg.TargetGroups = os.Getenv("TARGET_GROUPS")
	cfg.TargetGroupsFile = os.Getenv("TARGET_GROUPS_FILE")

	return cfg, nil
}

// getEnvWithDefault returns the value of the environment variable or the default value
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// internal/infra/logger/logger.go
package logger

import (
	"io"
	"os"
	"strings"

	"arrangement_bot/internal/infra/config"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. Components take scoped entries from it via Component.
var Log = logrus.New()

// New builds a logger for the given level and environment. An unknown level falls back to
// info and is reported through the returned logger.
func New(level, environment string, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)

	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = logrus.InfoLevel
		defer l.Warnf("Invalid log level '%s', defaulting to 'info'. Error: %v", level, err)
	}
	l.SetLevel(parsed)

	switch strings.ToLower(environment) {
	case "production", "staging":
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00", // ISO8601
		})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     true,
		})
	}
	return l
}

// Init replaces the global logger with one built from the application configuration.
func Init(cfg *config.AppConfig) {
	Log = New(cfg.LogLevel, cfg.Environment, os.Stdout)
	Log.WithField("level", Log.GetLevel().String()).
		WithField("environment", cfg.Environment).
		Debug("Logger configured")
}

// Component returns an entry scoped to one part of the application.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}

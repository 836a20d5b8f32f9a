package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the logger type handed to every service.
type Logger = *logrus.Logger

// Fields represents structured logging fields.
type Fields = logrus.Fields

// NewLogger creates a JSON logger with the level taken from LOG_LEVEL
// (defaults to info).
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(levelFromEnv())
	return logger
}

// NewTestLogger returns a quiet logger for use in tests.
func NewTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func levelFromEnv() logrus.Level {
	raw := os.Getenv("LOG_LEVEL")
	if raw == "" {
		return logrus.InfoLevel
	}
	level, err := logrus.ParseLevel(raw)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

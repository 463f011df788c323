package logger

import (
	"io"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/sirupsen/logrus"
)

// New creates a logger from the logging section of the config.
// An unparseable level falls back to info; "json" selects the JSON formatter.
//
// Parameters:
//   - cfg: the logging configuration
//
// Returns:
//   - *logrus.Logger: the configured logger writing to stdout
func New(cfg config.Logging) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if strings.ToLower(cfg.Format) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

// NewFromEnv creates a logger from LOG_LEVEL and LOG_FORMAT.
func NewFromEnv() *logrus.Logger {
	return New(config.Logging{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	})
}

// Noop returns a logger that discards everything. Components default to it.
func Noop() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.PanicLevel)
	return log
}

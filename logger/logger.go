// Package logger holds the process-wide logrus instance.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02 15:04:05.000"

var (
	mu     sync.Mutex
	logger *logrus.Logger
)

// Config selects level and output format.
type Config struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json
}

// New builds a logger writing to out. Unknown levels fall back to info.
func New(cfg Config, out io.Writer) *logrus.Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timestampFormat})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: timestampFormat,
			FullTimestamp:   true,
		})
	}

	l.SetOutput(out)
	return l
}

// Init replaces the global logger.
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	logger = New(cfg, os.Stdout)
}

// InitFromEnv reads LOG_LEVEL and LOG_FORMAT.
func InitFromEnv() {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	format := os.Getenv("LOG_FORMAT")
	if format == "" {
		format = "text"
	}
	Init(Config{Level: level, Format: format})
}

// GetLogger returns the global logger, initializing it from the environment on first use.
func GetLogger() *logrus.Logger {
	mu.Lock()
	l := logger
	mu.Unlock()
	if l != nil {
		return l
	}
	InitFromEnv()
	return GetLogger()
}

// WithComponent tags every line with component=name.
func WithComponent(name string) *logrus.Entry {
	return GetLogger().WithField("component", name)
}

// Discard returns an entry that drops everything. Handy as a default.
func Discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

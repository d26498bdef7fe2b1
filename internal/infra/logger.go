package infra

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger constructs the service logger. Development runs get a console
// writer at debug level; everything else emits JSON at info level unless
// LOG_LEVEL overrides it.
func NewLogger(appEnv string) zerolog.Logger {
	level := zerolog.InfoLevel
	if appEnv == "development" {
		level = zerolog.DebugLevel
	}
	if override := strings.TrimSpace(os.Getenv("LOG_LEVEL")); override != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(override)); err == nil {
			level = parsed
		}
	}

	logger := zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", "generation-orchestrator").
		Logger()

	if appEnv == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return logger
}

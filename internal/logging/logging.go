// Package logging builds the process-wide zerolog logger from environment
// configuration (LOG_LEVEL, LOG_FORMAT).
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New creates a logger for the named service. LOG_FORMAT=console switches
// from JSON lines to human-readable console output.
func New(service string) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out = zerolog.New(os.Stdout)
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "console" {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	return out.Level(level).With().
		Timestamp().
		Str("service", service).
		Logger()
}

// Package logging configures the process-wide structured logger.
package logging

import (
	"os"
	"time"

	clog "github.com/charmbracelet/log"
)

// New returns a leveled key-value logger writing to stderr.
func New(level string) *clog.Logger {
	return clog.NewWithOptions(os.Stderr, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           parseLevel(level),
	})
}

func parseLevel(level string) clog.Level {
	switch level {
	case "debug":
		return clog.DebugLevel
	case "warn":
		return clog.WarnLevel
	case "error":
		return clog.ErrorLevel
	default:
		return clog.InfoLevel
	}
}

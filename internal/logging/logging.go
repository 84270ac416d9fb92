// Package logging builds the charmbracelet/log logger shared by the CLI and
// the storage layer. Diagnostics go to stderr; command output never does.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// Options configures New.
type Options struct {
	Level     string // debug, info, warn, error or fatal
	Format    string // text, json or logfmt
	Verbose   bool   // forces debug level and timestamps
	Prefix    string
	Timestamp bool
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	level := ParseLevel(opts.Level)
	if opts.Verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       ParseFormatter(opts.Format),
		Prefix:          opts.Prefix,
		ReportTimestamp: opts.Timestamp || opts.Verbose,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// ParseLevel maps a level name to a log.Level. Unknown names mean warn.
func ParseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.WarnLevel
	}
}

// ParseFormatter maps a format name to a log.Formatter.
func ParseFormatter(format string) log.Formatter {
	switch format {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

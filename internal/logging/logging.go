// Package logging builds the leveled console logger shared by the CLI,
// the store and the HTTP server.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

const prefix = "taskstats"

// Options holds configuration for console logging.
type Options struct {
	Level           log.Level
	ReportTimestamp bool
	JSON            bool
}

// New creates a logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	formatter := log.TextFormatter
	if opts.JSON {
		formatter = log.JSONFormatter
	}
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       formatter,
		ReportTimestamp: opts.ReportTimestamp,
		Prefix:          prefix,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

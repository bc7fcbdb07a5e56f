// internal/cmdutil/log.go

// Package cmdutil holds the diagnostic logger shared by the command.
package cmdutil

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// LogOptions configures NewLogger.
type LogOptions struct {
	Level   string // trace|debug|info|warn|error; empty means info
	NoColor bool
}

// NewLogger returns a console logger writing to w, normally stderr.
func NewLogger(w io.Writer, opt LogOptions) zerolog.Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: opt.NoColor}
	return zerolog.New(cw).Level(ParseLevel(opt.Level)).With().Timestamp().Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// LevelFor picks the level implied by --verbose/--quiet. Quiet wins.
func LevelFor(verbose, quiet bool) string {
	switch {
	case quiet:
		return "warn"
	case verbose:
		return "debug"
	}
	return "info"
}

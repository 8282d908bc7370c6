// Package logging builds the console logger shared by the build, watch and
// PDF commands.
package logging

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Level selects how much is logged.
type Level int

const (
	LevelNormal  Level = iota // info and above
	LevelQuiet                // warnings and errors only
	LevelVerbose              // everything, including per-page debug lines
)

// LevelFromFlags maps the CLI output flags to a Level. Quiet wins.
func LevelFromFlags(quiet, verbose bool) Level {
	switch {
	case quiet:
		return LevelQuiet
	case verbose:
		return LevelVerbose
	default:
		return LevelNormal
	}
}

// New returns a human-readable logger writing to w.
func New(w io.Writer, level Level, noColor bool) zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	}
	return zerolog.New(out).Level(zerologLevel(level)).With().Timestamp().Logger()
}

func zerologLevel(level Level) zerolog.Level {
	switch level {
	case LevelQuiet:
		return zerolog.WarnLevel
	case LevelVerbose:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// WithPass tags every entry of a render pass with a short unique ID, so the
// lines of successive watch rebuilds can be told apart.
func WithPass(logger zerolog.Logger) (zerolog.Logger, string) {
	id := uuid.NewString()[:8]
	return logger.With().Str("pass", id).Logger(), id
}

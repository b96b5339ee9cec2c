// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Options selects the logger output.
type Options struct {
	Level  string // trace, debug, info, warn, error; default info
	Format string // console, json; empty picks console on a terminal
	Out    io.Writer
}

// New returns a logger writing to opts.Out (stderr when nil). An
// unrecognized level falls back to info.
func New(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	zerolog.TimeFieldFormat = time.RFC3339
	tty := terminal(out)
	if console(opts.Format, tty) {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: !tty}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func console(format string, tty bool) bool {
	switch strings.ToLower(format) {
	case "console", "text", "pretty":
		return true
	case "json":
		return false
	}
	return tty
}

func terminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

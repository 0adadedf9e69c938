// Package logging configures the process-wide zerolog logger shared by the
// hook core and the CLI.
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger writes human-readable diagnostics to stderr. Handler failures and
// backend faults go through it; per-event logging stays out of the capture
// path.
var Logger = zerolog.New(zerolog.ConsoleWriter{
	Out:        os.Stderr,
	TimeFormat: "2006-01-02 15:04:05",
}).With().Timestamp().Logger().Level(zerolog.InfoLevel)

// SetLevel adjusts the global level from a textual name (trace, debug, info,
// warn, error).
func SetLevel(level string) error {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger = Logger.Level(l)
	return nil
}

// Package logging provides the process-wide debug logger. Logging is
// off unless SIZEMAP_DEBUG is set, since stderr belongs to the TUI;
// when enabled it writes structured lines to a rotated file.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the shared logger. It discards everything unless debug logging
// was enabled at startup.
var Log = zerolog.Nop()

// Enabled reports whether debug logging is active.
var Enabled bool

func init() {
	if os.Getenv("SIZEMAP_DEBUG") == "" {
		return
	}
	Enabled = true

	var out io.Writer = &lumberjack.Logger{
		Filename:   logPath(),
		MaxSize:    10, // megabytes
		MaxBackups: 2,
	}

	Log = zerolog.New(out).With().Timestamp().Logger().Level(zerolog.DebugLevel)
}

func logPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "sizemap-debug.log"
	}
	return filepath.Join(home, ".sizemap", "debug.log")
}

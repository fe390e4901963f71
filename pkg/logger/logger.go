package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the process-wide structured logger.
var Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init configures the global logger for the given component.
// Debug mode switches to a human-readable console writer.
func Init(component string, debug bool) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var output io.Writer = os.Stdout
	if debug {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	Logger = zerolog.New(output).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Str("service", "rukami").
		Str("component", component).
		Logger()

	log.Logger = Logger
}

// SetLevel sets the global log level by name, defaulting to info.
func SetLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	// The instance level caps the global one, so keep it open.
	Logger = Logger.Level(zerolog.TraceLevel)
	log.Logger = Logger
}

// Discard silences all output. Used by tests.
func Discard() {
	Logger = zerolog.Nop()
	log.Logger = Logger
}

package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup builds the root zerolog logger from LOG_LEVEL/LOG_FORMAT config.
// Components (repositories, handlers, the ws monitor) derive sub-loggers
// from the returned instance rather than touching globals.
//   - level: trace, debug, info, warn, error, fatal or panic; bad values fall back to info
//   - format: "json" for production, "pretty" for a human-readable console writer
func Setup(level, format string) zerolog.Logger {
	var writer io.Writer

	if format == "pretty" {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	} else {
		writer = os.Stdout
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(lvl)

	log := zerolog.New(writer).
		With().
		Timestamp().
		Caller().
		Logger()

	return log
}

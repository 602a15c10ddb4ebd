package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global logger and returns it. Debug output is
// human readable; otherwise JSON lines are written to stderr.
func Setup(debug bool) zerolog.Logger {
	l := New(os.Stderr, debug)
	log.Logger = l
	return l
}

func New(out io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Caller().Logger()

	if debug {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Stack().Logger()
	}

	return logger
}

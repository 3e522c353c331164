package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/df07/go-shadowcaster/pkg/core"
)

// New creates a zerolog logger writing to w at the given level. Console
// output is human readable; otherwise one JSON object is written per line.
func New(w io.Writer, level string, console bool) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// ParseLevel accepts zerolog level names; empty means info
func ParseLevel(level string) (zerolog.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

// ZerologLogger adapts a zerolog.Logger to core.Logger. Printf messages are
// logged at info level with trailing newlines removed.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger wraps log as a core.Logger
func NewZerologLogger(log zerolog.Logger) core.Logger {
	return &ZerologLogger{log: log}
}

func (zl *ZerologLogger) Printf(format string, args ...interface{}) {
	zl.log.Info().Msg(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

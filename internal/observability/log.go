package observability

import (
	"io"
	"log/slog"
	"math"
	"strings"
)

var noopLogger *slog.Logger

// NoopLogger returns a disabled Logger
func NoopLogger() *slog.Logger {
	return noopLogger
}

// LevelOff is the level name for which NewLogger returns NoopLogger.
const LevelOff = "off"

// NewLogger returns a text Logger writing to w at the named level.
// level is one of debug, info, warn, error or off. The empty string means info.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	if LevelOff == strings.ToLower(level) {
		return NoopLogger(), nil
	}
	var lvl slog.Level
	if "" != level {
		err := lvl.UnmarshalText([]byte(strings.ToUpper(level)))
		if nil != err {
			return nil, err
		}
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func init() {
	hdlr := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)})
	noopLogger = slog.New(hdlr)
}

package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Log formats accepted by newLogger.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLogLevel maps a level name, in any case, to its slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	level, ok := logLevels[strings.ToLower(s)]
	if !ok {
		return slog.LevelInfo, errors.New("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	return level, nil
}

// ParseLogFormat normalizes a log format name.
func ParseLogFormat(s string) (string, error) {
	switch f := strings.ToLower(s); f {
	case LogFormatText, LogFormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("invalid log-format: must be '%s' or '%s'", LogFormatText, LogFormatJSON)
}

// newLogger creates an isolated slog.Logger; it never sets the global one.
// Unknown levels fall back to info and unknown formats to text, since the
// CLI has already rejected them.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	level, _ := ParseLogLevel(levelStr)
	format, err := ParseLogFormat(formatStr)
	if err != nil {
		format = LogFormatText
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if format == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(outW, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(outW, handlerOpts))
}

// Package log creates [slog.Handler] instances for the CLI.
package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

var (
	ErrInvalidLevel  = errors.New("invalid log level")
	ErrInvalidFormat = errors.New("invalid log format")
)

// Format selects the output encoding of a handler.
type Format string

const (
	FormatText   Format = "text"
	FormatLogfmt Format = "logfmt"
	FormatJSON   Format = "json"
)

// GetFormat parses a format name into a [Format].
func GetFormat(format string) (Format, error) {
	switch strings.ToLower(format) {
	case "text", "console", "":
		return FormatText, nil
	case "logfmt":
		return FormatLogfmt, nil
	case "json":
		return FormatJSON, nil
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidFormat, format)
}

// GetLevel parses a level name into a [slog.Level]. Names from other logging
// conventions (panic, fatal, trace) map to the nearest slog level.
func GetLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "panic", "fatal", "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "debug", "trace":
		return slog.LevelDebug, nil
	}

	return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLevel, level)
}

// CreateHandler creates a [slog.Handler] writing to w.
func CreateHandler(w io.Writer, level slog.Level, format Format) slog.Handler {
	opts := charmlog.Options{
		Level:           charmlog.Level(level),
		ReportTimestamp: true,
	}

	switch format {
	case FormatText:
		opts.Formatter = charmlog.TextFormatter
	case FormatLogfmt:
		opts.Formatter = charmlog.LogfmtFormatter
	case FormatJSON:
		opts.Formatter = charmlog.JSONFormatter
	}

	return charmlog.NewWithOptions(w, opts)
}

// CreateHandlerWithStrings parses level and format names and creates a
// [slog.Handler] writing to w.
func CreateHandlerWithStrings(w io.Writer, level, format string) (slog.Handler, error) {
	slogLevel, err := GetLevel(level)
	if err != nil {
		return nil, err
	}

	logFormat, err := GetFormat(format)
	if err != nil {
		return nil, err
	}

	return CreateHandler(w, slogLevel, logFormat), nil
}

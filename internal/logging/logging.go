// Package logging builds the slog loggers used for diagnostics.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Format is the output format for logs.
type Format int

const (
	// FormatText outputs human-readable key=value logs.
	FormatText Format = iota
	// FormatJSON outputs one JSON object per line.
	FormatJSON
)

// ParseLevel parses debug, info, warn or error (case-insensitive).
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level: %s", s)
}

// ParseFormat parses text or json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatText, fmt.Errorf("unknown log format: %s", s)
}

// New returns a logger writing to w at the given level.
func New(w io.Writer, level slog.Level, format Format) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// FromStrings combines ParseLevel, ParseFormat and New. Unknown values fall
// back to info/text and are reported in err alongside the usable logger.
func FromStrings(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, lerr := ParseLevel(level)
	f, ferr := ParseFormat(format)
	l := New(w, lvl, f)
	if lerr != nil {
		return l, lerr
	}
	return l, ferr
}

// Discard is a logger that drops every record.
func Discard() *slog.Logger {
	return New(io.Discard, slog.LevelError+4, FormatText)
}

// Package logging builds the process-wide slog handler and routes
// client-go's klog output through it.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"k8s.io/klog/v2"

	"github.com/otterscale/cassandra-operator/internal/config"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ParseLevel converts a case-insensitive level name into a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// NewHandler returns a tint handler for the text format (human
// console) or a JSON handler for log shipping.
func NewHandler(w io.Writer, level slog.Level, format string) (slog.Handler, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.DateTime,
		}), nil
	case FormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}
}

// Setup installs the configured logger as slog's default and as
// klog's backend so that client-go messages share the same format.
func Setup(conf *config.Config) (*slog.Logger, error) {
	level, err := ParseLevel(conf.LogLevel())
	if err != nil {
		return nil, err
	}
	handler, err := NewHandler(os.Stderr, level, conf.LogFormat())
	if err != nil {
		return nil, err
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	klog.SetSlogLogger(logger.With("component", "client-go"))
	return logger, nil
}

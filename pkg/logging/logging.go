// Package logging configures structured logging for badgeboard.
//
// The library packages log through log/slog and never configure it; the
// badgectl binary calls Setup once at startup. Levels from most to least
// verbose: DEBUG, INFO, WARN, ERROR.
//
// Usage:
//
//	logging.Setup(logging.Options{Level: "debug", Format: "json"})
//	log := logging.Component("realtime")
//	log.Debug("frame received", "type", "badge_awarded")
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Environment variables consulted by FromEnv.
const (
	EnvLevel  = "BADGEBOARD_LOG_LEVEL"
	EnvFormat = "BADGEBOARD_LOG_FORMAT"
)

// Options controls how logging is configured.
type Options struct {
	Level  string    // "debug", "info", "warn", "error" (default: "info")
	Format string    // "text" or "json" (default: "text")
	Output io.Writer // default: os.Stderr, so command output on stdout stays clean
}

// FromEnv overlays BADGEBOARD_LOG_LEVEL / BADGEBOARD_LOG_FORMAT onto opts.
func FromEnv(opts Options) Options {
	if v := os.Getenv(EnvLevel); v != "" {
		opts.Level = v
	}
	if v := os.Getenv(EnvFormat); v != "" {
		opts.Format = v
	}
	return opts
}

// ParseLevel converts a string level name to slog.Level.
// Returns slog.LevelInfo for unrecognized values.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewHandler builds the slog handler described by opts without installing it.
func NewHandler(opts Options) (slog.Handler, error) {
	if err := Validate(opts.Level); err != nil {
		return nil, err
	}
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, err
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := ParseLevel(opts.Level)
	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	if strings.EqualFold(opts.Format, "json") {
		return slog.NewJSONHandler(out, handlerOpts), nil
	}
	return slog.NewTextHandler(out, handlerOpts), nil
}

// Setup installs the handler described by opts as the slog default.
// Safe to call early in main() before any logging occurs.
func Setup(opts Options) error {
	h, err := NewHandler(opts)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(h))
	return nil
}

// Component returns the default logger tagged with a component name.
func Component(name string) *slog.Logger {
	return slog.Default().With("component", name)
}

// LevelNames returns all valid level names, useful for --help text.
func LevelNames() string {
	return "debug, info, warn, error"
}

// Validate returns an error if the level string is not recognized.
func Validate(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "info", "warn", "warning", "error", "":
		return nil
	default:
		return fmt.Errorf("unknown log level %q (valid: %s)", level, LevelNames())
	}
}

// ValidateFormat returns an error if the format is neither text nor json.
func ValidateFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text", "json", "":
		return nil
	default:
		return fmt.Errorf("unknown log format %q (valid: text, json)", format)
	}
}

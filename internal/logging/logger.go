// Package logging provides structured logging for keylimegen.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Format selects the log encoding.
type Format string

const (
	// FormatAuto uses console output on a terminal and JSON otherwise.
	FormatAuto Format = "auto"

	// FormatConsole is human-readable, colored output.
	FormatConsole Format = "console"

	// FormatJSON is one JSON object per line.
	FormatJSON Format = "json"
)

// Standard field names for consistent logging across packages.
const (
	FieldTemplate  = "template"
	FieldArtifact  = "artifact"
	FieldOrdinal   = "ordinal"
	FieldPath      = "path"
	FieldMode      = "mode"
	FieldNamespace = "namespace"
	FieldCount     = "count"
)

// Config holds the configuration for the logger.
type Config struct {
	// Level is the minimum enabled logging level (debug, info, warn, error).
	Level string

	// Format determines the encoding (auto, console, json).
	Format Format

	// Output receives log lines. Defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns quiet console-friendly defaults for CLI use.
func DefaultConfig() Config {
	return Config{
		Level:  "warn",
		Format: FormatAuto,
		Output: os.Stderr,
	}
}

// NewLogger creates a zap logger based on the provided configuration.
func NewLogger(cfg Config) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	format, err := resolveFormat(cfg.Format, out)
	if err != nil {
		return nil, err
	}

	var encoder zapcore.Encoder
	if format == FormatJSON {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), zap.NewAtomicLevelAt(level))
	return zap.New(core), nil
}

// ParseLevel converts a string level to zapcore.Level.
func ParseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.WarnLevel, nil
	}
	return zapcore.ParseLevel(strings.ToLower(level))
}

// resolveFormat validates f and resolves FormatAuto against the output.
func resolveFormat(f Format, out io.Writer) (Format, error) {
	switch f {
	case FormatConsole, FormatJSON:
		return f, nil
	case FormatAuto, "":
		if file, ok := out.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
			return FormatConsole, nil
		}
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid log format %q (expected auto, console, or json)", f)
	}
}

// OrNop returns logger, or a no-op logger when logger is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

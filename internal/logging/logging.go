// Package logging builds the process-wide zap logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a production-ready structured logger configured for JSON output.
// The returned level can be raised or lowered after startup, once the log.level
// property has been resolved.
func New() (*zap.Logger, zap.AtomicLevel, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.StacktraceKey = "stacktrace"
	cfg.DisableStacktrace = false

	logger, err := cfg.Build()
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("build logger: %w", err)
	}
	return logger, cfg.Level, nil
}

// SetLevel applies a textual level (debug, info, warn, error) to level.
func SetLevel(level zap.AtomicLevel, text string) error {
	parsed, err := zapcore.ParseLevel(text)
	if err != nil {
		return fmt.Errorf("set log level: %w", err)
	}
	level.SetLevel(parsed)
	return nil
}

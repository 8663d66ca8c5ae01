package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger sets up structured logging with zap. Production uses the JSON
// config; every other environment gets the console development config.
// The returned level can be changed at runtime.
func NewLogger(level, environment string) (*zap.Logger, zap.AtomicLevel, error) {
	var zapConfig zap.Config
	if environment == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	atomic := zap.NewAtomicLevelAt(ParseLevel(level))
	zapConfig.Level = atomic

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, atomic, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, atomic, nil
}

// ParseLevel maps a level name onto a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// Package logging builds the application's zap logger from configuration.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/km-arc/go-laravel-container/framework/config"
)

// New returns a logger for cfg. Format "json" produces production-style
// structured output; anything else uses the human-readable console encoder.
func New(cfg config.LogConfig, appName string) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = level
	zc.DisableStacktrace = true

	log, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build: %w", err)
	}
	if appName != "" {
		log = log.With(zap.String("app", appName))
	}
	return log, nil
}

// Must is like New but falls back to a no-op logger when cfg is invalid.
func Must(cfg config.LogConfig, appName string) *zap.Logger {
	log, err := New(cfg, appName)
	if err != nil {
		return zap.NewNop()
	}
	return log
}

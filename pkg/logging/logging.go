// Package logging builds the zap loggers used by the commands. While a
// session holds the terminal in raw mode, log lines on stderr would corrupt
// the display, so session diagnostics go to a file instead.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func level(debug bool) zap.AtomicLevel {
	if debug {
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zap.NewAtomicLevelAt(zap.InfoLevel)
}

// Console returns a stderr console logger for commands that do not hold the
// terminal in raw mode.
func Console(debug bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = level(debug)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	logger, err := cfg.Build()
	if err != nil {
		// The development config cannot fail to build; fall back anyway.
		return zap.NewNop()
	}
	return logger
}

// SessionFile returns a logger writing to path for use during a raw-mode
// session, plus a cleanup function that flushes and closes it.
func SessionFile(path string, debug bool) (*zap.Logger, func(), error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = level(debug)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()

	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session log %s: %w", path, err)
	}
	return logger, func() { logger.Sync() }, nil
}

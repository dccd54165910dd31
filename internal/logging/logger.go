// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogFileName is the log file written under the state directory.
const LogFileName = "sfkit.log"

// NewLogger builds the diagnostic logger. Verbose runs log at debug level to
// stderr; otherwise info and above go to <stateDir>/sfkit.log so the terminal
// stays clean. An empty stateDir disables file logging.
func NewLogger(verbose bool, stateDir string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	switch {
	case verbose:
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		config.Encoding = "console"
		config.OutputPaths = []string{"stderr"}
	case stateDir != "":
		config.OutputPaths = []string{filepath.Join(stateDir, LogFileName)}
	default:
		return zap.NewNop(), nil
	}
	config.ErrorOutputPaths = []string{"stderr"}
	return config.Build()
}

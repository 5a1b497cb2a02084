// Package log wires the process-wide zap logger: JSON records to a file,
// human-readable output on the console.
package log

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger   *zap.Logger
	fallback sync.Once
)

const logFileName = "inferd.log"

// InitLogger builds the global logger. logDir may be empty, in which case the
// file core lands in the current directory.
func InitLogger(logDir string) {
	if logDir == "" {
		logDir = "."
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		panic("unable to create log directory: " + err.Error())
	}

	logFilePath := filepath.Join(logDir, logFileName)
	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		panic("unable to open log file: " + err.Error())
	}

	fileSyncer := zapcore.AddSync(file)
	consoleSyncer := zapcore.AddSync(os.Stdout)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileSyncer, zap.DebugLevel),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), consoleSyncer, zap.InfoLevel),
	)

	logger = zap.New(core, zap.AddCaller())
}

// GetLogger returns the global logger. Before InitLogger runs (tests, library
// use) it falls back to a console-only logger.
func GetLogger() *zap.Logger {
	if logger == nil {
		fallback.Do(func() {
			if logger == nil {
				encoderConfig := zap.NewProductionEncoderConfig()
				encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
				core := zapcore.NewCore(
					zapcore.NewConsoleEncoder(encoderConfig),
					zapcore.AddSync(os.Stdout),
					zap.InfoLevel,
				)
				logger = zap.New(core)
			}
		})
	}
	return logger
}

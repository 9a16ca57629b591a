package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger  = zap.NewNop().Sugar()
	logFile *os.File
)

// DefaultLogPath returns the daily log file inside dir
func DefaultLogPath(dir string) string {
	return filepath.Join(dir, fmt.Sprintf("udaan-chat-%s.log", time.Now().Format("2006-01-02")))
}

// Init opens the log file and installs a JSON file logger at the given level.
// The terminal UI owns stdout, so logs only ever go to the file.
func Init(path, level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), lvl)

	logFile = f
	logger = zap.New(core).Sugar()
	logger.Infof("=== Udaan Chat Log Started ===")

	return nil
}

// Use installs an existing logger, e.g. zaptest's in tests
func Use(l *zap.Logger) {
	logger = l.Sugar()
}

// Debug logs a debug message
func Debug(format string, v ...interface{}) {
	logger.Debugf(format, v...)
}

// Info logs an info message
func Info(format string, v ...interface{}) {
	logger.Infof(format, v...)
}

// Warn logs a warning
func Warn(format string, v ...interface{}) {
	logger.Warnf(format, v...)
}

// Error logs an error message
func Error(format string, v ...interface{}) {
	logger.Errorf(format, v...)
}

// Close flushes and closes the log file
func Close() {
	if logFile == nil {
		return
	}
	logger.Infof("=== Udaan Chat Log Ended ===")
	_ = logger.Sync()
	logFile.Close()
	logFile = nil
	logger = zap.NewNop().Sugar()
}

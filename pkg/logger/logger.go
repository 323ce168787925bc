package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// Package logger is a thin wrapper around logrus providing the printf-style
// surface used across gitseer, plus module-tagged variants (InfoX etc.) so
// subsystem logs can be filtered by a "module" field.

var (
	mu   sync.Mutex
	log  = logrus.New()
	file *os.File
)

func init() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	log.SetLevel(logrus.InfoLevel)
}

// InitLog redirects logging to the given file path (in addition to stderr).
// The parent directory is created if missing.
func InitLog(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %q: %w", path, err)
	}
	file = f
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return nil
}

// FlushLog closes the log file, if any.
func FlushLog() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		_ = file.Sync()
		_ = file.Close()
		file = nil
		log.SetOutput(os.Stderr)
	}
}

// SetDebug toggles debug-level output.
func SetDebug(enabled bool) {
	if enabled {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
}

func Debug(format string, args ...interface{}) { log.Debugf(format, args...) }
func Info(format string, args ...interface{})  { log.Infof(format, args...) }
func Warn(format string, args ...interface{})  { log.Warnf(format, args...) }
func Error(format string, args ...interface{}) { log.Errorf(format, args...) }

// DebugX logs a debug message tagged with a module name.
func DebugX(module, format string, args ...interface{}) {
	log.WithField("module", module).Debugf(format, args...)
}

// InfoX logs an info message tagged with a module name.
func InfoX(module, format string, args ...interface{}) {
	log.WithField("module", module).Infof(format, args...)
}

// WarnX logs a warning tagged with a module name.
func WarnX(module, format string, args ...interface{}) {
	log.WithField("module", module).Warnf(format, args...)
}

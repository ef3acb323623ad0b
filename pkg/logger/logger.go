// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package logger

import (
	"log"
	"os"
	"sync"
)

var (
	mu       sync.RWMutex
	loggers  []Logger
	fallback = NewStdLogger(os.Stderr, "", log.LstdFlags, InfoLevel)
)

type Logger interface {
	Debugf(format string, args ...any)
	Debug(args ...any)
	Infof(format string, args ...any)
	Info(args ...any)
	Warnf(format string, args ...any)
	Warn(args ...any)
	Errorf(format string, args ...any)
	Error(args ...any)
	Fatalf(format string, args ...any)
	Fatal(args ...any)
}

type syncer interface {
	Sync() error
}

// InitDefaultLogger initialize the logger
func InitDefaultLogger(config *Config) error {
	baseLogger, err := NewZapLoggerWithConfig(config)
	if err != nil {
		return err
	}
	SetLogger(baseLogger)
	return nil
}

// SetLogger replaces every registered logger with the given ones.
func SetLogger(logger ...Logger) {
	mu.Lock()
	loggers = append([]Logger(nil), logger...)
	mu.Unlock()
}

// AddLogger registers additional loggers.
func AddLogger(logger ...Logger) {
	mu.Lock()
	loggers = append(loggers, logger...)
	mu.Unlock()
}

// Sync flushes loggers that buffer output.
func Sync() {
	for _, l := range current() {
		if s, ok := l.(syncer); ok {
			_ = s.Sync()
		}
	}
}

func current() []Logger {
	mu.RLock()
	defer mu.RUnlock()
	if len(loggers) == 0 {
		return []Logger{fallback}
	}
	return loggers
}

// Log writes message at the given severity.
func Log(level Level, message string) {
	switch level {
	case TraceLevel, DebugLevel:
		Debug(message)
	case InfoLevel:
		Info(message)
	case WarnLevel:
		Warn(message)
	case ErrorLevel:
		Error(message)
	case FatalLevel:
		Fatal(message)
	default:
		Info(message)
	}
}

func Debugf(msg string, fields ...any) {
	for _, logger := range current() {
		logger.Debugf(msg, fields...)
	}
}

func Debug(fields ...any) {
	for _, logger := range current() {
		logger.Debug(fields...)
	}
}

func Infof(msg string, fields ...any) {
	for _, logger := range current() {
		logger.Infof(msg, fields...)
	}
}

func Info(fields ...any) {
	for _, logger := range current() {
		logger.Info(fields...)
	}
}

func Warnf(msg string, fields ...any) {
	for _, logger := range current() {
		logger.Warnf(msg, fields...)
	}
}

func Warn(fields ...any) {
	for _, logger := range current() {
		logger.Warn(fields...)
	}
}

func Errorf(msg string, fields ...any) {
	for _, logger := range current() {
		logger.Errorf(msg, fields...)
	}
}

func Error(fields ...any) {
	for _, logger := range current() {
		logger.Error(fields...)
	}
}

func Fatalf(msg string, fields ...any) {
	for _, logger := range current() {
		logger.Fatalf(msg, fields...)
	}
	os.Exit(1)
}

func Fatal(fields ...any) {
	for _, logger := range current() {
		logger.Fatal(fields...)
	}
	os.Exit(1)
}

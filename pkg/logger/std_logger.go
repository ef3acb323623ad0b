// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package logger

import (
	"io"
	"log"
)

type stdLogger struct {
	logger *log.Logger
	level  Level
}

// NewStdLogger returns a Logger on top of the standard library log package.
// Messages below level are dropped.
func NewStdLogger(output io.Writer, prefix string, flag int, level Level) Logger {
	return &stdLogger{
		logger: log.New(output, prefix, flag),
		level:  level,
	}
}

func (l *stdLogger) printf(level Level, tag, format string, args ...any) {
	if level < l.level {
		return
	}
	l.logger.Printf(tag+" "+format, args...)
}

func (l *stdLogger) print(level Level, tag string, args ...any) {
	if level < l.level {
		return
	}
	l.logger.Print(append([]any{tag + " "}, args...)...)
}

func (l *stdLogger) Debugf(format string, args ...any) {
	l.printf(DebugLevel, "[DEBUG]", format, args...)
}

func (l *stdLogger) Debug(args ...any) {
	l.print(DebugLevel, "[DEBUG]", args...)
}

func (l *stdLogger) Infof(format string, args ...any) {
	l.printf(InfoLevel, "[INFO]", format, args...)
}

func (l *stdLogger) Info(args ...any) {
	l.print(InfoLevel, "[INFO]", args...)
}

func (l *stdLogger) Warnf(format string, args ...any) {
	l.printf(WarnLevel, "[WARN]", format, args...)
}

func (l *stdLogger) Warn(args ...any) {
	l.print(WarnLevel, "[WARN]", args...)
}

func (l *stdLogger) Errorf(format string, args ...any) {
	l.printf(ErrorLevel, "[ERROR]", format, args...)
}

func (l *stdLogger) Error(args ...any) {
	l.print(ErrorLevel, "[ERROR]", args...)
}

func (l *stdLogger) Fatalf(format string, args ...any) {
	l.logger.Fatalf("[FATAL] "+format, args...)
}

func (l *stdLogger) Fatal(args ...any) {
	l.logger.Fatal(append([]any{"[FATAL] "}, args...)...)
}

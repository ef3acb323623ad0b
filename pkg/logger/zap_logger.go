// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package logger

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewZapLoggerWithConfig builds a zap backed Logger. Output goes to stdout,
// to a rotated log file, or both, depending on cfg.
func NewZapLoggerWithConfig(cfg *Config) (Logger, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	level := zap.NewAtomicLevelAt(cfg.Level.toZapLevel())
	cores := []zapcore.Core{}

	if cfg.EnableStdout {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level))
	}

	if cfg.EnableFile {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(newRotateWriter(cfg)), level))
	}

	if cfg.EnableErrorFile {
		errorCfg := cfg.Clone()
		errorCfg.BaseName += "-error"
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(newRotateWriter(errorCfg)), zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= zapcore.ErrorLevel
		})))
	}

	if len(cores) == 0 {
		return nil, errors.New("no log output enabled")
	}

	zapLogger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(2)).Sugar()
	return &zapLoggerWrapper{logger: zapLogger}, nil
}

func newRotateWriter(cfg *Config) io.Writer {
	baseName := cfg.BaseName
	if baseName == "" {
		baseName = "linemux"
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, baseName+".log"),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}
}

type zapLoggerWrapper struct {
	logger *zap.SugaredLogger
}

func (z *zapLoggerWrapper) Debugf(format string, args ...any) {
	z.logger.Debugf(format, args...)
}

func (z *zapLoggerWrapper) Debug(args ...any) {
	z.logger.Debug(args...)
}

func (z *zapLoggerWrapper) Infof(format string, args ...any) {
	z.logger.Infof(format, args...)
}

func (z *zapLoggerWrapper) Info(args ...any) {
	z.logger.Info(args...)
}

func (z *zapLoggerWrapper) Warnf(format string, args ...any) {
	z.logger.Warnf(format, args...)
}

func (z *zapLoggerWrapper) Warn(args ...any) {
	z.logger.Warn(args...)
}

func (z *zapLoggerWrapper) Errorf(format string, args ...any) {
	z.logger.Errorf(format, args...)
}

func (z *zapLoggerWrapper) Error(args ...any) {
	z.logger.Error(args...)
}

func (z *zapLoggerWrapper) Fatalf(format string, args ...any) {
	z.logger.Fatalf(format, args...)
}

func (z *zapLoggerWrapper) Fatal(args ...any) {
	z.logger.Fatal(args...)
}

func (z *zapLoggerWrapper) Sync() error {
	return z.logger.Sync()
}

// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"github.com/cocowh/linemux/core/charset"
	"github.com/cocowh/linemux/pkg/errors"
	"github.com/cocowh/linemux/pkg/logger"
	"go.uber.org/multierr"
)

const EnvPrefix = "LINEMUX_"

// Loader applies one configuration source on top of cfg.
type Loader interface {
	Load(cfg *Config) error
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:          ":4000",
			WriteTimeoutMs:   5000,
			MaxConnections:   1000,
			BroadcastWorkers: 8,
			Charset:          charset.Default().Name(),
		},
		Client: ClientConfig{
			Host:             "127.0.0.1",
			Port:             4000,
			ConnectTimeoutMs: 5000,
			Charset:          charset.Default().Name(),
		},
		Logger: LoggerConfig{
			Level:        "info",
			Format:       "console",
			LogDir:       "logs",
			BaseName:     "linemux",
			MaxSizeMB:    100,
			MaxAgeDays:   7,
			MaxBackups:   5,
			EnableStdout: true,
		},
		Metrics: MetricsConfig{
			Address:   ":9090",
			Namespace: "linemux",
		},
	}
}

// Load builds a Config from defaults, the file at path (skipped when path is
// empty or the file does not exist) and LINEMUX_ environment overrides, in
// that order, then validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	loaders := []Loader{NewFileLoader(path), NewEnvLoader(EnvPrefix)}
	for _, l := range loaders {
		if err := l.Load(cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid field, not just the first.
func (c *Config) Validate() error {
	var err error
	invalid := func(format string, args ...any) {
		err = multierr.Append(err, errors.ConfigErrorf(errors.ErrCodeConfigInvalid, format, args...))
	}

	if c.Server.ReadTimeoutMs < 0 {
		invalid("server.read_timeout_ms must not be negative: %d", c.Server.ReadTimeoutMs)
	}
	if c.Server.WriteTimeoutMs < 0 {
		invalid("server.write_timeout_ms must not be negative: %d", c.Server.WriteTimeoutMs)
	}
	if c.Server.MaxConnections < 0 {
		invalid("server.max_connections must not be negative: %d", c.Server.MaxConnections)
	}
	if c.Server.BroadcastWorkers < 0 {
		invalid("server.broadcast_workers must not be negative: %d", c.Server.BroadcastWorkers)
	}
	if c.Server.MaxLineLength < 0 {
		invalid("server.max_line_length must not be negative: %d", c.Server.MaxLineLength)
	}
	if _, e := charset.Lookup(c.Server.Charset); e != nil {
		invalid("server.charset: %v", e)
	}

	if c.Client.Port < 0 || c.Client.Port > 65535 {
		invalid("client.port out of range: %d", c.Client.Port)
	}
	if c.Client.ConnectTimeoutMs < 0 {
		invalid("client.connect_timeout_ms must not be negative: %d", c.Client.ConnectTimeoutMs)
	}
	if c.Client.ReadTimeoutMs < 0 {
		invalid("client.read_timeout_ms must not be negative: %d", c.Client.ReadTimeoutMs)
	}
	if _, e := charset.Lookup(c.Client.Charset); e != nil {
		invalid("client.charset: %v", e)
	}

	if _, e := logger.ParseLevel(c.Logger.Level); e != nil {
		invalid("logger.level: %v", e)
	}
	if c.Metrics.Enabled && c.Metrics.Address == "" {
		invalid("metrics.address is required when metrics are enabled")
	}
	return err
}

// LoggerOptions converts the logger section for logger.InitDefaultLogger.
// Level has already been checked by Validate; an unknown value falls back
// to info.
func (c LoggerConfig) LoggerOptions() *logger.Config {
	level, _ := logger.ParseLevel(c.Level)
	return &logger.Config{
		LogDir:          c.LogDir,
		BaseName:        c.BaseName,
		Format:          c.Format,
		Level:           level,
		Compress:        c.Compress,
		MaxSizeMB:       c.MaxSizeMB,
		MaxBackups:      c.MaxBackups,
		MaxAgeDays:      c.MaxAgeDays,
		EnableStdout:    c.EnableStdout,
		EnableFile:      c.EnableFile,
		EnableErrorFile: c.EnableErrorFile,
	}
}

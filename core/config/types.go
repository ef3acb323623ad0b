// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import "time"

type Config struct {
	Server  ServerConfig  `yaml:"server" toml:"server" json:"server"`
	Client  ClientConfig  `yaml:"client" toml:"client" json:"client"`
	Logger  LoggerConfig  `yaml:"logger" toml:"logger" json:"logger"`
	Metrics MetricsConfig `yaml:"metrics" toml:"metrics" json:"metrics"`
}

// ServerConfig holds listener settings and the defaults applied to every
// accepted connection. Timeouts are milliseconds; 0 disables them.
type ServerConfig struct {
	Address          string `yaml:"address" toml:"address" json:"address"`
	ReadTimeoutMs    int    `yaml:"read_timeout_ms" toml:"read_timeout_ms" json:"read_timeout_ms"`
	WriteTimeoutMs   int    `yaml:"write_timeout_ms" toml:"write_timeout_ms" json:"write_timeout_ms"`
	MaxConnections   int    `yaml:"max_connections" toml:"max_connections" json:"max_connections"`
	MaxLineLength    int    `yaml:"max_line_length" toml:"max_line_length" json:"max_line_length"`
	BroadcastWorkers int    `yaml:"broadcast_workers" toml:"broadcast_workers" json:"broadcast_workers"`
	Charset          string `yaml:"charset" toml:"charset" json:"charset"`
}

func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMs) * time.Millisecond
}

func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutMs) * time.Millisecond
}

type ClientConfig struct {
	Host             string `yaml:"host" toml:"host" json:"host"`
	Port             int    `yaml:"port" toml:"port" json:"port"`
	ConnectTimeoutMs int    `yaml:"connect_timeout_ms" toml:"connect_timeout_ms" json:"connect_timeout_ms"`
	ReadTimeoutMs    int    `yaml:"read_timeout_ms" toml:"read_timeout_ms" json:"read_timeout_ms"`
	Charset          string `yaml:"charset" toml:"charset" json:"charset"`
}

func (c ClientConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMs) * time.Millisecond
}

func (c ClientConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMs) * time.Millisecond
}

type LoggerConfig struct {
	Level           string `yaml:"level" toml:"level" json:"level"`
	Format          string `yaml:"format" toml:"format" json:"format"`
	LogDir          string `yaml:"log_dir" toml:"log_dir" json:"log_dir"`
	BaseName        string `yaml:"base_name" toml:"base_name" json:"base_name"`
	MaxSizeMB       int    `yaml:"max_size_mb" toml:"max_size_mb" json:"max_size_mb"`
	MaxAgeDays      int    `yaml:"max_age_days" toml:"max_age_days" json:"max_age_days"`
	MaxBackups      int    `yaml:"max_backups" toml:"max_backups" json:"max_backups"`
	Compress        bool   `yaml:"compress" toml:"compress" json:"compress"`
	EnableStdout    bool   `yaml:"enable_stdout" toml:"enable_stdout" json:"enable_stdout"`
	EnableFile      bool   `yaml:"enable_file" toml:"enable_file" json:"enable_file"`
	EnableErrorFile bool   `yaml:"enable_error_file" toml:"enable_error_file" json:"enable_error_file"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled" json:"enabled"`
	Address   string `yaml:"address" toml:"address" json:"address"`
	Namespace string `yaml:"namespace" toml:"namespace" json:"namespace"`
}

// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package logger

type Config struct {
	LogDir   string
	BaseName string
	Format   string
	Level    Level

	Compress   bool
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	EnableStdout    bool
	EnableFile      bool
	EnableErrorFile bool
}

func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

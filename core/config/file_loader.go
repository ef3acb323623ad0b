// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	stderrors "errors"
	"io/fs"
	"os"

	"github.com/cocowh/linemux/core/config/parser"
	"github.com/cocowh/linemux/pkg/errors"
)

// FileLoader decodes a yaml, toml or json file over the current values.
// Fields absent from the file keep whatever cfg already held.
type FileLoader struct {
	path     string
	optional bool
}

func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path, optional: true}
}

// Required makes a missing file an error.
func (l *FileLoader) Required() *FileLoader {
	l.optional = false
	return l
}

func (l *FileLoader) Load(cfg *Config) error {
	if l.path == "" {
		return nil
	}
	b, err := os.ReadFile(l.path)
	if err != nil {
		if l.optional && stderrors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.Wrap(err, errors.ErrCodeConfigNotFound, errors.CategoryConfig, errors.LevelError,
			"read config file").WithContext("path", l.path)
	}
	if err := parser.ForPath(l.path).Unmarshal(b, cfg); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigParseError, errors.CategoryConfig, errors.LevelError,
			"parse config file").WithContext("path", l.path)
	}
	return nil
}

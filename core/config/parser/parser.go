// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package parser

import (
	"path/filepath"
	"strings"
)

// Parser decodes a configuration document into v.
type Parser interface {
	Unmarshal(b []byte, v any) error
}

// ForPath picks a parser from the file extension. Unknown extensions are
// treated as YAML.
func ForPath(path string) Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return NewJSONParser()
	case ".toml":
		return NewTOMLParser()
	default:
		return NewYAMLParser()
	}
}

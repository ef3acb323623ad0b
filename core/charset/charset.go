// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package charset resolves character encodings by name and converts between
// them and Go strings.
package charset

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/cocowh/linemux/pkg/errors"
)

// Charset is a named character encoding.
type Charset struct {
	name string
	enc  encoding.Encoding
}

var utf8Charset = &Charset{name: "utf-8", enc: unicode.UTF8}

// Default returns UTF-8, the encoding Go strings use.
func Default() *Charset {
	return utf8Charset
}

// Lookup resolves an encoding by its WHATWG or IANA name, for example
// "utf-8", "iso-8859-1", "windows-1252", "shift_jis" or "utf-16le".
func Lookup(name string) (*Charset, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || key == "utf-8" || key == "utf8" {
		return utf8Charset, nil
	}
	enc, err := htmlindex.Get(key)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeProtocolCharset, errors.CategoryProtocol, errors.LevelError, "unknown charset %q", name)
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = key
	}
	return &Charset{name: canonical, enc: enc}, nil
}

// MustLookup is like Lookup but panics on unknown names.
func MustLookup(name string) *Charset {
	cs, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return cs
}

func (c *Charset) Name() string {
	return c.name
}

func (c *Charset) String() string {
	return c.name
}

// Encode converts s into the bytes of this encoding.
func (c *Charset) Encode(s string) ([]byte, error) {
	if c.enc == unicode.UTF8 {
		return []byte(s), nil
	}
	b, err := c.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeProtocolCharset, errors.CategoryProtocol, errors.LevelWarn, "encode %s", c.name)
	}
	return b, nil
}

// Decode converts bytes of this encoding into a string. Invalid sequences are
// replaced rather than rejected.
func (c *Charset) Decode(b []byte) (string, error) {
	if c.enc == unicode.UTF8 {
		return string(b), nil
	}
	out, err := c.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrCodeProtocolCharset, errors.CategoryProtocol, errors.LevelWarn, "decode %s", c.name)
	}
	return string(out), nil
}

// Terminator returns the encoded form of the line terminator "\n".
func (c *Charset) Terminator() []byte {
	b, err := c.Encode("\n")
	if err != nil || len(b) == 0 {
		return []byte{'\n'}
	}
	return b
}

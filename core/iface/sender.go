// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iface

import (
	"io"

	"github.com/cocowh/linemux/core/charset"
)

// Sender emits and receives newline-delimited text in a configurable charset
// over a pair of byte streams.
type Sender interface {
	// Send writes message followed by a line terminator.
	Send(message string) error
	// ReadLine blocks until a full line is available. It returns io.EOF at
	// end of stream.
	ReadLine() (string, error)
	Charset() *charset.Charset
	SetCharset(cs *charset.Charset)
	// SetNextLineIgnore makes the next ReadLine discard one line.
	SetNextLineIgnore(ignore bool)
	IsNextLineIgnored() bool
	Reader() io.Reader
	Writer() io.Writer
}

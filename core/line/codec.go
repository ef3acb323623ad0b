// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package line frames newline-delimited text over a byte stream pair.
package line

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cocowh/linemux/core/charset"
	"github.com/cocowh/linemux/core/constant"
	"github.com/cocowh/linemux/core/iface"
)

const defaultBufferSize = 4096

var _ iface.Sender = (*Codec)(nil)

// Codec implements iface.Sender on top of an io.Reader and io.Writer. It does
// no event dispatch; callers layer that on top.
//
// ReadLine and Send may be used from different goroutines at the same time.
type Codec struct {
	in  io.Reader
	out io.Writer
	br  *bufio.Reader

	rmu sync.Mutex
	wmu sync.Mutex

	charset       atomic.Pointer[charset.Charset]
	ignoreNext    atomic.Bool
	maxLineLength atomic.Int64
}

func NewCodec(r io.Reader, w io.Writer) *Codec {
	c := &Codec{
		in:  r,
		out: w,
		br:  bufio.NewReaderSize(r, defaultBufferSize),
	}
	c.charset.Store(charset.Default())
	return c
}

func (c *Codec) Charset() *charset.Charset {
	return c.charset.Load()
}

// SetCharset changes the encoding used by subsequent reads and writes. A nil
// charset restores the default.
func (c *Codec) SetCharset(cs *charset.Charset) {
	if cs == nil {
		cs = charset.Default()
	}
	c.charset.Store(cs)
}

func (c *Codec) SetNextLineIgnore(ignore bool) {
	c.ignoreNext.Store(ignore)
}

func (c *Codec) IsNextLineIgnored() bool {
	return c.ignoreNext.Load()
}

// SetMaxLineLength bounds the encoded length of a line, terminator excluded.
// Zero means unbounded.
func (c *Codec) SetMaxLineLength(n int) {
	if n < 0 {
		n = 0
	}
	c.maxLineLength.Store(int64(n))
}

func (c *Codec) MaxLineLength() int {
	return int(c.maxLineLength.Load())
}

func (c *Codec) Reader() io.Reader {
	return c.in
}

func (c *Codec) Writer() io.Writer {
	return c.out
}

// Send encodes message with the current charset and writes it followed by
// the line terminator in a single write.
func (c *Codec) Send(message string) error {
	cs := c.Charset()
	payload, err := cs.Encode(message)
	if err != nil {
		return err
	}
	payload = append(payload, cs.Terminator()...)

	c.wmu.Lock()
	defer c.wmu.Unlock()
	if _, err := c.out.Write(payload); err != nil {
		return fmt.Errorf("%s: %w", constant.ErrMessageWriteFailed, err)
	}
	return nil
}

// ReadLine returns the next line without its terminator. A trailing "\r" is
// dropped. The ignore flag is checked after a line has been read, so a flag
// set while ReadLine is already blocked still discards the line that
// arrives next. Each set of the flag discards one line.
//
// At end of stream an unterminated final line is returned once, after which
// ReadLine returns io.EOF. Deadline expiry is reported as an error wrapping
// constant.ErrReadTimeout.
func (c *Codec) ReadLine() (string, error) {
	c.rmu.Lock()
	defer c.rmu.Unlock()

	for {
		msg, err := c.readLine()
		if err != nil {
			return "", err
		}
		if !c.ignoreNext.CompareAndSwap(true, false) {
			return msg, nil
		}
	}
}

func (c *Codec) readLine() (string, error) {
	cs := c.Charset()
	term := cs.Terminator()
	delim := term[len(term)-1]
	maxLen := c.MaxLineLength()

	var buf []byte
	for {
		chunk, err := c.br.ReadSlice(delim)
		buf = append(buf, chunk...)

		if err == nil && bytes.HasSuffix(buf, term) && len(buf)%len(term) == 0 {
			content := buf[:len(buf)-len(term)]
			if maxLen > 0 && len(content) > maxLen {
				return "", constant.ErrLineTooLong
			}
			return decode(cs, content)
		}
		if maxLen > 0 && len(buf) > maxLen+len(term) {
			return "", constant.ErrLineTooLong
		}

		switch {
		case err == nil, errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if len(buf) > 0 {
				return decode(cs, buf)
			}
			return "", io.EOF
		default:
			return "", classify(err)
		}
	}
}

func decode(cs *charset.Charset, b []byte) (string, error) {
	s, err := cs.Decode(b)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(s, "\r"), nil
}

func classify(err error) error {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return fmt.Errorf("%w: %w", constant.ErrReadTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", constant.ErrReadTimeout, err)
	}
	return err
}

// IsTimeout reports whether err came from an expired read deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, constant.ErrReadTimeout)
}

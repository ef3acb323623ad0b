// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package console is a line front-end over a terminal or any pair of
// streams. It shares the line codec with network connections but raises no
// connection events.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/cocowh/linemux/core/charset"
	"github.com/cocowh/linemux/core/constant"
	"github.com/cocowh/linemux/core/iface"
	"github.com/cocowh/linemux/core/line"
	"github.com/cocowh/linemux/core/utils"
	"github.com/cocowh/linemux/pkg/logger"
)

// InputHandler receives every line read by Run.
type InputHandler func(c *Console, line string)

type Console struct {
	codec *line.Codec
	in    io.Reader
	out   io.Writer

	mu      sync.RWMutex
	onInput InputHandler

	running atomic.Bool
}

var _ iface.Sender = (*Console)(nil)

func New(in io.Reader, out io.Writer) *Console {
	return &Console{
		codec: line.NewCodec(in, out),
		in:    in,
		out:   out,
	}
}

// Stdio returns a console bound to the process's stdin and stdout.
func Stdio() *Console {
	return New(os.Stdin, os.Stdout)
}

func (c *Console) Send(message string) error {
	return c.codec.Send(message)
}

func (c *Console) Sendf(format string, args ...any) error {
	return c.codec.Send(fmt.Sprintf(format, args...))
}

func (c *Console) ReadLine() (string, error) {
	return c.codec.ReadLine()
}

func (c *Console) Charset() *charset.Charset {
	return c.codec.Charset()
}

func (c *Console) SetCharset(cs *charset.Charset) {
	c.codec.SetCharset(cs)
}

func (c *Console) SetNextLineIgnore(ignore bool) {
	c.codec.SetNextLineIgnore(ignore)
}

func (c *Console) IsNextLineIgnored() bool {
	return c.codec.IsNextLineIgnored()
}

func (c *Console) Reader() io.Reader {
	return c.in
}

func (c *Console) Writer() io.Writer {
	return c.out
}

func (c *Console) InputHandler() InputHandler {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.onInput
}

func (c *Console) SetInputHandler(h InputHandler) {
	c.mu.Lock()
	c.onInput = h
	c.mu.Unlock()
}

// Run reads lines until end of input or ctx is done, passing each to the
// input handler. It returns nil at end of input and ctx.Err() on
// cancellation. A blocked read on the underlying reader cannot be
// interrupted, so after cancellation one reader goroutine may remain until
// the next line or EOF arrives.
func (c *Console) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return constant.ErrConsoleRunning
	}
	defer c.running.Store(false)

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer utils.PanicHandler(func() { errc <- errors.New(constant.ErrMessagePanic) })
		for {
			msg, err := c.codec.ReadLine()
			if err != nil {
				errc <- err
				return
			}
			select {
			case lines <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		case msg := <-lines:
			h := c.InputHandler()
			if h == nil {
				continue
			}
			if !utils.SafeCall(func() { h(c, msg) }) {
				logger.Warnf("console input handler failed")
			}
		}
	}
}

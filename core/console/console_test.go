// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cocowh/linemux/core/charset"
	"github.com/cocowh/linemux/core/constant"
)

func TestRunDeliversLinesUntilEOF(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader("hello\r\nworld\nlast"), &out)

	var got []string
	c.SetInputHandler(func(c *Console, line string) {
		got = append(got, line)
		require.NoError(t, c.Send("echo: "+line))
	})

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, []string{"hello", "world", "last"}, got)
	assert.Equal(t, "echo: hello\necho: world\necho: last\n", out.String())
}

func TestRunWithoutHandlerDrainsInput(t *testing.T) {
	c := New(strings.NewReader("a\nb\n"), io.Discard)
	require.NoError(t, c.Run(context.Background()))
}

func TestRunIgnoreNextLine(t *testing.T) {
	c := New(strings.NewReader("skip me\nkeep\n"), io.Discard)
	c.SetNextLineIgnore(true)
	assert.True(t, c.IsNextLineIgnored())

	var got []string
	c.SetInputHandler(func(_ *Console, line string) { got = append(got, line) })
	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, []string{"keep"}, got)
	assert.False(t, c.IsNextLineIgnored())
}

func TestRunHandlerPanicKeepsReading(t *testing.T) {
	c := New(strings.NewReader("boom\nfine\n"), io.Discard)

	var got []string
	c.SetInputHandler(func(_ *Console, line string) {
		if line == "boom" {
			panic("handler exploded")
		}
		got = append(got, line)
	})
	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, []string{"fine"}, got)
}

func TestRunCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	c := New(pr, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()

	cancel()
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunTwice(t *testing.T) {
	pr, pw := io.Pipe()
	c := New(pr, io.Discard)

	errc := make(chan error, 1)
	go func() { errc <- c.Run(context.Background()) }()

	require.Eventually(t, func() bool { return c.running.Load() }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, c.Run(context.Background()), constant.ErrConsoleRunning)

	require.NoError(t, pw.Close())
	require.NoError(t, <-errc)
}

func TestCharset(t *testing.T) {
	var out bytes.Buffer
	c := New(bytes.NewReader([]byte{'c', 'a', 'f', 0xe9, '\n'}), &out)
	c.SetCharset(charset.MustLookup("windows-1252"))
	assert.Equal(t, "windows-1252", c.Charset().Name())

	line, err := c.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "café", line)

	require.NoError(t, c.Sendf("%s!", line))
	assert.Equal(t, []byte{'c', 'a', 'f', 0xe9, '!', '\n'}, out.Bytes())
	assert.Same(t, &out, c.Writer())
}

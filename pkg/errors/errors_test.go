// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package errors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMuxErrorMatchesByCode(t *testing.T) {
	err := Wrapf(io.ErrUnexpectedEOF, ErrCodeProtocolCharset, CategoryProtocol, LevelError, "unknown charset %q", "x")

	assert.ErrorIs(t, err, ErrUnknownCharset)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.NotErrorIs(t, err, ErrConfigInvalid)
	assert.Equal(t, `[protocol:3002] unknown charset "x": unexpected EOF`, err.Error())

	wrapped := fmt.Errorf("outer: %w", err)
	code, ok := GetCode(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeProtocolCharset, code)

	_, ok = GetCode(io.EOF)
	assert.False(t, ok)
}

func TestWithContext(t *testing.T) {
	err := ConfigError(ErrCodeConfigInvalid, "bad").WithContext("field", "port")
	assert.Equal(t, "port", err.Context["field"])
	assert.Equal(t, CategoryConfig, err.Category)
	assert.False(t, err.Timestamp.IsZero())
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestConvertNetError(t *testing.T) {
	opErr := func(err error) error {
		return &net.OpError{Op: "dial", Net: "tcp", Err: &os.SyscallError{Syscall: "connect", Err: err}}
	}

	cases := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"refused", opErr(syscall.ECONNREFUSED), ErrCodeNetworkRefused},
		{"host unreachable", opErr(syscall.EHOSTUNREACH), ErrCodeNetworkUnreachable},
		{"net unreachable", opErr(syscall.ENETUNREACH), ErrCodeNetworkUnreachable},
		{"dns", &net.OpError{Op: "dial", Err: &net.DNSError{Err: "no such host", Name: "host.invalid"}}, ErrCodeNetworkUnreachable},
		{"deadline", fmt.Errorf("read: %w", os.ErrDeadlineExceeded), ErrCodeNetworkTimeout},
		{"net timeout", timeoutErr{}, ErrCodeNetworkTimeout},
		{"reset", opErr(syscall.ECONNRESET), ErrCodeNetworkConnectionLost},
		{"closed", net.ErrClosed, ErrCodeNetworkConnectionLost},
		{"other", context.Canceled, ErrCodeNetworkUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ConvertNetError(tc.err, "dial failed")
			require.NotNil(t, got)
			assert.Equal(t, tc.want, got.Code)
			assert.Equal(t, CategoryNetwork, got.Category)
			assert.True(t, errors.Is(got, tc.err))
		})
	}

	assert.Nil(t, ConvertNetError(nil, "noop"))

	existing := NetworkError(ErrCodeNetworkRefused, "already converted")
	assert.Same(t, existing, ConvertNetError(existing, "again"))
}

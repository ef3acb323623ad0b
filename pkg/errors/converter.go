// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package errors

import (
	"errors"
	"net"
	"os"
	"syscall"
)

// ConvertNetError classifies a dial or socket error into a network MuxError.
// A nil error converts to nil.
func ConvertNetError(err error, message string) *MuxError {
	if err == nil {
		return nil
	}
	var muxErr *MuxError
	if errors.As(err, &muxErr) {
		return muxErr
	}

	var dnsErr *net.DNSError
	switch {
	case errors.As(err, &dnsErr),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETUNREACH):
		return Wrap(err, ErrCodeNetworkUnreachable, CategoryNetwork, LevelError, message)
	case errors.Is(err, syscall.ECONNREFUSED):
		return Wrap(err, ErrCodeNetworkRefused, CategoryNetwork, LevelError, message)
	case errors.Is(err, os.ErrDeadlineExceeded):
		return Wrap(err, ErrCodeNetworkTimeout, CategoryNetwork, LevelWarn, message)
	case errors.Is(err, net.ErrClosed), errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE):
		return Wrap(err, ErrCodeNetworkConnectionLost, CategoryNetwork, LevelWarn, message)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Wrap(err, ErrCodeNetworkTimeout, CategoryNetwork, LevelWarn, message)
	}
	return Wrap(err, ErrCodeNetworkUnknown, CategoryNetwork, LevelError, message)
}

func NetworkError(code ErrorCode, message string) *MuxError {
	return New(code, CategoryNetwork, LevelError, message)
}

func ProtocolError(code ErrorCode, message string) *MuxError {
	return New(code, CategoryProtocol, LevelError, message)
}

func ProtocolErrorf(code ErrorCode, format string, args ...any) *MuxError {
	return Newf(code, CategoryProtocol, LevelError, format, args...)
}

func ConfigError(code ErrorCode, message string) *MuxError {
	return New(code, CategoryConfig, LevelError, message)
}

func ConfigErrorf(code ErrorCode, format string, args ...any) *MuxError {
	return Newf(code, CategoryConfig, LevelError, format, args...)
}

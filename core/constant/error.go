// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package constant

import "errors"

const (
	ErrMessagePanic             = "panic occurred"
	ErrMessageConnectFailed     = "connect failed"
	ErrMessageConnectionClosed  = "connection closed"
	ErrMessageReadTimeout       = "read timeout"
	ErrMessageLineTooLong       = "line exceeds maximum length"
	ErrMessageServerClosed      = "server closed"
	ErrMessageServerStarted     = "server already started"
	ErrMessageTooManyConnection = "too many connections"
	ErrMessageWriteFailed       = "write failed"
	ErrMessageConsoleRunning    = "console already running"
)

var (
	ErrConnectionClosed   = errors.New(ErrMessageConnectionClosed)
	ErrReadTimeout        = errors.New(ErrMessageReadTimeout)
	ErrLineTooLong        = errors.New(ErrMessageLineTooLong)
	ErrServerClosed       = errors.New(ErrMessageServerClosed)
	ErrServerStarted      = errors.New(ErrMessageServerStarted)
	ErrTooManyConnections = errors.New(ErrMessageTooManyConnection)
	ErrConsoleRunning     = errors.New(ErrMessageConsoleRunning)
)

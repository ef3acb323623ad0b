// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode error code
type ErrorCode int

// ErrorLevel error level
type ErrorLevel int

// ErrorCategory error category
type ErrorCategory string

const (
	LevelDebug ErrorLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

const (
	CategorySystem   ErrorCategory = "system"
	CategoryNetwork  ErrorCategory = "network"
	CategoryProtocol ErrorCategory = "protocol"
	CategoryConfig   ErrorCategory = "config"
)

// system error code (1000-1999)
const (
	ErrCodeSystemUnknown  ErrorCode = 1000
	ErrCodeSystemShutdown ErrorCode = 1004
	ErrCodeSystemPanic    ErrorCode = 1005
)

// network error code (2000-2999)
const (
	ErrCodeNetworkUnknown        ErrorCode = 2000
	ErrCodeNetworkTimeout        ErrorCode = 2001
	ErrCodeNetworkConnectionLost ErrorCode = 2002
	ErrCodeNetworkRefused        ErrorCode = 2003
	ErrCodeNetworkUnreachable    ErrorCode = 2004
)

// protocol error code (3000-3999)
const (
	ErrCodeProtocolUnknown ErrorCode = 3000
	ErrCodeProtocolInvalid ErrorCode = 3001
	ErrCodeProtocolCharset ErrorCode = 3002
)

// config error code (5000-5999)
const (
	ErrCodeConfigUnknown    ErrorCode = 5000
	ErrCodeConfigNotFound   ErrorCode = 5001
	ErrCodeConfigInvalid    ErrorCode = 5002
	ErrCodeConfigParseError ErrorCode = 5003
)

// Sentinels for errors.Is comparisons; matching is by code only.
var (
	ErrHostUnreachable   = &MuxError{Code: ErrCodeNetworkUnreachable, Category: CategoryNetwork}
	ErrConnectionRefused = &MuxError{Code: ErrCodeNetworkRefused, Category: CategoryNetwork}
	ErrNetworkTimeout    = &MuxError{Code: ErrCodeNetworkTimeout, Category: CategoryNetwork}
	ErrUnknownCharset    = &MuxError{Code: ErrCodeProtocolCharset, Category: CategoryProtocol}
	ErrConfigInvalid     = &MuxError{Code: ErrCodeConfigInvalid, Category: CategoryConfig}
)

type MuxError struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Category  ErrorCategory  `json:"category"`
	Level     ErrorLevel     `json:"level"`
	Timestamp time.Time      `json:"timestamp"`
	Cause     error          `json:"cause,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
}

// Error implements error interface
func (e *MuxError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%d] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%d] %s", e.Category, e.Code, e.Message)
}

func (e *MuxError) Unwrap() error {
	return e.Cause
}

func (e *MuxError) Is(target error) bool {
	var t *MuxError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithContext with context
func (e *MuxError) WithContext(key string, value any) *MuxError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithCause with cause
func (e *MuxError) WithCause(cause error) *MuxError {
	e.Cause = cause
	return e
}

// New create error
func New(code ErrorCode, category ErrorCategory, level ErrorLevel, message string) *MuxError {
	return &MuxError{
		Code:      code,
		Message:   message,
		Category:  category,
		Level:     level,
		Timestamp: time.Now(),
	}
}

// Newf create error with format message
func Newf(code ErrorCode, category ErrorCategory, level ErrorLevel, format string, args ...any) *MuxError {
	return New(code, category, level, fmt.Sprintf(format, args...))
}

// Wrap existing error with code, category, level and message
func Wrap(err error, code ErrorCode, category ErrorCategory, level ErrorLevel, message string) *MuxError {
	return New(code, category, level, message).WithCause(err)
}

// Wrapf wrap existing error with code, category, level and format message
func Wrapf(err error, code ErrorCode, category ErrorCategory, level ErrorLevel, format string, args ...any) *MuxError {
	return Wrap(err, code, category, level, fmt.Sprintf(format, args...))
}

// GetCode returns the code of the first MuxError in err's chain.
func GetCode(err error) (ErrorCode, bool) {
	var muxErr *MuxError
	if errors.As(err, &muxErr) {
		return muxErr.Code, true
	}
	return 0, false
}

// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package utils

import (
	"runtime/debug"
	"sync"

	"github.com/cocowh/linemux/pkg/logger"
)

var (
	mu           sync.RWMutex
	panicHandler PanicHandlerFunc = defaultPanicHandler
)

// PanicHandlerFunc is invoked with the recovered value and the stack of the
// goroutine that panicked.
type PanicHandlerFunc func(recovered any, stack []byte)

func defaultPanicHandler(recovered any, stack []byte) {
	logger.Errorf("recover panic. error:%v, stack: %s", recovered, stack)
}

// SetPanicHandler replaces the handler used by PanicHandler. A nil f restores the
// default, which logs the panic.
func SetPanicHandler(f PanicHandlerFunc) {
	mu.Lock()
	defer mu.Unlock()
	if f == nil {
		f = defaultPanicHandler
	}
	panicHandler = f
}

// PanicHandler must be deferred directly. It recovers a panic, reports it and
// runs f afterwards when f is not nil.
func PanicHandler(f func()) {
	if err := recover(); err != nil {
		mu.RLock()
		h := panicHandler
		mu.RUnlock()
		h(err, debug.Stack())
		if f != nil {
			f()
		}
	}
}

// SafeCall runs fn and reports whether it returned without panicking.
func SafeCall(fn func()) (ok bool) {
	defer PanicHandler(nil)
	fn()
	return true
}

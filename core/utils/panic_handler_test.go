// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeCall(t *testing.T) {
	var recovered any
	var stack []byte
	SetPanicHandler(func(r any, s []byte) {
		recovered, stack = r, s
	})
	t.Cleanup(func() { SetPanicHandler(nil) })

	ran := false
	assert.True(t, SafeCall(func() { ran = true }))
	assert.True(t, ran)
	assert.Nil(t, recovered)

	assert.False(t, SafeCall(func() { panic("boom") }))
	assert.Equal(t, "boom", recovered)
	assert.NotEmpty(t, stack)
}

func TestPanicHandlerRunsCallback(t *testing.T) {
	SetPanicHandler(func(any, []byte) {})
	t.Cleanup(func() { SetPanicHandler(nil) })

	called := false
	func() {
		defer PanicHandler(func() { called = true })
		panic("boom")
	}()
	assert.True(t, called)

	called = false
	func() {
		defer PanicHandler(func() { called = true })
	}()
	assert.False(t, called)
}

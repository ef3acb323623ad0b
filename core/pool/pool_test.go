// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pool

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoWaitsForAll(t *testing.T) {
	p := New(4, 2)
	defer p.Shutdown()

	var n atomic.Int32
	fns := make([]func(), 50)
	for i := range fns {
		fns[i] = func() {
			time.Sleep(time.Millisecond)
			n.Add(1)
		}
	}
	p.Go(fns...)
	assert.Equal(t, int32(50), n.Load())
}

func TestGoRunsConcurrently(t *testing.T) {
	p := New(2, 10)
	defer p.Shutdown()

	release := make(chan struct{})
	started := make(chan struct{}, 2)
	done := make(chan struct{})
	go func() {
		p.Go(
			func() { started <- struct{}{}; <-release },
			func() { started <- struct{}{}; <-release },
		)
		close(done)
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("tasks did not run in parallel")
		}
	}
	close(release)
	<-done
}

func TestPanickingTaskDoesNotKillWorker(t *testing.T) {
	p := New(1, 1)
	defer p.Shutdown()

	var ran atomic.Bool
	p.Go(func() { panic("boom") })
	p.Go(func() { ran.Store(true) })
	assert.True(t, ran.Load())
}

func TestSubmitAfterShutdown(t *testing.T) {
	p := New(0, 0)
	assert.Equal(t, 1, p.Workers())
	p.Shutdown()

	assert.False(t, p.Submit(func() {}))

	var ran bool
	p.Go(func() { ran = true })
	require.True(t, ran)
}

func TestGoCompletesAcrossShutdown(t *testing.T) {
	p := New(1, 16)

	release := make(chan struct{})
	running := make(chan struct{})
	require.True(t, p.Submit(func() {
		close(running)
		<-release
	}))
	<-running

	var n atomic.Int32
	fns := make([]func(), 8)
	for i := range fns {
		fns[i] = func() { n.Add(1) }
	}
	goDone := make(chan struct{})
	go func() {
		p.Go(fns...)
		close(goDone)
	}()
	require.Eventually(t, func() bool { return p.QueueSize() == len(fns) }, time.Second, time.Millisecond)

	shutdownDone := make(chan struct{})
	go func() {
		p.Shutdown()
		close(shutdownDone)
	}()
	close(release)

	for _, ch := range []chan struct{}{goDone, shutdownDone} {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("blocked with %d tasks queued", p.QueueSize())
		}
	}
	assert.Equal(t, int32(len(fns)), n.Load())
}

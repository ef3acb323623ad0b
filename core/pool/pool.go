// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pool

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cocowh/linemux/core/utils"
	"github.com/cocowh/linemux/pkg/logger"
)

// Pool is a fixed set of worker goroutines fed from a bounded queue.
type Pool struct {
	tasks   chan func()
	workers int
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// New starts a pool with the given number of workers and queue size.
// Non-positive values fall back to 1 worker and a queue of 100.
func New(workers int, queueSize int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		tasks:   make(chan func(), queueSize),
		workers: workers,
		ctx:     ctx,
		cancel:  cancel,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	logger.Debugf("Created worker pool with %d workers and queue size %d", workers, queueSize)
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case task := <-p.tasks:
			p.run(task)
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pool) run(task func()) {
	defer utils.PanicHandler(nil)
	task()
}

// Submit queues task. When the queue is full the task runs on a temporary
// goroutine instead. It returns false, without running task, once the pool
// is shut down.
func (p *Pool) Submit(task func()) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.tasks <- task:
		return true
	case <-p.ctx.Done():
		return false
	default:
		logger.Debug("Worker pool queue full, creating temporary worker")
		go p.run(task)
		return true
	}
}

// Go runs every fn on the pool and waits for all of them. Functions the
// pool rejects, or still has queued when it shuts down, run on the calling
// goroutine.
func (p *Pool) Go(fns ...func()) {
	var wg sync.WaitGroup
	wg.Add(len(fns))
	claimed := make([]atomic.Bool, len(fns))
	tasks := make([]func(), len(fns))
	for i, fn := range fns {
		tasks[i] = func() {
			if !claimed[i].CompareAndSwap(false, true) {
				return
			}
			defer wg.Done()
			fn()
		}
		if !p.Submit(tasks[i]) {
			p.run(tasks[i])
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return
	case <-p.ctx.Done():
	}
	// Queued tasks may never be picked up once the workers exit.
	for _, task := range tasks {
		p.run(task)
	}
	<-done
}

// Workers reports the number of long-lived workers.
func (p *Pool) Workers() int {
	return p.workers
}

// QueueSize returns the number of queued tasks.
func (p *Pool) QueueSize() int {
	return len(p.tasks)
}

// Shutdown stops the workers and waits for them to exit. Tasks already
// running finish first. Queued tasks from Submit are dropped; those queued
// by Go are run by the Go caller.
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	logger.Debug("Worker pool shutdown completed")
}

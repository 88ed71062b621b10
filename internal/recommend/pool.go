// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package recommend

import "sync"

// WorkerPool is a fixed-size task pool. The engine dispatches the two
// scorer passes to it and the service layer adds the scenario
// generation call, so the pool bounds the per-process concurrency of
// model work.
//
// Submitted tasks must not submit further tasks and wait on them; with
// a small pool that nesting deadlocks.
type WorkerPool struct {
	tasks chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

// NewWorkerPool starts a pool with the given number of workers.
func NewWorkerPool(workers int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	p := &WorkerPool{tasks: make(chan func())}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer p.wg.Done()
			for task := range p.tasks {
				task()
			}
		}()
	}
	return p
}

// Submit queues a task and returns a channel closed when it finishes.
func (p *WorkerPool) Submit(task func()) <-chan struct{} {
	done := make(chan struct{})
	p.tasks <- func() {
		defer close(done)
		task()
	}
	return done
}

// Close stops accepting tasks and waits for in-flight work to finish.
func (p *WorkerPool) Close() {
	p.once.Do(func() {
		close(p.tasks)
	})
	p.wg.Wait()
}

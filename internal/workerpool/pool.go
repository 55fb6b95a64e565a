// Package workerpool runs tasks on a fixed number of goroutines.
package workerpool

import (
	"context"
	"log/slog"
	"sync"
)

// Task is a unit of work run by the pool
type Task func(ctx context.Context) error

// Pool manages concurrent processing of tasks
type Pool struct {
	size     int
	tasks    chan Task
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	closed   bool
	closeMux sync.RWMutex
	logger   *slog.Logger
}

// New starts size workers bound to ctx. Cancelling ctx stops the pool.
func New(ctx context.Context, size int, logger *slog.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	poolCtx, cancel := context.WithCancel(ctx)
	p := &Pool{
		size:   size,
		tasks:  make(chan Task, size*2),
		ctx:    poolCtx,
		cancel: cancel,
		logger: logger,
	}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	return p
}

// Submit queues a task. It returns false once the pool is closed or cancelled.
func (p *Pool) Submit(task Task) bool {
	p.closeMux.RLock()
	defer p.closeMux.RUnlock()
	if p.closed {
		return false
	}

	select {
	case p.tasks <- task:
		return true
	case <-p.ctx.Done():
		return false
	}
}

// Wait closes the queue and blocks until every worker has returned.
func (p *Pool) Wait() {
	p.closeMux.Lock()
	if !p.closed {
		close(p.tasks)
		p.closed = true
	}
	p.closeMux.Unlock()

	p.wg.Wait()
	p.cancel()
}

// Cancel stops queued tasks from starting. Running tasks see a cancelled
// context. Safe to call from inside a task.
func (p *Pool) Cancel() {
	p.cancel()
}

// Shutdown cancels pending work and waits for the workers.
func (p *Pool) Shutdown() {
	p.cancel()
	p.Wait()
}

// Context is cancelled once the pool is shut down or its parent is done.
func (p *Pool) Context() context.Context {
	return p.ctx
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for task := range p.tasks {
		if p.ctx.Err() != nil {
			// drain so Submit never blocks on a full queue
			continue
		}
		if err := task(p.ctx); err != nil {
			p.logger.Debug("task failed", "worker", id, "error", err)
		}
	}
}

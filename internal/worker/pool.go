package worker

import (
	"context"
	"errors"
	"sync"
)

var ErrPoolClosed = errors.New("worker pool closed")

// Pool runs jobs on a fixed number of workers fed by a shared queue.
type Pool struct {
	mu       sync.RWMutex
	closed   bool
	jobQueue chan Job
	workers  []*Worker
}

func NewPool(size, queueSize int) *Pool {
	if size <= 0 {
		size = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	p := &Pool{jobQueue: make(chan Job, queueSize)}
	for i := 0; i < size; i++ {
		w := NewWorker(i+1, p.jobQueue)
		p.workers = append(p.workers, w)
		w.Start()
	}
	debugLog("[pool] started %d workers, queue size %d", size, queueSize)
	return p
}

// Size reports the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Submit queues job, blocking while the queue is full.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobQueue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop retires every worker. Jobs still queued are dropped.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()
	for _, w := range p.workers {
		w.Stop()
	}
}

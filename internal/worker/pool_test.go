package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolRunsEveryJob(t *testing.T) {
	pool := NewPool(3, 2)
	defer pool.Stop()

	var ran int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		if err := pool.Submit(context.Background(), func() {
			defer wg.Done()
			atomic.AddInt64(&ran, 1)
		}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	wg.Wait()
	if ran != 20 {
		t.Fatalf("expected 20 jobs, ran %d", ran)
	}
	if pool.Size() != 3 {
		t.Fatalf("expected 3 workers, got %d", pool.Size())
	}
}

func TestPoolSubmitAfterStop(t *testing.T) {
	pool := NewPool(1, 0)
	pool.Stop()
	pool.Stop()
	if err := pool.Submit(context.Background(), func() {}); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
}

func TestPoolSubmitHonoursContext(t *testing.T) {
	pool := NewPool(1, 0)
	defer pool.Stop()

	release := make(chan struct{})
	started := make(chan struct{})
	if err := pool.Submit(context.Background(), func() {
		close(started)
		<-release
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := pool.Submit(ctx, func() {})
	close(release)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

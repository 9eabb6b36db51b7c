package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// chanQueue is an in-memory queue for pool tests
type chanQueue struct {
	ch chan Task
}

func newChanQueue(size int) *chanQueue {
	return &chanQueue{ch: make(chan Task, size)}
}

func (q *chanQueue) Enqueue(ctx context.Context, task Task) error {
	q.ch <- task
	return nil
}

func (q *chanQueue) Dequeue(ctx context.Context) (*Task, error) {
	select {
	case task := <-q.ch:
		return &task, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type recordingHandler struct {
	mu      sync.Mutex
	handled []Task
	err     error
}

func (h *recordingHandler) Handle(ctx context.Context, task Task) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, task)
	return h.err
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestPoolConsumesQueue(t *testing.T) {
	setupTest(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := newChanQueue(10)
	for i := 0; i < 5; i++ {
		if err := queue.Enqueue(ctx, NewScrapeLatest("bitcoin")); err != nil {
			t.Fatalf("enqueue failed: %v", err)
		}
	}

	handler := &recordingHandler{}
	pool := NewPool(queue, handler, 2)
	pool.Start(ctx)

	deadline := time.After(2 * time.Second)
	for handler.count() < 5 {
		select {
		case <-deadline:
			t.Fatalf("pool handled %d of 5 tasks", handler.count())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	pool.Stop(time.Second)
}

func TestPoolSurvivesHandlerFailures(t *testing.T) {
	setupTest(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := newChanQueue(10)
	for i := 0; i < 3; i++ {
		if err := queue.Enqueue(ctx, NewScrapeLatest("bitcoin")); err != nil {
			t.Fatalf("enqueue failed: %v", err)
		}
	}

	handler := &recordingHandler{err: errors.New("boom")}
	pool := NewPool(queue, handler, 1)
	pool.Start(ctx)

	deadline := time.After(2 * time.Second)
	for handler.count() < 3 {
		select {
		case <-deadline:
			t.Fatalf("pool stopped after handler failure, handled %d of 3", handler.count())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	pool.Stop(time.Second)
}

func TestPoolStopsOnContextCancel(t *testing.T) {
	setupTest(t)

	ctx, cancel := context.WithCancel(context.Background())

	pool := NewPool(newChanQueue(1), &recordingHandler{}, 2)
	pool.Start(ctx)

	cancel()

	done := make(chan struct{})
	go func() {
		pool.Stop(2 * time.Second)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("pool did not stop after context cancel")
	}
}

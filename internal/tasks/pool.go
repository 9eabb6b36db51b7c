package tasks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vkravets/newspulse/pkg/logger"
)

// Handler executes one dequeued task
type Handler interface {
	Handle(ctx context.Context, task Task) error
}

// Pool consumes the task queue with a fixed set of worker goroutines.
// Handler failures are logged and dropped; retry happens through the next
// scheduler sweep, never inline.
type Pool struct {
	queue       Queue
	handler     Handler
	concurrency int
	wg          sync.WaitGroup
}

// NewPool creates new worker pool
func NewPool(queue Queue, handler Handler, concurrency int) *Pool {
	return &Pool{
		queue:       queue,
		handler:     handler,
		concurrency: concurrency,
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	logger.Info("task pool starting",
		zap.Int("concurrency", p.concurrency),
	)

	for i := 0; i < p.concurrency; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop waits for the workers to drain, up to the timeout
func (p *Pool) Stop(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("task pool stopped gracefully")
	case <-time.After(timeout):
		logger.Warn("task pool stop timeout")
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}

		task, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("failed to dequeue task",
				zap.Int("worker", id),
				zap.Error(err),
			)
			time.Sleep(time.Second)
			continue
		}
		if task == nil {
			continue
		}

		if err := p.handler.Handle(ctx, *task); err != nil {
			logger.Error("task failed",
				zap.Int("worker", id),
				zap.String("task_id", task.ID),
				zap.String("type", string(task.Type)),
				zap.String("keyword", task.Keyword),
				zap.Error(err),
			)
		}
	}
}

package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/go-redis/redis/v8"
)

// Queue is the task transport between the scheduler and the worker pool
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	// Dequeue blocks up to the poll window and returns nil when no task
	// arrived in time
	Dequeue(ctx context.Context) (*Task, error)
}

const dequeuePollWindow = 5 * time.Second

// RedisQueue is a Redis list backed task queue
type RedisQueue struct {
	rdb *redis.Client
	key string
}

// NewRedisQueue creates new Redis task queue
func NewRedisQueue(rdb *redis.Client, key string) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: key}
}

// Enqueue pushes a task onto the queue
func (q *RedisQueue) Enqueue(ctx context.Context, task Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	if err := q.rdb.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	return nil
}

// Dequeue pops the oldest task, blocking up to the poll window
func (q *RedisQueue) Dequeue(ctx context.Context) (*Task, error) {
	values, err := q.rdb.BRPop(ctx, dequeuePollWindow, q.key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue task: %w", err)
	}

	// BRPop returns [key, value]
	if len(values) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply length %d", len(values))
	}

	var task Task
	if err := json.Unmarshal([]byte(values[1]), &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}

	return &task, nil
}

// Producer is the enqueue-only facade handed to the scheduler and the
// keyword lifecycle hooks
type Producer struct {
	queue Queue
}

// NewProducer creates new task producer
func NewProducer(queue Queue) *Producer {
	return &Producer{queue: queue}
}

// EnqueueScrapeLatest dispatches a scrape-latest unit
func (p *Producer) EnqueueScrapeLatest(ctx context.Context, keyword string) error {
	return p.queue.Enqueue(ctx, NewScrapeLatest(keyword))
}

// EnqueueScrapeHistoric dispatches a historic backfill unit
func (p *Producer) EnqueueScrapeHistoric(ctx context.Context, keyword string) error {
	return p.queue.Enqueue(ctx, NewScrapeHistoric(keyword))
}

// EnqueueAnalyze dispatches an analyze unit
func (p *Producer) EnqueueAnalyze(ctx context.Context, articleUID, keyword string) error {
	return p.queue.Enqueue(ctx, NewAnalyze(articleUID, keyword))
}

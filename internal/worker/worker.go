// Package worker runs short background tasks, such as report mail, off the
// request path with bounded concurrency.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrQueueFull = errors.New("worker: queue full")
	ErrStopped   = errors.New("worker: pool stopped")
)

// Config holds worker configuration
type Config struct {
	// Name appears in every log line of the pool
	Name string

	// MaxConcurrency is the maximum number of tasks running at once
	MaxConcurrency int

	// QueueSize is how many tasks may wait before Submit refuses more
	QueueSize int

	// TaskTimeout bounds a single task
	TaskTimeout time.Duration
}

// Task is a unit of background work.
type Task func(ctx context.Context) error

type queued struct {
	name string
	task Task
}

// Pool runs submitted tasks until its context ends, then finishes what is
// already queued.
type Pool struct {
	config Config
	queue  chan queued
	logger *slog.Logger

	mu      sync.RWMutex
	stopped bool
}

// NewPool creates a pool. Call Start to begin running tasks.
func NewPool(config Config, logger *slog.Logger) *Pool {
	if config.Name == "" {
		config.Name = "worker"
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 2
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 64
	}
	if config.TaskTimeout <= 0 {
		config.TaskTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Pool{
		config: config,
		queue:  make(chan queued, config.QueueSize),
		logger: logger.With("pool", config.Name),
	}
}

// Submit queues task without blocking.
func (p *Pool) Submit(name string, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}

	select {
	case p.queue <- queued{name: name, task: task}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start runs tasks until ctx is cancelled. Queued tasks still run after
// that; Start returns once they and any in-flight tasks are done.
func (p *Pool) Start(ctx context.Context) error {
	p.logger.Info("worker starting",
		"max_concurrency", p.config.MaxConcurrency,
		"queue_size", p.config.QueueSize,
	)

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.config.MaxConcurrency)
	base := context.WithoutCancel(ctx)

	dispatch := func(q queued) {
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() { <-sem }()
			defer wg.Done()
			p.run(base, q)
		}()
	}

	for {
		select {
		case q := <-p.queue:
			dispatch(q)

		case <-ctx.Done():
			p.mu.Lock()
			p.stopped = true
			p.mu.Unlock()

			pending := len(p.queue)
			p.logger.Info("worker shutting down", "pending", pending)
			for i := 0; i < pending; i++ {
				dispatch(<-p.queue)
			}
			wg.Wait()
			return nil
		}
	}
}

func (p *Pool) run(ctx context.Context, q queued) {
	ctx, cancel := context.WithTimeout(ctx, p.config.TaskTimeout)
	defer cancel()

	start := time.Now()
	err := safeRun(ctx, q.task)
	if err != nil {
		p.logger.Warn("task failed", "task", q.name, "error", err, "duration", time.Since(start))
		return
	}
	p.logger.Debug("task completed", "task", q.name, "duration", time.Since(start))
}

func safeRun(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return task(ctx)
}

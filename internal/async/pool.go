// Package async fans file paths out to a bounded worker pool. Each path is
// one pipeline run; a failed run is logged and dropped, never retried here
// (the retry layer inside the providers already handled transient faults).
package async

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ProcessFunc handles one discovered file.
type ProcessFunc func(ctx context.Context, path string) error

type Pool struct {
	workers int
	jobs    chan string
	process ProcessFunc
	logger  *slog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}

	wg   sync.WaitGroup
	once sync.Once
}

func NewPool(workers, buffer int, process ProcessFunc, logger *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if buffer < workers {
		buffer = workers * 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		workers:  workers,
		jobs:     make(chan string, buffer),
		process:  process,
		logger:   logger,
		inFlight: map[string]struct{}{},
	}
}

// Start launches the workers. They exit when the queue is closed via
// Shutdown or the context is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	p.logger.Info("worker pool started", "workers", p.workers)
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-p.jobs:
			if !ok {
				return
			}
			start := time.Now()
			err := p.process(ctx, path)
			p.release(path)
			if err != nil {
				p.logger.Error("pool.job.failed",
					"worker", id,
					"path", path,
					"elapsed_ms", time.Since(start).Milliseconds(),
					"error", err,
				)
				continue
			}
			p.logger.Debug("pool.job.ok",
				"worker", id,
				"path", path,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
		}
	}
}

// Enqueue submits a path, dropping duplicates already queued or running.
// Returns false when the path was dropped (duplicate or full queue).
func (p *Pool) Enqueue(path string) bool {
	p.mu.Lock()
	if _, dup := p.inFlight[path]; dup {
		p.mu.Unlock()
		return false
	}
	p.inFlight[path] = struct{}{}
	p.mu.Unlock()

	select {
	case p.jobs <- path:
		return true
	default:
		p.release(path)
		p.logger.Warn("pool.queue.full", "path", path)
		return false
	}
}

func (p *Pool) release(path string) {
	p.mu.Lock()
	delete(p.inFlight, path)
	p.mu.Unlock()
}

// Shutdown stops accepting work and waits for in-flight jobs, up to the
// context deadline.
func (p *Pool) Shutdown(ctx context.Context) {
	p.once.Do(func() { close(p.jobs) })

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		p.logger.Info("worker pool drained")
	case <-ctx.Done():
		p.logger.Warn("worker pool shutdown timed out")
	}
}

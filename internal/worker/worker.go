package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Pool runs background jobs and stops them together on shutdown
type Pool struct {
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
}

// NewPool creates a new worker pool
func NewPool(logger *slog.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Submit runs task once in its own goroutine
func (p *Pool) Submit(task func(ctx context.Context)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		task(p.ctx)
	}()
}

// Every runs task each interval until the pool shuts down. Each run gets its own
// deadline of one interval; a failed run is logged and the schedule continues.
func (p *Pool) Every(name string, interval time.Duration, task func(ctx context.Context) error) {
	if interval <= 0 {
		p.logger.Warn("⚠️ [Worker] Job disabled, interval must be positive", "job", name)
		return
	}

	p.Submit(func(ctx context.Context) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		p.logger.Info("⏱️ [Worker] Job scheduled", "job", name, "interval", interval)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runCtx, cancel := context.WithTimeout(ctx, interval)
				if err := task(runCtx); err != nil {
					p.logger.Error("❌ [Worker] Job failed", "job", name, "error", err)
				}
				cancel()
			}
		}
	})
}

// Context returns the pool's context
func (p *Pool) Context() context.Context {
	return p.ctx
}

// Shutdown signals all workers to stop and waits for completion
func (p *Pool) Shutdown(timeout time.Duration) {
	p.logger.Info("🛑 [Worker] Initiating graceful shutdown...")

	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("✅ [Worker] All background tasks completed")
	case <-time.After(timeout):
		p.logger.Warn("⚠️ [Worker] Shutdown timeout exceeded, some tasks may not have completed",
			"timeout", timeout,
		)
	}
}

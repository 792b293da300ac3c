// Package batcher provides a generic buffered batch processor with rate limiting and flush retries.
package batcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// ErrStopped is returned by Add once Stop was called.
var ErrStopped = errors.New("batcher stopped")

// Config tunes a Batcher. MaxAttempts below one means a single attempt per batch.
type Config struct {
	FlushSize     int
	FlushInterval time.Duration
	RPS           int
	MaxAttempts   int
}

// Batcher buffers items and flushes them either by size or interval. A failed flush is retried
// with the same batch up to MaxAttempts times before the batch is dropped.
type Batcher[T any] struct {
	flushCallback func(context.Context, []T) error
	itemsCh       chan T
	cfg           Config
	rl            ratelimit.Limiter
	logger        *zap.Logger

	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once
	dropped  int
	mu       sync.Mutex
}

// New constructs a Batcher.
func New[T any](logger *zap.Logger, flushCallback func(context.Context, []T) error, cfg Config) *Batcher[T] {
	if cfg.FlushSize < 1 {
		cfg.FlushSize = 1
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.RPS < 1 {
		cfg.RPS = 1
	}
	return &Batcher[T]{
		logger:        logger,
		flushCallback: flushCallback,
		itemsCh:       make(chan T, cfg.FlushSize*2),
		cfg:           cfg,
		rl:            ratelimit.New(cfg.RPS),
		stop:          make(chan struct{}),
	}
}

// Start begins the background flushing loop.
func (b *Batcher[T]) Start(ctx context.Context) {
	b.wg.Add(1)
	go b.run(ctx)
}

// Stop flushes whatever is queued and stops the loop. It is safe to call more than once.
func (b *Batcher[T]) Stop() {
	b.stopOnce.Do(func() { close(b.stop) })
	b.wg.Wait()
}

// Add queues an item for batching, respecting context cancellation.
func (b *Batcher[T]) Add(ctx context.Context, item T) error {
	select {
	case <-b.stop:
		return ErrStopped
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.stop:
		return ErrStopped
	case b.itemsCh <- item:
		return nil
	}
}

// Dropped returns the number of items discarded after their batch ran out of attempts.
func (b *Batcher[T]) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

func (b *Batcher[T]) run(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.cfg.FlushInterval)
	defer ticker.Stop()

	buf := make([]T, 0, b.cfg.FlushSize)
	flush := func(ctx context.Context) {
		if len(buf) == 0 {
			return
		}
		b.flush(ctx, buf)
		buf = buf[:0]
	}

	for {
		select {
		case <-ctx.Done():
			buf = b.drain(buf)
			flush(context.WithoutCancel(ctx))
			return

		case <-b.stop:
			buf = b.drain(buf)
			flush(context.WithoutCancel(ctx))
			return

		case item := <-b.itemsCh:
			buf = append(buf, item)
			if len(buf) >= b.cfg.FlushSize {
				flush(ctx)
			}

		case <-ticker.C:
			flush(ctx)
		}
	}
}

func (b *Batcher[T]) drain(buf []T) []T {
	for {
		select {
		case item := <-b.itemsCh:
			buf = append(buf, item)
		default:
			return buf
		}
	}
}

func (b *Batcher[T]) flush(ctx context.Context, batch []T) {
	var err error
	for attempt := 1; attempt <= b.cfg.MaxAttempts; attempt++ {
		b.rl.Take()
		if err = b.flushCallback(ctx, batch); err == nil {
			b.logger.Debug("batch flushed", zap.Int("size", len(batch)), zap.Int("attempt", attempt))
			return
		}
		b.logger.Warn("batch flush failed", zap.Int("size", len(batch)), zap.Int("attempt", attempt), zap.Error(err))
		if ctx.Err() != nil {
			break
		}
	}
	b.mu.Lock()
	b.dropped += len(batch)
	b.mu.Unlock()
	b.logger.Error("batch dropped", zap.Int("size", len(batch)), zap.Error(err))
}

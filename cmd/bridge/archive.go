package main

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/btcbridge/internal/bridge/events"
	"github.com/goodnatureofminers/btcbridge/internal/eventstore/clickhouse"
	"github.com/goodnatureofminers/btcbridge/internal/metrics"
	"github.com/goodnatureofminers/btcbridge/pkg/batcher"
	"go.uber.org/zap"
)

// archive batches committed events into ClickHouse.
type archive struct {
	repo   *clickhouse.Repository
	queue  *batcher.Batcher[events.Record]
	logger *zap.Logger
}

// newArchive returns nil when no DSN is configured.
func newArchive(opts archiveOptions, logger *zap.Logger) (*archive, error) {
	if opts.ClickhouseDSN == "" {
		logger.Info("event archive disabled")
		return nil, nil
	}
	repo, err := clickhouse.NewRepository(opts.ClickhouseDSN, metrics.NewClickhouseRepository())
	if err != nil {
		return nil, fmt.Errorf("init event archive: %w", err)
	}
	logger = logger.Named("archive")
	queue := batcher.New[events.Record](logger, repo.InsertEvents, batcher.Config{
		FlushSize:     opts.FlushSize,
		FlushInterval: opts.FlushInterval,
		RPS:           opts.RPS,
		MaxAttempts:   opts.MaxAttempts,
	})
	return &archive{repo: repo, queue: queue, logger: logger}, nil
}

// Start runs the queue until Close, regardless of ctx cancellation, so events committed during
// shutdown still reach the archive.
func (a *archive) Start(ctx context.Context) {
	a.queue.Start(context.WithoutCancel(ctx))
}

// reportGap logs how far the archive trails the bridge event log. Events committed while the
// archive was unreachable are not replayed.
func (a *archive) reportGap(ctx context.Context, lastEvent uint64) {
	archived, err := a.repo.MaxSequence(ctx)
	if err != nil {
		a.logger.Warn("read archived sequence", zap.Error(err))
		return
	}
	if archived < lastEvent {
		a.logger.Warn("event archive is behind",
			zap.Uint64("archived", archived),
			zap.Uint64("last_event", lastEvent))
	}
}

// Close flushes the queued records before closing the connection.
func (a *archive) Close() {
	a.queue.Stop()
	if dropped := a.queue.Dropped(); dropped > 0 {
		a.logger.Warn("archive records dropped", zap.Int("records", dropped))
	}
	if err := a.repo.Close(); err != nil {
		a.logger.Error("close event archive", zap.Error(err))
	}
}

// Package relayer follows a bitcoind node and submits its headers and the custody-relevant
// transactions of confirmed blocks to the bridge.
package relayer

import (
	"context"
	"time"

	"github.com/goodnatureofminers/btcbridge/internal/clock"
	"go.uber.org/zap"
)

// Config tunes the relayer. Zero values take the package defaults.
type Config struct {
	WorkerCount int
	BatchSize   int
	MaxLookback uint32
	// StartHeight is the first block scanned for transactions. Zero starts after the confirmed
	// tip seen at the first sync.
	StartHeight uint32
}

// Relayer moves chain data from a node to the bridge.
type Relayer struct {
	node       Node
	target     Target
	classifier Classifier
	metrics    Metrics
	logger     *zap.Logger

	workerCount       int
	batchSize         int
	maxLookback       uint32
	sleep             func(context.Context, time.Duration) error
	sleepDuration     time.Duration
	longSleepDuration time.Duration
	blockSignal       <-chan struct{}

	// next is the next height scanned for transactions, zero until the first sync.
	next uint32
}

// New builds a Relayer. blockSignal may be nil; when set, a value on it cuts the idle wait short.
func New(
	node Node,
	target Target,
	classifier Classifier,
	metrics Metrics,
	cfg Config,
	logger *zap.Logger,
	blockSignal <-chan struct{},
) *Relayer {
	r := &Relayer{
		node:              node,
		target:            target,
		classifier:        classifier,
		metrics:           metrics,
		logger:            logger.Named("relayer"),
		workerCount:       cfg.WorkerCount,
		batchSize:         cfg.BatchSize,
		maxLookback:       cfg.MaxLookback,
		sleep:             clock.SleepWithContext,
		sleepDuration:     sleepDuration,
		longSleepDuration: longSleepDuration,
		blockSignal:       blockSignal,
		next:              cfg.StartHeight,
	}
	if r.workerCount <= 0 {
		r.workerCount = defaultWorkerCount
	}
	if r.batchSize <= 0 {
		r.batchSize = defaultBatchSize
	}
	if r.maxLookback == 0 {
		r.maxLookback = defaultMaxLookback
	}
	return r
}

// Run relays until the context is canceled.
func (r *Relayer) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := r.run(ctx); err != nil {
			r.logger.Warn("sync failed, backing off", zap.Error(err), zap.Duration("sleep", r.sleepDuration))
			if sleepErr := r.wait(ctx, r.sleepDuration); sleepErr != nil {
				return sleepErr
			}
		}
	}
}

func (r *Relayer) run(ctx context.Context) error {
	progressed, err := r.Sync(ctx)
	if err != nil {
		return err
	}
	if progressed {
		return nil
	}
	r.logger.Debug("bridge is up to date; sleeping", zap.Duration("sleep", r.longSleepDuration))
	return r.wait(ctx, r.longSleepDuration)
}

// Sync performs one round: push the next batch of headers, then scan newly confirmed blocks.
// It reports whether anything was submitted.
func (r *Relayer) Sync(ctx context.Context) (bool, error) {
	started := time.Now()
	headers, err := r.syncHeaders(ctx)
	if err == nil {
		var scanned int
		scanned, err = r.scanConfirmed(ctx)
		r.metrics.ObserveSync(err, headers, started)
		return headers > 0 || scanned > 0, err
	}
	r.metrics.ObserveSync(err, headers, started)
	return headers > 0, err
}

func (r *Relayer) wait(ctx context.Context, d time.Duration) error {
	if r.blockSignal == nil {
		return r.sleep(ctx, d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.blockSignal:
		return nil
	case <-timer.C:
		return nil
	}
}

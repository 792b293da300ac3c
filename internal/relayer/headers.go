package relayer

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/pkg/safe"
	"github.com/goodnatureofminers/btcbridge/pkg/workerpool"
	"go.uber.org/zap"
)

// syncHeaders pushes up to batchSize node headers above the last height both chains agree on.
func (r *Relayer) syncHeaders(ctx context.Context) (int, error) {
	best, _, err := r.target.Tips(ctx)
	if err != nil {
		return 0, fmt.Errorf("bridge tips: %w", err)
	}
	count, err := r.node.GetBlockCount()
	if err != nil {
		return 0, fmt.Errorf("node block count: %w", err)
	}
	nodeTip, err := safe.Uint32(count)
	if err != nil {
		return 0, fmt.Errorf("node block count: %w", err)
	}

	fork, err := r.forkPoint(ctx, min(best.Height, nodeTip))
	if err != nil {
		return 0, err
	}
	if fork >= nodeTip {
		return 0, nil
	}
	last := nodeTip
	if nodeTip-fork > uint32(r.batchSize) {
		last = fork + uint32(r.batchSize)
	}

	heights := make([]uint32, 0, last-fork)
	for h := fork + 1; h <= last; h++ {
		heights = append(heights, h)
	}
	headers, err := workerpool.Map(ctx, r.workerCount, heights, r.fetchHeader)
	if err != nil {
		return 0, err
	}

	pushed := 0
	for i, h := range headers {
		var raw bytes.Buffer
		if err := h.Serialize(&raw); err != nil {
			return pushed, fmt.Errorf("serialize header %d: %w", heights[i], err)
		}
		err := r.target.PushHeader(ctx, raw.Bytes())
		r.metrics.ObserveSubmit(submitKindHeader, err)
		switch {
		case err == nil:
			pushed++
		case errors.Is(err, model.ErrExistingHeader):
		default:
			return pushed, fmt.Errorf("push header %d: %w", heights[i], err)
		}
	}
	if pushed > 0 {
		r.logger.Info("headers relayed",
			zap.Int("count", pushed),
			zap.Uint32("from", heights[0]),
			zap.Uint32("to", last),
			zap.Uint32("node_tip", nodeTip))
	}
	return pushed, nil
}

// forkPoint walks down from height until the node and the bridge main chain hold the same hash.
func (r *Relayer) forkPoint(ctx context.Context, height uint32) (uint32, error) {
	for steps := uint32(0); steps <= r.maxLookback; steps++ {
		want, ok, err := r.target.MainHashAt(ctx, height)
		if err != nil {
			return 0, fmt.Errorf("bridge main hash at %d: %w", height, err)
		}
		if !ok {
			return 0, fmt.Errorf("bridge has no main-chain header at %d", height)
		}
		got, err := r.node.GetBlockHash(int64(height))
		if err != nil {
			return 0, fmt.Errorf("node block hash at %d: %w", height, err)
		}
		if *got == want {
			return height, nil
		}
		if height == 0 {
			break
		}
		height--
	}
	return 0, fmt.Errorf("node and bridge share no block within %d of the bridge tip", r.maxLookback)
}

func (r *Relayer) fetchHeader(_ context.Context, height uint32) (wire.BlockHeader, error) {
	hash, err := r.node.GetBlockHash(int64(height))
	if err != nil {
		return wire.BlockHeader{}, fmt.Errorf("node block hash at %d: %w", height, err)
	}
	header, err := r.node.GetBlockHeader(hash)
	if err != nil {
		return wire.BlockHeader{}, fmt.Errorf("node header %s: %w", hash, err)
	}
	return *header, nil
}

package relayer

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/chain"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/relay"
	"github.com/goodnatureofminers/btcbridge/pkg/workerpool"
	"go.uber.org/zap"
)

// scanConfirmed relays the relevant transactions of blocks that became confirmed since the last
// round and returns the number of blocks scanned.
func (r *Relayer) scanConfirmed(ctx context.Context) (int, error) {
	_, confirmed, err := r.target.Tips(ctx)
	if err != nil {
		return 0, fmt.Errorf("bridge tips: %w", err)
	}
	if r.next == 0 {
		r.next = confirmed.Height + 1
		r.logger.Info("scanning transactions from the confirmed tip", zap.Uint32("height", r.next))
	}
	if r.next > confirmed.Height {
		return 0, nil
	}
	last := confirmed.Height
	if last-r.next >= uint32(r.batchSize) {
		last = r.next + uint32(r.batchSize) - 1
	}

	heights := make([]uint32, 0, last-r.next+1)
	for h := r.next; h <= last; h++ {
		heights = append(heights, h)
	}
	blocks, err := workerpool.Map(ctx, r.workerCount, heights, r.fetchBlock)
	if err != nil {
		return 0, err
	}

	for i, block := range blocks {
		if err := r.relayBlock(ctx, heights[i], block); err != nil {
			return i, fmt.Errorf("relay block %d: %w", heights[i], err)
		}
		r.next = heights[i] + 1
	}
	return len(blocks), nil
}

// fetchBlock loads the block the bridge holds on its main chain at height.
func (r *Relayer) fetchBlock(ctx context.Context, height uint32) (*wire.MsgBlock, error) {
	hash, ok, err := r.target.MainHashAt(ctx, height)
	if err != nil {
		return nil, fmt.Errorf("bridge main hash at %d: %w", height, err)
	}
	if !ok {
		return nil, fmt.Errorf("bridge has no main-chain header at %d", height)
	}
	block, err := r.node.GetBlock(&hash)
	if err != nil {
		return nil, fmt.Errorf("node block %s: %w", hash, err)
	}
	if got := block.BlockHash(); got != hash {
		return nil, fmt.Errorf("node returned block %s for %s", got, hash)
	}
	return block, nil
}

func (r *Relayer) relayBlock(ctx context.Context, height uint32, block *wire.MsgBlock) error {
	view, err := r.target.CustodyView(ctx)
	if err != nil {
		return fmt.Errorf("custody view: %w", err)
	}
	blockHash := block.BlockHash()
	hashes := make([]chainhash.Hash, len(block.Transactions))
	for i, tx := range block.Transactions {
		hashes[i] = tx.TxHash()
	}

	// the coinbase never touches custody
	for i := 1; i < len(block.Transactions); i++ {
		tx := block.Transactions[i]
		cls, err := r.classifier.ClassifyTransaction(tx, nil, view)
		if err != nil {
			r.logger.Debug("skip unclassifiable transaction", zap.Stringer("tx", hashes[i]), zap.Error(err))
			continue
		}
		if cls.Kind == model.TxIrrelevant {
			continue
		}

		proof, err := chain.BuildMerkleProof(hashes, uint32(i))
		if err != nil {
			return err
		}
		var raw bytes.Buffer
		if err := tx.Serialize(&raw); err != nil {
			return fmt.Errorf("serialize tx %s: %w", hashes[i], err)
		}
		var prev []byte
		if cls.Kind != model.TxWithdrawal {
			prev = r.prevTx(tx)
		}

		state, err := r.target.PushTransaction(ctx, raw.Bytes(), relay.Info{BlockHash: blockHash, Proof: proof}, prev)
		r.metrics.ObserveSubmit(submitKindTransaction, err)
		switch {
		case err == nil:
			r.logger.Info("transaction relayed",
				zap.Stringer("tx", hashes[i]),
				zap.Uint32("height", height),
				zap.Stringer("kind", state.Kind),
				zap.Stringer("result", state.Result))
			if state.Kind != model.TxDeposit {
				if view, err = r.target.CustodyView(ctx); err != nil {
					return fmt.Errorf("custody view: %w", err)
				}
			}
		case errors.Is(err, model.ErrReplayedTx):
		case model.KindOf(err) != 0:
			r.logger.Warn("transaction rejected by bridge",
				zap.Stringer("tx", hashes[i]),
				zap.Uint32("height", height),
				zap.Error(err))
		default:
			return fmt.Errorf("push tx %s: %w", hashes[i], err)
		}
	}
	return nil
}

// prevTx returns the serialised transaction funding input 0, or nil when the node cannot serve it.
func (r *Relayer) prevTx(tx *wire.MsgTx) []byte {
	if len(tx.TxIn) == 0 {
		return nil
	}
	hash := tx.TxIn[0].PreviousOutPoint.Hash
	prev, err := r.node.GetRawTransaction(&hash)
	if err != nil {
		r.logger.Debug("prev tx unavailable", zap.Stringer("tx", hash), zap.Error(err))
		return nil
	}
	var raw bytes.Buffer
	if err := prev.MsgTx().Serialize(&raw); err != nil {
		return nil
	}
	return raw.Bytes()
}

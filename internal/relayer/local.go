package relayer

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/btcbridge/internal/bridge"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/chain"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/relay"
)

// LocalTarget submits to a bridge running in the same process.
type LocalTarget struct {
	bridge *bridge.Bridge
}

func NewLocalTarget(b *bridge.Bridge) *LocalTarget {
	return &LocalTarget{bridge: b}
}

func (t *LocalTarget) Tips(context.Context) (best, confirmed model.ChainIndex, err error) {
	return t.bridge.Tips()
}

func (t *LocalTarget) MainHashAt(_ context.Context, height uint32) (chainhash.Hash, bool, error) {
	return t.bridge.MainHashAt(height)
}

func (t *LocalTarget) CustodyView(context.Context) (chain.CustodyView, error) {
	return t.bridge.CustodyView()
}

func (t *LocalTarget) PushHeader(ctx context.Context, raw []byte) error {
	_, err := t.bridge.PushHeader(ctx, raw)
	return err
}

func (t *LocalTarget) PushTransaction(ctx context.Context, raw []byte, info relay.Info, prev []byte) (model.TxState, error) {
	return t.bridge.PushTransaction(ctx, raw, info, prev)
}

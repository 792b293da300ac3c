package relayer

import (
	"context"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/chain"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/relay"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Node is the bitcoind RPC surface the relayer reads from.
	Node interface {
		GetBlockCount() (int64, error)
		GetBlockHash(blockHeight int64) (*chainhash.Hash, error)
		GetBlockHeader(blockHash *chainhash.Hash) (*wire.BlockHeader, error)
		GetBlock(blockHash *chainhash.Hash) (*wire.MsgBlock, error)
		GetRawTransaction(txHash *chainhash.Hash) (*btcutil.Tx, error)
	}

	// Target is the bridge the relayer submits to, in process or over the network.
	Target interface {
		Tips(ctx context.Context) (best, confirmed model.ChainIndex, err error)
		MainHashAt(ctx context.Context, height uint32) (chainhash.Hash, bool, error)
		CustodyView(ctx context.Context) (chain.CustodyView, error)
		PushHeader(ctx context.Context, raw []byte) error
		PushTransaction(ctx context.Context, raw []byte, info relay.Info, prev []byte) (model.TxState, error)
	}

	// Classifier picks the transactions worth relaying.
	Classifier interface {
		ClassifyTransaction(tx, prev *wire.MsgTx, view chain.CustodyView) (chain.Classification, error)
	}

	Metrics interface {
		ObserveSync(err error, headers int, started time.Time)
		ObserveSubmit(kind string, err error)
	}
)

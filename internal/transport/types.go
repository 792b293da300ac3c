package transport

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/btcbridge/internal/bridge"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/chain"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/events"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/relay"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Bridge is the facade served over HTTP.
	Bridge interface {
		Status() (bridge.Status, error)
		Tips() (best, confirmed model.ChainIndex, err error)
		Header(hash chainhash.Hash) (*model.HeaderRecord, error)
		MainHashAt(height uint32) (chainhash.Hash, bool, error)
		TxState(hash chainhash.Hash) (model.TxState, bool, error)
		PendingDeposits(address string) ([]model.PendingDeposit, error)
		Session() (*model.TrusteeSession, error)
		CustodyView() (chain.CustodyView, error)
		VerifyAddress(address string) error

		PushHeader(ctx context.Context, raw []byte) (model.ChainIndex, error)
		PushTransaction(ctx context.Context, raw []byte, info relay.Info, prev []byte) (model.TxState, error)
		CreateProposal(ctx context.Context, proposer model.AccountID, ids []model.WithdrawalID, rawTx []byte) (*model.WithdrawalProposal, error)
		SignProposal(ctx context.Context, signer model.AccountID, rawTx []byte) (*model.WithdrawalProposal, error)
		RemoveProposal(ctx context.Context, origin model.Origin) error
		RemovePendingDeposit(ctx context.Context, origin model.Origin, address string, account *model.AccountID) (uint64, error)
		TransitionTrustees(ctx context.Context, origin model.Origin, trustees []model.TrusteeInfo) (*model.TrusteeSession, error)
	}

	// EventStore serves archived events.
	EventStore interface {
		EventsSince(ctx context.Context, after uint64, limit int) ([]events.Record, error)
	}
)

var _ Bridge = (*bridge.Bridge)(nil)

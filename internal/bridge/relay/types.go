package relay

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/chain"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/storage"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Headers answers inclusion and confirmation questions about stored headers.
	Headers interface {
		Header(r storage.Reader, hash chainhash.Hash) (*model.HeaderRecord, error)
		IsMainChain(r storage.Reader, rec *model.HeaderRecord) (bool, error)
		Confirmed(r storage.Reader) (model.ChainIndex, error)
	}

	// Sessions exposes the custody addresses and closes transition windows.
	Sessions interface {
		CustodyView(r storage.Reader) (chain.CustodyView, error)
		CompleteTransition(rw storage.ReadWriter, from string, sweep chainhash.Hash, emit model.Emitter) error
	}

	// Withdrawals exposes the in-flight proposal and settles it once confirmed.
	Withdrawals interface {
		Proposal(r storage.Reader) (*model.WithdrawalProposal, error)
		Settle(ctx context.Context, rw storage.ReadWriter, txHash chainhash.Hash, emit model.Emitter) error
	}

	// Deposits parks deposits without a known account.
	Deposits interface {
		Add(rw storage.ReadWriter, address string, entry model.PendingDeposit, emit model.Emitter) error
	}

	// AssetLedger credits bridged value to host accounts.
	AssetLedger interface {
		Issue(ctx context.Context, account model.AccountID, amount uint64) error
	}

	// AccountBinder maps deposit hints to host accounts. It is read-only for the bridge.
	AccountBinder interface {
		ResolvePayload(ctx context.Context, payload []byte) (model.AccountID, bool, error)
		BoundAccount(ctx context.Context, c model.Chain, address string) (model.AccountID, bool, error)
	}
)

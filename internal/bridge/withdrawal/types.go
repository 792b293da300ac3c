package withdrawal

import (
	"context"

	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/storage"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// RecordsLedger owns the withdrawal records. Lock moves records from Applying to Processing,
	// Unlock moves them back and Complete finalises them.
	RecordsLedger interface {
		Withdrawal(ctx context.Context, id model.WithdrawalID) (model.WithdrawalRecord, error)
		Lock(ctx context.Context, ids []model.WithdrawalID) error
		Unlock(ctx context.Context, ids []model.WithdrawalID) error
		Complete(ctx context.Context, ids []model.WithdrawalID) error
	}

	// Sessions exposes the current trustee session.
	Sessions interface {
		Session(r storage.Reader) (*model.TrusteeSession, error)
	}

	// Scripts is the part of the chain adapter the proposal checks rely on.
	Scripts interface {
		PayToAddress(address string) ([]byte, error)
		Signers(tx *wire.MsgTx, redeemScript []byte) ([]int, error)
	}

	// Governance decides which accounts may dispatch privileged calls.
	Governance interface {
		IsAdmin(ctx context.Context, account model.AccountID) (bool, error)
	}
)

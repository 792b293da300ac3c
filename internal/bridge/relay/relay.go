// Package relay verifies relayed Bitcoin transactions against stored headers and applies their effects.
package relay

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/chain"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/storage"
	"go.uber.org/zap"
)

// Info locates a transaction inside a stored block.
type Info struct {
	BlockHash chainhash.Hash
	Proof     chain.MerkleProof
}

// Relay processes confirmed transactions exactly once.
type Relay struct {
	adapter     chain.Adapter
	headers     Headers
	sessions    Sessions
	withdrawals Withdrawals
	deposits    Deposits
	assets      AssetLedger
	binder      AccountBinder
	logger      *zap.Logger
}

func New(
	adapter chain.Adapter,
	headers Headers,
	sessions Sessions,
	withdrawals Withdrawals,
	deposits Deposits,
	assets AssetLedger,
	binder AccountBinder,
	logger *zap.Logger,
) *Relay {
	return &Relay{
		adapter:     adapter,
		headers:     headers,
		sessions:    sessions,
		withdrawals: withdrawals,
		deposits:    deposits,
		assets:      assets,
		binder:      binder,
		logger:      logger.Named("relay"),
	}
}

// PushTransaction verifies that raw is included in a confirmed main-chain block, classifies it and
// applies its effects. prevRaw is the transaction that funded input 0 and may be nil.
// Credits are deferred on emit. On error the caller must discard the storage unit.
func (r *Relay) PushTransaction(
	ctx context.Context,
	rw storage.ReadWriter,
	raw []byte,
	info Info,
	prevRaw []byte,
	emit model.Emitter,
) (model.TxState, error) {
	tx, err := r.adapter.DecodeTransaction(raw)
	if err != nil {
		return model.TxState{}, err
	}
	var prev *wire.MsgTx
	if len(prevRaw) > 0 {
		if prev, err = r.adapter.DecodeTransaction(prevRaw); err != nil {
			return model.TxState{}, err
		}
	}
	hash := tx.TxHash()

	block, err := r.verifyInclusion(rw, hash, info)
	if err != nil {
		return model.TxState{}, err
	}
	if state, ok, err := getTxState(rw, hash); err != nil {
		return model.TxState{}, err
	} else if ok && state.Result == model.TxSuccess {
		return model.TxState{}, model.Errorf(model.KindReplayedTx, "%s already processed as %s", hash, state.Kind)
	}

	view, err := r.sessions.CustodyView(rw)
	if err != nil {
		return model.TxState{}, err
	}
	proposal, err := r.withdrawals.Proposal(rw)
	if err != nil {
		return model.TxState{}, err
	}
	if proposal != nil {
		view.Proposal = proposal.Tx
	}
	cls, err := r.adapter.ClassifyTransaction(tx, prev, view)
	if err != nil {
		return model.TxState{}, err
	}

	state := model.TxState{Kind: cls.Kind, Result: model.TxSuccess}
	switch cls.Kind {
	case model.TxWithdrawal:
		if !cls.Matched {
			r.logger.Warn("custody spend matches no proposal", zap.Stringer("tx", hash))
			state.Result = model.TxFailure
			break
		}
		if err := r.withdrawals.Settle(ctx, rw, hash, emit); err != nil {
			return model.TxState{}, model.Wrap(model.KindProcessTxFailed, "settle withdrawal", err)
		}
	case model.TxTrusteeTransition:
		if err := r.sessions.CompleteTransition(rw, cls.SweptFrom, hash, emit); err != nil {
			return model.TxState{}, err
		}
	case model.TxDeposit:
		if err := r.deposit(ctx, rw, hash, block.Height, cls, prev != nil, emit); err != nil {
			return model.TxState{}, err
		}
	}

	if err := putTxState(rw, hash, state); err != nil {
		return model.TxState{}, err
	}
	emit.Emit(model.TxProcessed{TxHash: hash, BlockHash: info.BlockHash, State: state})
	return state, nil
}

// TxState returns the recorded outcome of hash.
func (r *Relay) TxState(rd storage.Reader, hash chainhash.Hash) (model.TxState, bool, error) {
	return getTxState(rd, hash)
}

// verifyInclusion returns the record of the block that provably contains hash at or below the
// confirmed tip of the main chain.
func (r *Relay) verifyInclusion(rd storage.Reader, hash chainhash.Hash, info Info) (*model.HeaderRecord, error) {
	rec, err := r.headers.Header(rd, info.BlockHash)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, model.Errorf(model.KindUnknownBlock, "%s", info.BlockHash)
	}
	if !chain.VerifyMerkleProof(rec.Header.MerkleRoot, hash, info.Proof) {
		return nil, model.Errorf(model.KindBadMerkleProof, "%s at index %d of %s", hash, info.Proof.TxIndex, info.BlockHash)
	}
	main, err := r.headers.IsMainChain(rd, rec)
	if err != nil {
		return nil, err
	}
	confirmed, err := r.headers.Confirmed(rd)
	if err != nil {
		return nil, err
	}
	if !main || rec.Height > confirmed.Height {
		return nil, model.Errorf(model.KindUnconfirmedTx, "block %s at %d, main %v, confirmed %d",
			info.BlockHash, rec.Height, main, confirmed.Height)
	}
	return rec, nil
}

func (r *Relay) deposit(
	ctx context.Context,
	rw storage.ReadWriter,
	hash chainhash.Hash,
	height uint32,
	cls chain.Classification,
	hasPrev bool,
	emit model.Emitter,
) error {
	account, ok, err := r.resolveAccount(ctx, cls, hasPrev)
	if err != nil {
		return err
	}
	if !ok {
		entry := model.PendingDeposit{TxHash: hash, Value: cls.DepositValue, Height: height}
		return r.deposits.Add(rw, cls.InputAddress, entry, emit)
	}

	emit.Defer(func(ctx context.Context) error {
		if err := r.assets.Issue(ctx, account, cls.DepositValue); err != nil {
			return model.Wrap(model.KindProcessTxFailed, fmt.Sprintf("credit %s", account), err)
		}
		return nil
	})
	emit.Emit(model.Deposited{TxHash: hash, Account: account, Amount: cls.DepositValue})
	return nil
}

// resolveAccount tries the OP_RETURN payload first and the binding of the funding address second.
func (r *Relay) resolveAccount(ctx context.Context, cls chain.Classification, hasPrev bool) (model.AccountID, bool, error) {
	if len(cls.Payload) > 0 {
		account, ok, err := r.binder.ResolvePayload(ctx, cls.Payload)
		if err != nil {
			return "", false, model.Wrap(model.KindProcessTxFailed, "resolve payload", err)
		}
		if ok {
			return account, true, nil
		}
	}
	if !hasPrev {
		return "", false, model.Errorf(model.KindMissingPrevTx, "deposit carries no account and no prev tx was supplied")
	}
	if cls.InputAddress == "" {
		return "", false, model.Errorf(model.KindInvalidPrevTx, "input 0 spends a non-standard output")
	}
	account, ok, err := r.binder.BoundAccount(ctx, r.adapter.Chain(), cls.InputAddress)
	if err != nil {
		return "", false, model.Wrap(model.KindProcessTxFailed, "bound account", err)
	}
	return account, ok, nil
}

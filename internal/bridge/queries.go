package bridge

import (
	"errors"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/chain"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/storage"
)

type chainTips struct {
	ok        bool
	genesis   model.ChainIndex
	best      model.ChainIndex
	confirmed model.ChainIndex
}

// chainTips reads the header tips; ok is false until a genesis header is installed.
func (b *Bridge) chainTips(r storage.Reader) (chainTips, error) {
	genesis, err := b.headers.Genesis(r)
	if errors.Is(err, model.ErrNotInitialized) {
		return chainTips{}, nil
	}
	if err != nil {
		return chainTips{}, err
	}
	best, err := b.headers.Best(r)
	if err != nil {
		return chainTips{}, err
	}
	confirmed, err := b.headers.Confirmed(r)
	if err != nil {
		return chainTips{}, err
	}
	return chainTips{ok: true, genesis: genesis, best: best, confirmed: confirmed}, nil
}

// Status is a read-only summary of the bridge state.
type Status struct {
	Chain             model.Chain
	Initialized       bool
	Genesis           model.ChainIndex
	Best              model.ChainIndex
	Confirmed         model.ChainIndex
	ConfirmationDepth uint32
	Session           *model.TrusteeSession
	Proposal          *model.WithdrawalProposal
	PendingAddresses  []string
	LastEvent         uint64
}

func (b *Bridge) Status() (Status, error) {
	st := Status{Chain: b.adapter.Chain(), ConfirmationDepth: b.headers.ConfirmationDepth()}
	err := b.db.View(func(r storage.Reader) error {
		tips, err := b.chainTips(r)
		if err != nil {
			return err
		}
		st.Initialized = tips.ok
		st.Genesis, st.Best, st.Confirmed = tips.genesis, tips.best, tips.confirmed

		st.Session, err = b.trustees.Session(r)
		if errors.Is(err, model.ErrNotInitialized) {
			st.Initialized, err = false, nil
		}
		if err != nil {
			return err
		}
		if st.Proposal, err = b.withdrawals.Proposal(r); err != nil {
			return err
		}
		if st.PendingAddresses, err = b.deposits.Addresses(r); err != nil {
			return err
		}
		st.LastEvent, err = lastSequence(r)
		return err
	})
	return st, err
}

// Header returns the stored header record, or nil when hash is unknown.
func (b *Bridge) Header(hash chainhash.Hash) (*model.HeaderRecord, error) {
	var rec *model.HeaderRecord
	err := b.db.View(func(r storage.Reader) error {
		var err error
		rec, err = b.headers.Header(r, hash)
		return err
	})
	return rec, err
}

// MainHashAt returns the main-chain hash at height.
func (b *Bridge) MainHashAt(height uint32) (chainhash.Hash, bool, error) {
	var (
		hash chainhash.Hash
		ok   bool
	)
	err := b.db.View(func(r storage.Reader) error {
		var err error
		hash, ok, err = b.headers.MainHashAt(r, height)
		return err
	})
	return hash, ok, err
}

// TxState returns the recorded outcome of a relayed transaction.
func (b *Bridge) TxState(hash chainhash.Hash) (model.TxState, bool, error) {
	var (
		state model.TxState
		ok    bool
	)
	err := b.db.View(func(r storage.Reader) error {
		var err error
		state, ok, err = b.relay.TxState(r, hash)
		return err
	})
	return state, ok, err
}

func (b *Bridge) PendingDeposits(address string) ([]model.PendingDeposit, error) {
	var out []model.PendingDeposit
	err := b.db.View(func(r storage.Reader) error {
		var err error
		out, err = b.deposits.Pending(r, address)
		return err
	})
	return out, err
}

// Session returns the current trustee session.
func (b *Bridge) Session() (*model.TrusteeSession, error) {
	var s *model.TrusteeSession
	err := b.db.View(func(r storage.Reader) error {
		var err error
		s, err = b.trustees.Session(r)
		return err
	})
	return s, err
}

// Tips returns the best and confirmed header tips.
func (b *Bridge) Tips() (best, confirmed model.ChainIndex, err error) {
	err = b.db.View(func(r storage.Reader) error {
		tips, err := b.chainTips(r)
		if err != nil {
			return err
		}
		if !tips.ok {
			return model.Errorf(model.KindNotInitialized, "header chain has no genesis")
		}
		best, confirmed = tips.best, tips.confirmed
		return nil
	})
	return best, confirmed, err
}

// CustodyView returns the custody addresses and the in-flight proposal, the inputs a relayer
// needs to pick relevant transactions.
func (b *Bridge) CustodyView() (chain.CustodyView, error) {
	var view chain.CustodyView
	err := b.db.View(func(r storage.Reader) error {
		var err error
		if view, err = b.trustees.CustodyView(r); err != nil {
			return err
		}
		p, err := b.withdrawals.Proposal(r)
		if err != nil {
			return err
		}
		if p != nil {
			view.Proposal = p.Tx
		}
		return nil
	})
	return view, err
}

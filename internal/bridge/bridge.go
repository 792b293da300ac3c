// Package bridge applies relayer, trustee and governance calls to the bridge state. Calls run one at
// a time, each inside a single storage unit, and their events are published only after commit.
package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/chain"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/deposit"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/events"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/headers"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/relay"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/storage"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/trustee"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/withdrawal"
	"github.com/goodnatureofminers/btcbridge/internal/clock"
	"github.com/sasha-s/go-deadlock"
	"go.uber.org/zap"
)

var sequenceKey = []byte("evt/seq")

// Config carries the chain tuning of the bridge.
type Config struct {
	ConfirmationDepth uint32
	MaxForkRetention  uint32
	MaxFutureDrift    time.Duration
}

// Bridge is the single entry point for state changing calls.
type Bridge struct {
	mu deadlock.Mutex

	db          *storage.DB
	adapter     chain.Adapter
	headers     *headers.Store
	trustees    *trustee.Manager
	deposits    *deposit.Ledger
	withdrawals *withdrawal.Machine
	relay       *relay.Relay
	sink        events.Sink
	metrics     Metrics
	logger      *zap.Logger
}

// New wires the bridge components over db. A nil sink drops events and nil metrics observe nothing.
func New(
	db *storage.DB,
	adapter chain.Adapter,
	cfg Config,
	host Host,
	sink events.Sink,
	metrics Metrics,
	ts clock.TimeSource,
	logger *zap.Logger,
) *Bridge {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if sink == nil {
		sink = events.Fanout{}
	}
	store := headers.New(headers.Config{
		Params:            adapter.Params(),
		ConfirmationDepth: cfg.ConfirmationDepth,
		MaxForkRetention:  cfg.MaxForkRetention,
		MaxFutureDrift:    cfg.MaxFutureDrift,
	}, ts)
	trustees := trustee.NewManager(adapter.Chain(), adapter, host)
	deposits := deposit.NewLedger(host, host)
	withdrawals := withdrawal.NewMachine(adapter.Chain(), adapter, trustees, host, host)

	return &Bridge{
		db:          db,
		adapter:     adapter,
		headers:     store,
		trustees:    trustees,
		deposits:    deposits,
		withdrawals: withdrawals,
		relay:       relay.New(adapter, store, trustees, withdrawals, deposits, host, host, logger),
		sink:        sink,
		metrics:     metrics,
		logger:      logger.Named("bridge").With(zap.Stringer("chain", adapter.Chain())),
	}
}

// Genesis seeds the header store.
type Genesis struct {
	Header wire.BlockHeader
	Height uint32
}

// Bootstrap installs the genesis header and the first trustee session in one unit.
func (b *Bridge) Bootstrap(ctx context.Context, genesis Genesis, trustees []model.TrusteeInfo) error {
	return b.apply(ctx, "bootstrap", func(rw storage.ReadWriter, emit model.Emitter) error {
		if _, err := b.headers.InitGenesis(rw, genesis.Header, genesis.Height); err != nil {
			return err
		}
		_, err := b.trustees.Init(rw, trustees, emit)
		return err
	})
}

// PushHeader validates and stores one serialised header.
func (b *Bridge) PushHeader(ctx context.Context, raw []byte) (model.ChainIndex, error) {
	header, err := b.adapter.DecodeHeader(raw)
	if err != nil {
		b.metrics.ObserveOperation("push_header", err, time.Now())
		return model.ChainIndex{}, err
	}
	var idx model.ChainIndex
	err = b.apply(ctx, "push_header", func(rw storage.ReadWriter, emit model.Emitter) error {
		var err error
		idx, err = b.headers.PushHeader(rw, header, emit)
		return err
	})
	return idx, err
}

// PushTransaction verifies and processes one relayed transaction.
func (b *Bridge) PushTransaction(ctx context.Context, raw []byte, info relay.Info, prev []byte) (model.TxState, error) {
	var state model.TxState
	err := b.apply(ctx, "push_transaction", func(rw storage.ReadWriter, emit model.Emitter) error {
		var err error
		state, err = b.relay.PushTransaction(ctx, rw, raw, info, prev, emit)
		return err
	})
	return state, err
}

// CreateProposal opens a withdrawal proposal on behalf of a trustee.
func (b *Bridge) CreateProposal(
	ctx context.Context,
	proposer model.AccountID,
	ids []model.WithdrawalID,
	rawTx []byte,
) (*model.WithdrawalProposal, error) {
	draft, err := b.adapter.DecodeTransaction(rawTx)
	if err != nil {
		b.metrics.ObserveOperation("create_proposal", err, time.Now())
		return nil, err
	}
	var p *model.WithdrawalProposal
	err = b.apply(ctx, "create_proposal", func(rw storage.ReadWriter, emit model.Emitter) error {
		var err error
		p, err = b.withdrawals.CreateProposal(ctx, rw, proposer, ids, draft, emit)
		return err
	})
	return p, err
}

// SignProposal records a trustee vote. An empty rawTx is a rejection.
func (b *Bridge) SignProposal(ctx context.Context, signer model.AccountID, rawTx []byte) (*model.WithdrawalProposal, error) {
	var signed *wire.MsgTx
	if len(rawTx) > 0 {
		var err error
		if signed, err = b.adapter.DecodeTransaction(rawTx); err != nil {
			b.metrics.ObserveOperation("sign_proposal", err, time.Now())
			return nil, err
		}
	}
	var p *model.WithdrawalProposal
	err := b.apply(ctx, "sign_proposal", func(rw storage.ReadWriter, emit model.Emitter) error {
		var err error
		p, err = b.withdrawals.SignProposal(ctx, rw, signer, signed, emit)
		return err
	})
	return p, err
}

// RemoveProposal drops the proposal by governance decision.
func (b *Bridge) RemoveProposal(ctx context.Context, origin model.Origin) error {
	return b.apply(ctx, "remove_proposal", func(rw storage.ReadWriter, emit model.Emitter) error {
		return b.withdrawals.RemoveProposal(ctx, rw, origin, emit)
	})
}

// RemovePendingDeposit releases the pending deposits of address, crediting account when given.
func (b *Bridge) RemovePendingDeposit(
	ctx context.Context,
	origin model.Origin,
	address string,
	account *model.AccountID,
) (uint64, error) {
	var total uint64
	err := b.apply(ctx, "remove_pending_deposit", func(rw storage.ReadWriter, emit model.Emitter) error {
		var err error
		total, err = b.deposits.Resolve(ctx, rw, origin, address, account, emit)
		return err
	})
	return total, err
}

// TransitionTrustees rotates the trustee set. It is refused while a proposal is collecting signatures.
func (b *Bridge) TransitionTrustees(
	ctx context.Context,
	origin model.Origin,
	trustees []model.TrusteeInfo,
) (*model.TrusteeSession, error) {
	var s *model.TrusteeSession
	err := b.apply(ctx, "transition_trustees", func(rw storage.ReadWriter, emit model.Emitter) error {
		collecting, err := b.withdrawals.Collecting(rw)
		if err != nil {
			return err
		}
		s, err = b.trustees.Transition(ctx, rw, origin, trustees, collecting, emit)
		return err
	})
	return s, err
}

// VerifyAddress accepts a withdrawal destination.
func (b *Bridge) VerifyAddress(address string) error {
	return b.db.View(func(r storage.Reader) error {
		return b.trustees.VerifyOutbound(r, address)
	})
}

// apply runs fn under the call mutex in one storage unit. Events are numbered inside the unit and
// handed to the sink once it committed. Host effects run last, after every storage write of the
// unit; an effect error discards the unit. A sink failure is logged and does not fail the call.
func (b *Bridge) apply(ctx context.Context, operation string, fn func(storage.ReadWriter, model.Emitter) error) error {
	started := time.Now()
	b.mu.Lock()
	defer b.mu.Unlock()

	var (
		buf       model.EventBuffer
		envelopes []model.Envelope
		tips      chainTips
	)
	err := b.db.Update(func(rw storage.ReadWriter) error {
		if err := fn(rw, &buf); err != nil {
			return err
		}
		var err error
		if envelopes, err = sequence(rw, buf.Events()); err != nil {
			return err
		}
		if tips, err = b.chainTips(rw); err != nil {
			return err
		}
		return buf.RunEffects(ctx)
	})
	b.metrics.ObserveOperation(operation, err, started)
	if err != nil {
		b.logger.Debug("call rejected", zap.String("operation", operation), zap.Error(err))
		return err
	}

	if tips.ok {
		b.metrics.SetTips(tips.best.Height, tips.confirmed.Height)
	}
	for _, e := range envelopes {
		b.metrics.ObserveEvent(e.Event.Kind())
	}
	if len(envelopes) == 0 {
		return nil
	}
	if err := b.sink.Publish(ctx, envelopes); err != nil {
		b.logger.Error("publish events",
			zap.String("operation", operation),
			zap.Uint64("first_sequence", envelopes[0].Sequence),
			zap.Int("count", len(envelopes)),
			zap.Error(err))
	}
	return nil
}

// sequence numbers events after the last committed sequence and stores the new last value.
func sequence(rw storage.ReadWriter, evs []model.Event) ([]model.Envelope, error) {
	if len(evs) == 0 {
		return nil, nil
	}
	last, err := lastSequence(rw)
	if err != nil {
		return nil, err
	}
	out := make([]model.Envelope, 0, len(evs))
	for _, e := range evs {
		last++
		out = append(out, model.Envelope{Sequence: last, Event: e})
	}
	var enc storage.Encoder
	enc.Uint(last)
	raw, err := enc.Finish()
	if err != nil {
		return nil, fmt.Errorf("encode event sequence: %w", err)
	}
	if err := rw.Put(sequenceKey, raw); err != nil {
		return nil, fmt.Errorf("put event sequence: %w", err)
	}
	return out, nil
}

func lastSequence(r storage.Reader) (uint64, error) {
	raw, err := r.Get(sequenceKey)
	if err != nil {
		return 0, fmt.Errorf("get event sequence: %w", err)
	}
	if raw == nil {
		return 0, nil
	}
	d := storage.NewDecoder(raw)
	v := d.Uint()
	if err := d.Finish(); err != nil {
		return 0, fmt.Errorf("decode event sequence: %w", err)
	}
	return v, nil
}

package model

import (
	"context"
	"encoding/hex"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"go.uber.org/zap"
)

// EventKind names an event emitted by the bridge.
type EventKind string

const (
	EventHeaderInserted             EventKind = "header_inserted"
	EventTxProcessed                EventKind = "tx_processed"
	EventDeposited                  EventKind = "deposited"
	EventUnclaimedDeposit           EventKind = "unclaimed_deposit"
	EventPendingDepositRemoved      EventKind = "pending_deposit_removed"
	EventProposalCreated            EventKind = "withdrawal_proposal_created"
	EventProposalVoted              EventKind = "withdrawal_proposal_voted"
	EventProposalCompleted          EventKind = "withdrawal_proposal_completed"
	EventProposalDropped            EventKind = "withdrawal_proposal_dropped"
	EventWithdrawalBroadcast        EventKind = "withdrawal_broadcast"
	EventTrusteeSessionRotated      EventKind = "trustee_session_rotated"
	EventTrusteeTransitionCompleted EventKind = "trustee_transition_completed"
)

// Event is a typed notification. Fields renders it for structured logs and the archive.
type Event interface {
	Kind() EventKind
	Fields() []zap.Field
}

// Effect is a call into a host ledger.
type Effect func(ctx context.Context) error

// Emitter collects the events and host effects produced while a call runs.
// Deferred effects run after every storage write of the call, so a storage failure never
// leaves a host change behind.
type Emitter interface {
	Emit(Event)
	Defer(Effect)
}

// EventBuffer is an Emitter that keeps events and effects in memory until the call commits.
type EventBuffer struct {
	events  []Event
	effects []Effect
}

func (b *EventBuffer) Emit(e Event) { b.events = append(b.events, e) }

func (b *EventBuffer) Defer(f Effect) { b.effects = append(b.effects, f) }

// Events returns the buffered events in emission order.
func (b *EventBuffer) Events() []Event { return b.events }

// RunEffects runs the deferred effects in order and stops at the first error.
func (b *EventBuffer) RunEffects(ctx context.Context) error {
	for _, f := range b.effects {
		if err := f(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Envelope is a committed event with its global sequence number.
type Envelope struct {
	Sequence uint64
	Event    Event
}

type HeaderInserted struct {
	Hash      chainhash.Hash
	Height    uint32
	Best      ChainIndex
	Confirmed ChainIndex
	Reorg     bool
}

func (HeaderInserted) Kind() EventKind { return EventHeaderInserted }

func (e HeaderInserted) Fields() []zap.Field {
	return []zap.Field{
		zap.Stringer("hash", e.Hash),
		zap.Uint32("height", e.Height),
		zap.Stringer("best", e.Best.Hash),
		zap.Uint32("best_height", e.Best.Height),
		zap.Uint32("confirmed_height", e.Confirmed.Height),
		zap.Bool("reorg", e.Reorg),
	}
}

type TxProcessed struct {
	TxHash    chainhash.Hash
	BlockHash chainhash.Hash
	State     TxState
}

func (TxProcessed) Kind() EventKind { return EventTxProcessed }

func (e TxProcessed) Fields() []zap.Field {
	return []zap.Field{
		zap.Stringer("tx", e.TxHash),
		zap.Stringer("block", e.BlockHash),
		zap.Stringer("kind", e.State.Kind),
		zap.Stringer("result", e.State.Result),
	}
}

type Deposited struct {
	TxHash  chainhash.Hash
	Account AccountID
	Amount  uint64
}

func (Deposited) Kind() EventKind { return EventDeposited }

func (e Deposited) Fields() []zap.Field {
	return []zap.Field{
		zap.Stringer("tx", e.TxHash),
		zap.String("account", string(e.Account)),
		zap.Uint64("amount", e.Amount),
	}
}

type UnclaimedDeposit struct {
	TxHash  chainhash.Hash
	Address string
	Amount  uint64
}

func (UnclaimedDeposit) Kind() EventKind { return EventUnclaimedDeposit }

func (e UnclaimedDeposit) Fields() []zap.Field {
	return []zap.Field{
		zap.Stringer("tx", e.TxHash),
		zap.String("address", e.Address),
		zap.Uint64("amount", e.Amount),
	}
}

type PendingDepositRemoved struct {
	Address string
	Account *AccountID
	Amount  uint64
	Entries int
}

func (PendingDepositRemoved) Kind() EventKind { return EventPendingDepositRemoved }

func (e PendingDepositRemoved) Fields() []zap.Field {
	fields := []zap.Field{
		zap.String("address", e.Address),
		zap.Uint64("amount", e.Amount),
		zap.Int("entries", e.Entries),
	}
	if e.Account != nil {
		fields = append(fields, zap.String("account", string(*e.Account)))
	}
	return fields
}

type ProposalCreated struct {
	Proposer AccountID
	IDs      []WithdrawalID
	TxHash   chainhash.Hash
}

func (ProposalCreated) Kind() EventKind { return EventProposalCreated }

func (e ProposalCreated) Fields() []zap.Field {
	return []zap.Field{
		zap.String("proposer", string(e.Proposer)),
		zap.Uint32s("ids", withdrawalIDs(e.IDs)),
		zap.Stringer("tx", e.TxHash),
	}
}

type ProposalVoted struct {
	Trustee    AccountID
	Approve    bool
	Approvals  int
	Rejections int
}

func (ProposalVoted) Kind() EventKind { return EventProposalVoted }

func (e ProposalVoted) Fields() []zap.Field {
	return []zap.Field{
		zap.String("trustee", string(e.Trustee)),
		zap.Bool("approve", e.Approve),
		zap.Int("approvals", e.Approvals),
		zap.Int("rejections", e.Rejections),
	}
}

// ProposalCompleted carries the fully signed transaction ready for broadcast.
type ProposalCompleted struct {
	IDs    []WithdrawalID
	TxHash chainhash.Hash
	RawTx  []byte
}

func (ProposalCompleted) Kind() EventKind { return EventProposalCompleted }

func (e ProposalCompleted) Fields() []zap.Field {
	return []zap.Field{
		zap.Uint32s("ids", withdrawalIDs(e.IDs)),
		zap.Stringer("tx", e.TxHash),
		zap.String("raw_tx", hex.EncodeToString(e.RawTx)),
	}
}

// ProposalDropped is emitted when rejections make the proposal unreachable or an admin removes it.
type ProposalDropped struct {
	IDs    []WithdrawalID
	Forced bool
}

func (ProposalDropped) Kind() EventKind { return EventProposalDropped }

func (e ProposalDropped) Fields() []zap.Field {
	return []zap.Field{
		zap.Uint32s("ids", withdrawalIDs(e.IDs)),
		zap.Bool("forced", e.Forced),
	}
}

type WithdrawalBroadcast struct {
	IDs    []WithdrawalID
	TxHash chainhash.Hash
}

func (WithdrawalBroadcast) Kind() EventKind { return EventWithdrawalBroadcast }

func (e WithdrawalBroadcast) Fields() []zap.Field {
	return []zap.Field{
		zap.Uint32s("ids", withdrawalIDs(e.IDs)),
		zap.Stringer("tx", e.TxHash),
	}
}

type TrusteeSessionRotated struct {
	Number       uint32
	Trustees     []AccountID
	Threshold    uint16
	Hot          string
	Cold         string
	PreviousHot  string
	PreviousCold string
}

func (TrusteeSessionRotated) Kind() EventKind { return EventTrusteeSessionRotated }

func (e TrusteeSessionRotated) Fields() []zap.Field {
	accounts := make([]string, 0, len(e.Trustees))
	for _, a := range e.Trustees {
		accounts = append(accounts, string(a))
	}
	return []zap.Field{
		zap.Uint32("session", e.Number),
		zap.Strings("trustees", accounts),
		zap.Uint16("threshold", e.Threshold),
		zap.String("hot", e.Hot),
		zap.String("cold", e.Cold),
		zap.String("previous_hot", e.PreviousHot),
		zap.String("previous_cold", e.PreviousCold),
	}
}

type TrusteeTransitionCompleted struct {
	Number uint32
	TxHash chainhash.Hash
}

func (TrusteeTransitionCompleted) Kind() EventKind { return EventTrusteeTransitionCompleted }

func (e TrusteeTransitionCompleted) Fields() []zap.Field {
	return []zap.Field{
		zap.Uint32("session", e.Number),
		zap.Stringer("tx", e.TxHash),
	}
}

func withdrawalIDs(ids []WithdrawalID) []uint32 {
	out := make([]uint32, len(ids))
	for i, id := range ids {
		out[i] = uint32(id)
	}
	return out
}

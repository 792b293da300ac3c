// Package withdrawal coordinates trustee signing of the batched outgoing withdrawal transaction.
package withdrawal

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/chain"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/storage"
)

// Machine owns the singleton withdrawal proposal of one chain.
type Machine struct {
	chain    model.Chain
	scripts  Scripts
	sessions Sessions
	records  RecordsLedger
	gov      Governance
}

func NewMachine(c model.Chain, scripts Scripts, sessions Sessions, records RecordsLedger, gov Governance) *Machine {
	return &Machine{chain: c, scripts: scripts, sessions: sessions, records: records, gov: gov}
}

// Proposal returns the current proposal, or nil when none exists.
func (m *Machine) Proposal(r storage.Reader) (*model.WithdrawalProposal, error) {
	raw, err := r.Get(proposalKey(m.chain))
	if err != nil {
		return nil, fmt.Errorf("get proposal: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	p, err := decodeProposal(raw)
	if err != nil {
		return nil, fmt.Errorf("decode proposal: %w", err)
	}
	return p, nil
}

// CreateProposal opens a proposal for ids with draft as the transaction to sign. A draft that already
// carries the proposer's signature counts as the proposer's approval.
func (m *Machine) CreateProposal(
	ctx context.Context,
	rw storage.ReadWriter,
	proposer model.AccountID,
	ids []model.WithdrawalID,
	draft *wire.MsgTx,
	emit model.Emitter,
) (*model.WithdrawalProposal, error) {
	if existing, err := m.Proposal(rw); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, model.Errorf(model.KindProposalExists, "proposal for %v is %s", existing.IDs, existing.State)
	}
	session, err := m.sessions.Session(rw)
	if err != nil {
		return nil, err
	}
	idx := session.Index(proposer)
	if idx < 0 {
		return nil, model.Errorf(model.KindNotTrustee, "%s", proposer)
	}
	if err := checkIDs(ids); err != nil {
		return nil, err
	}

	records := make([]model.WithdrawalRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := m.records.Withdrawal(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get withdrawal %d: %w", id, err)
		}
		switch rec.State {
		case model.WithdrawalApplying:
		case model.WithdrawalProcessing:
			return nil, model.Errorf(model.KindRecordsLocked, "withdrawal %d is already processing", id)
		default:
			return nil, model.Errorf(model.KindInvalidWithdrawalIDs, "withdrawal %d is %s", id, rec.State)
		}
		records = append(records, rec)
	}
	if err := m.checkOutputs(draft, records, session.Hot.Address); err != nil {
		return nil, err
	}

	signers, err := m.scripts.Signers(draft, session.Hot.RedeemScript)
	if err != nil {
		return nil, err
	}
	p := &model.WithdrawalProposal{
		IDs:   slices.Clone(ids),
		Tx:    draft.Copy(),
		State: model.ProposalCollecting,
	}
	switch {
	case len(signers) == 0:
	case len(signers) == 1 && signers[0] == idx:
		p.Approvals = p.Approvals.Set(idx)
	default:
		return nil, model.Errorf(model.KindInvalidSignCount, "draft carries signatures of %v, proposer is %d", signers, idx)
	}

	if err := m.save(rw, p); err != nil {
		return nil, err
	}
	deferRecords(emit, "lock", m.records.Lock, p.IDs)
	emit.Emit(model.ProposalCreated{Proposer: proposer, IDs: p.IDs, TxHash: chain.UnsignedHash(p.Tx)})
	if p.Approvals != 0 {
		emit.Emit(model.ProposalVoted{Trustee: proposer, Approve: true, Approvals: 1})
	}
	return p, nil
}

// SignProposal records the vote of trustee. A non-nil signed tx approves: it must equal the stored
// draft apart from signatures and add exactly the caller's signature. A nil tx rejects.
func (m *Machine) SignProposal(
	ctx context.Context,
	rw storage.ReadWriter,
	trustee model.AccountID,
	signed *wire.MsgTx,
	emit model.Emitter,
) (*model.WithdrawalProposal, error) {
	p, err := m.Proposal(rw)
	if err != nil {
		return nil, err
	}
	if p == nil || p.State != model.ProposalCollecting {
		return nil, model.Errorf(model.KindNoProposal, "no proposal is collecting signatures")
	}
	session, err := m.sessions.Session(rw)
	if err != nil {
		return nil, err
	}
	idx := session.Index(trustee)
	if idx < 0 {
		return nil, model.Errorf(model.KindNotTrustee, "%s", trustee)
	}
	if p.Approvals.Has(idx) || p.Rejections.Has(idx) {
		return nil, model.Errorf(model.KindDuplicateVote, "%s already voted", trustee)
	}

	if signed == nil {
		return m.reject(rw, p, session, trustee, idx, emit)
	}

	if chain.UnsignedHash(signed) != chain.UnsignedHash(p.Tx) {
		return nil, model.Errorf(model.KindMismatchedTx, "signed tx %s differs from the draft", signed.TxHash())
	}
	signers, err := m.scripts.Signers(signed, session.Hot.RedeemScript)
	if err != nil {
		return nil, err
	}
	want := p.Approvals.Set(idx)
	var got model.VoteBits
	for _, s := range signers {
		got = got.Set(s)
	}
	if got != want || len(signers) != want.Count() {
		return nil, model.Errorf(model.KindInvalidSignCount, "tx carries %d signatures, want %d including %s",
			len(signers), want.Count(), trustee)
	}

	p.Tx = signed.Copy()
	p.Approvals = want
	emit.Emit(model.ProposalVoted{
		Trustee: trustee, Approve: true, Approvals: p.Approvals.Count(), Rejections: p.Rejections.Count(),
	})

	if p.Approvals.Count() >= int(session.Threshold) {
		p.State = model.ProposalFinished
		deferRecords(emit, "complete", m.records.Complete, p.IDs)
		var raw bytes.Buffer
		if err := p.Tx.Serialize(&raw); err != nil {
			return nil, fmt.Errorf("serialize signed tx: %w", err)
		}
		emit.Emit(model.ProposalCompleted{IDs: p.IDs, TxHash: p.Tx.TxHash(), RawTx: raw.Bytes()})
	}
	if err := m.save(rw, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (m *Machine) reject(
	rw storage.ReadWriter,
	p *model.WithdrawalProposal,
	session *model.TrusteeSession,
	trustee model.AccountID,
	idx int,
	emit model.Emitter,
) (*model.WithdrawalProposal, error) {
	p.Rejections = p.Rejections.Set(idx)
	emit.Emit(model.ProposalVoted{
		Trustee: trustee, Approve: false, Approvals: p.Approvals.Count(), Rejections: p.Rejections.Count(),
	})

	if p.Rejections.Count() > DropLimit(len(session.Trustees), int(session.Threshold)) {
		if err := rw.Delete(proposalKey(m.chain)); err != nil {
			return nil, fmt.Errorf("delete proposal: %w", err)
		}
		deferRecords(emit, "unlock", m.records.Unlock, p.IDs)
		emit.Emit(model.ProposalDropped{IDs: p.IDs})
		return nil, nil
	}
	if err := m.save(rw, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DropLimit is the number of rejections a proposal tolerates; one more drops it.
func DropLimit(trustees, threshold int) int {
	return trustees - threshold + 1
}

// RemoveProposal clears the proposal by administrative decision. Ids of a proposal still collecting
// are unlocked; a finished proposal already completed them.
func (m *Machine) RemoveProposal(ctx context.Context, rw storage.ReadWriter, origin model.Origin, emit model.Emitter) error {
	if err := model.RequireAdmin(ctx, origin, m.isAdmin); err != nil {
		return err
	}
	p, err := m.Proposal(rw)
	if err != nil {
		return err
	}
	if p == nil {
		return model.Errorf(model.KindNoProposal, "nothing to remove")
	}
	if err := rw.Delete(proposalKey(m.chain)); err != nil {
		return fmt.Errorf("delete proposal: %w", err)
	}
	if p.State == model.ProposalCollecting {
		deferRecords(emit, "unlock", m.records.Unlock, p.IDs)
	}
	emit.Emit(model.ProposalDropped{IDs: p.IDs, Forced: true})
	return nil
}

// Settle clears the proposal once its transaction is confirmed on chain. Ids that were not completed
// at signing time are completed now.
func (m *Machine) Settle(ctx context.Context, rw storage.ReadWriter, txHash chainhash.Hash, emit model.Emitter) error {
	p, err := m.Proposal(rw)
	if err != nil {
		return err
	}
	if p == nil {
		return model.Errorf(model.KindNoProposal, "no proposal to settle with %s", txHash)
	}
	if err := rw.Delete(proposalKey(m.chain)); err != nil {
		return fmt.Errorf("delete proposal: %w", err)
	}
	if p.State == model.ProposalCollecting {
		deferRecords(emit, "complete", m.records.Complete, p.IDs)
	}
	emit.Emit(model.WithdrawalBroadcast{IDs: p.IDs, TxHash: txHash})
	return nil
}

// Collecting reports whether a proposal is still collecting signatures. A finished proposal only
// waits for its broadcast and does not count.
func (m *Machine) Collecting(r storage.Reader) (bool, error) {
	p, err := m.Proposal(r)
	if err != nil {
		return false, err
	}
	return p != nil && p.State == model.ProposalCollecting, nil
}

// deferRecords queues a records ledger call for ids behind the storage writes of the unit.
func deferRecords(emit model.Emitter, op string, call func(context.Context, []model.WithdrawalID) error, ids []model.WithdrawalID) {
	ids = slices.Clone(ids)
	emit.Defer(func(ctx context.Context) error {
		if err := call(ctx, ids); err != nil {
			return fmt.Errorf("%s withdrawals: %w", op, err)
		}
		return nil
	})
}

func (m *Machine) isAdmin(ctx context.Context, account model.AccountID) (bool, error) {
	if m.gov == nil {
		return false, nil
	}
	return m.gov.IsAdmin(ctx, account)
}

func (m *Machine) save(rw storage.ReadWriter, p *model.WithdrawalProposal) error {
	raw, err := encodeProposal(p)
	if err != nil {
		return fmt.Errorf("encode proposal: %w", err)
	}
	if err := rw.Put(proposalKey(m.chain), raw); err != nil {
		return fmt.Errorf("put proposal: %w", err)
	}
	return nil
}

func checkIDs(ids []model.WithdrawalID) error {
	if len(ids) == 0 {
		return model.Errorf(model.KindInvalidWithdrawalIDs, "empty id list")
	}
	if len(ids) > maxProposalIDs {
		return model.Errorf(model.KindInvalidWithdrawalIDs, "%d ids exceed %d", len(ids), maxProposalIDs)
	}
	seen := make(map[model.WithdrawalID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return model.Errorf(model.KindInvalidWithdrawalIDs, "withdrawal %d listed twice", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

type payment struct {
	script string
	amount int64
}

// checkOutputs requires draft to pay every record exactly once, in any order, plus at most one
// change output back to the hot address.
func (m *Machine) checkOutputs(draft *wire.MsgTx, records []model.WithdrawalRecord, hot string) error {
	want := make(map[payment]int, len(records))
	for _, rec := range records {
		script, err := m.scripts.PayToAddress(rec.Destination)
		if err != nil {
			return fmt.Errorf("withdrawal %d destination: %w", rec.ID, err)
		}
		if rec.Amount == 0 || rec.Amount > uint64(btcutil.MaxSatoshi) {
			return model.Errorf(model.KindOutputsMismatch, "withdrawal %d amount %d", rec.ID, rec.Amount)
		}
		want[payment{script: string(script), amount: int64(rec.Amount)}]++
	}
	change, err := m.scripts.PayToAddress(hot)
	if err != nil {
		return fmt.Errorf("hot address: %w", err)
	}

	changeOutputs := 0
	for i, out := range draft.TxOut {
		key := payment{script: string(out.PkScript), amount: out.Value}
		if want[key] > 0 {
			want[key]--
			continue
		}
		if bytes.Equal(out.PkScript, change) && changeOutputs == 0 {
			changeOutputs++
			continue
		}
		return model.Errorf(model.KindOutputsMismatch, "output %d pays %d to an unexpected script", i, out.Value)
	}
	for p, n := range want {
		if n > 0 {
			return model.Errorf(model.KindOutputsMismatch, "missing %d output(s) of %d", n, p.amount)
		}
	}
	return nil
}

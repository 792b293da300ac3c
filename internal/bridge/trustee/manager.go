// Package trustee manages the trustee sessions that control the custody addresses.
package trustee

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/chain"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/storage"
)

// Manager derives custody addresses and rotates trustee sessions.
type Manager struct {
	chain   model.Chain
	deriver AddressDeriver
	gov     Governance
}

func NewManager(c model.Chain, deriver AddressDeriver, gov Governance) *Manager {
	return &Manager{chain: c, deriver: deriver, gov: gov}
}

// DeriveAddress builds the custody address for pubKeys in the given order.
func (m *Manager) DeriveAddress(pubKeys [][]byte, threshold int) (model.AddressInfo, error) {
	return m.deriver.DeriveCustodyAddress(pubKeys, threshold)
}

// Session returns the current session.
func (m *Manager) Session(r storage.Reader) (*model.TrusteeSession, error) {
	raw, err := r.Get(sessionKey(m.chain))
	if err != nil {
		return nil, fmt.Errorf("get trustee session: %w", err)
	}
	if raw == nil {
		return nil, model.Errorf(model.KindNotInitialized, "no trustee session for %s", m.chain)
	}
	s, err := decodeSession(raw)
	if err != nil {
		return nil, fmt.Errorf("decode trustee session: %w", err)
	}
	return s, nil
}

// Init installs the first session.
func (m *Manager) Init(rw storage.ReadWriter, trustees []model.TrusteeInfo, emit model.Emitter) (*model.TrusteeSession, error) {
	if ok, err := rw.Has(sessionKey(m.chain)); err != nil {
		return nil, fmt.Errorf("check trustee session: %w", err)
	} else if ok {
		return nil, model.Errorf(model.KindAlreadyInitialized, "trustee session for %s exists", m.chain)
	}
	s, err := m.buildSession(0, trustees)
	if err != nil {
		return nil, err
	}
	if err := m.save(rw, s); err != nil {
		return nil, err
	}
	emit.Emit(rotatedEvent(s))
	return s, nil
}

// Transition installs a new trustee set. The outgoing hot and cold addresses stay recognised as
// PreviousHot and PreviousCold until their sweeps to the new custody are relayed. A transition is
// refused while a withdrawal proposal is collecting signatures or an earlier sweep is outstanding.
func (m *Manager) Transition(
	ctx context.Context,
	rw storage.ReadWriter,
	origin model.Origin,
	trustees []model.TrusteeInfo,
	proposalCollecting bool,
	emit model.Emitter,
) (*model.TrusteeSession, error) {
	if err := model.RequireAdmin(ctx, origin, m.isAdmin); err != nil {
		return nil, err
	}
	current, err := m.Session(rw)
	if err != nil {
		return nil, err
	}
	if proposalCollecting {
		return nil, model.Errorf(model.KindTrusteeTransitionPeriod, "a withdrawal proposal is collecting signatures")
	}
	if current.InTransition() {
		return nil, model.Errorf(model.KindTrusteeTransitionPeriod, "sweep from %s not yet observed",
			strings.Join(previousAddresses(current), ", "))
	}

	next, err := m.buildSession(current.Number+1, trustees)
	if err != nil {
		return nil, err
	}
	if next.Hot.Address != current.Hot.Address {
		prev := current.Hot
		next.PreviousHot = &prev
	}
	if next.Cold.Address != current.Cold.Address {
		prev := current.Cold
		next.PreviousCold = &prev
	}
	if err := m.save(rw, next); err != nil {
		return nil, err
	}
	emit.Emit(rotatedEvent(next))
	return next, nil
}

// CompleteTransition retires the previous custody address from once its sweep tx is confirmed.
// The window closes when no previous address is left.
func (m *Manager) CompleteTransition(rw storage.ReadWriter, from string, sweep chainhash.Hash, emit model.Emitter) error {
	s, err := m.Session(rw)
	if err != nil {
		return err
	}
	if !s.InTransition() {
		return model.Errorf(model.KindTrusteeTransitionPeriod, "no transition in progress")
	}
	switch {
	case s.PreviousHot != nil && s.PreviousHot.Address == from:
		s.PreviousHot = nil
	case s.PreviousCold != nil && s.PreviousCold.Address == from:
		s.PreviousCold = nil
	default:
		return model.Errorf(model.KindTrusteeTransitionPeriod, "%s is not a previous custody address", from)
	}
	if err := m.save(rw, s); err != nil {
		return err
	}
	if !s.InTransition() {
		emit.Emit(model.TrusteeTransitionCompleted{Number: s.Number, TxHash: sweep})
	}
	return nil
}

// VerifyOutbound accepts a withdrawal destination: a valid address that is not one of the custody addresses.
func (m *Manager) VerifyOutbound(r storage.Reader, address string) error {
	if err := m.deriver.VerifyAddress(address); err != nil {
		return err
	}
	s, err := m.Session(r)
	if err != nil {
		return err
	}
	if address == s.Hot.Address || address == s.Cold.Address || slices.Contains(previousAddresses(s), address) {
		return model.Errorf(model.KindInvalidAddress, "%s is a trustee custody address", address)
	}
	return nil
}

// CustodyView exposes the custody addresses for classification.
func (m *Manager) CustodyView(r storage.Reader) (chain.CustodyView, error) {
	s, err := m.Session(r)
	if err != nil {
		return chain.CustodyView{}, err
	}
	view := chain.CustodyView{Hot: s.Hot.Address, Cold: s.Cold.Address}
	if s.PreviousHot != nil {
		view.PreviousHot = s.PreviousHot.Address
	}
	if s.PreviousCold != nil {
		view.PreviousCold = s.PreviousCold.Address
	}
	return view, nil
}

// TrusteeIndex returns the position of account in the current session, or -1.
func (m *Manager) TrusteeIndex(r storage.Reader, account model.AccountID) (int, error) {
	s, err := m.Session(r)
	if err != nil {
		return -1, err
	}
	return s.Index(account), nil
}

func (m *Manager) IsTrustee(r storage.Reader, account model.AccountID) (bool, error) {
	idx, err := m.TrusteeIndex(r, account)
	return idx >= 0, err
}

func (m *Manager) isAdmin(ctx context.Context, account model.AccountID) (bool, error) {
	if m.gov == nil {
		return false, nil
	}
	return m.gov.IsAdmin(ctx, account)
}

func (m *Manager) buildSession(number uint32, trustees []model.TrusteeInfo) (*model.TrusteeSession, error) {
	if len(trustees) < model.MinTrustees || len(trustees) > model.MaxTrustees {
		return nil, model.Errorf(model.KindInvalidTrusteeCount, "%d trustees, want %d..%d",
			len(trustees), model.MinTrustees, model.MaxTrustees)
	}
	seen := make(map[model.AccountID]struct{}, len(trustees))
	hotKeys := make([][]byte, 0, len(trustees))
	coldKeys := make([][]byte, 0, len(trustees))
	for _, t := range trustees {
		if _, dup := seen[t.Account]; dup {
			return nil, model.Errorf(model.KindDuplicatedKey, "trustee %s listed twice", t.Account)
		}
		seen[t.Account] = struct{}{}
		hotKeys = append(hotKeys, t.HotPubKey)
		coldKeys = append(coldKeys, t.ColdPubKey)
	}

	threshold := model.SignThreshold(len(trustees))
	hot, err := m.deriver.DeriveCustodyAddress(hotKeys, threshold)
	if err != nil {
		return nil, fmt.Errorf("derive hot address: %w", err)
	}
	cold, err := m.deriver.DeriveCustodyAddress(coldKeys, threshold)
	if err != nil {
		return nil, fmt.Errorf("derive cold address: %w", err)
	}
	return &model.TrusteeSession{
		Number:    number,
		Trustees:  append([]model.TrusteeInfo(nil), trustees...),
		Threshold: uint16(threshold),
		Hot:       hot,
		Cold:      cold,
	}, nil
}

func (m *Manager) save(rw storage.ReadWriter, s *model.TrusteeSession) error {
	raw, err := encodeSession(s)
	if err != nil {
		return fmt.Errorf("encode trustee session: %w", err)
	}
	if err := rw.Put(sessionKey(m.chain), raw); err != nil {
		return fmt.Errorf("put trustee session: %w", err)
	}
	if err := rw.Put(historyKey(m.chain, s.Number), raw); err != nil {
		return fmt.Errorf("put trustee session history: %w", err)
	}
	return nil
}

func rotatedEvent(s *model.TrusteeSession) model.TrusteeSessionRotated {
	ev := model.TrusteeSessionRotated{
		Number:    s.Number,
		Threshold: s.Threshold,
		Hot:       s.Hot.Address,
		Cold:      s.Cold.Address,
	}
	for _, t := range s.Trustees {
		ev.Trustees = append(ev.Trustees, t.Account)
	}
	if s.PreviousHot != nil {
		ev.PreviousHot = s.PreviousHot.Address
	}
	if s.PreviousCold != nil {
		ev.PreviousCold = s.PreviousCold.Address
	}
	return ev
}

func previousAddresses(s *model.TrusteeSession) []string {
	var out []string
	for _, a := range []*model.AddressInfo{s.PreviousHot, s.PreviousCold} {
		if a != nil {
			out = append(out, a.Address)
		}
	}
	return out
}

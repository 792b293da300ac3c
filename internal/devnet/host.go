// Package devnet provides an in-memory host ledger for running a bridge outside of a host chain.
// It keeps balances, address bindings, withdrawal records and the admin set.
package devnet

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/pkg/safe"
	"github.com/sasha-s/go-deadlock"
)

type bindingKey struct {
	chain   model.Chain
	address string
}

// Host implements the asset ledger, records ledger, account binder and governance collaborators.
type Host struct {
	mu          deadlock.RWMutex
	accounts    map[model.AccountID]struct{}
	admins      map[model.AccountID]struct{}
	balances    map[model.AccountID]uint64
	bindings    map[bindingKey]model.AccountID
	withdrawals map[model.WithdrawalID]model.WithdrawalRecord
	nextID      model.WithdrawalID
}

func NewHost() *Host {
	return &Host{
		accounts:    make(map[model.AccountID]struct{}),
		admins:      make(map[model.AccountID]struct{}),
		balances:    make(map[model.AccountID]uint64),
		bindings:    make(map[bindingKey]model.AccountID),
		withdrawals: make(map[model.WithdrawalID]model.WithdrawalRecord),
		nextID:      1,
	}
}

// Register makes account known so deposits can name it in their OP_RETURN payload.
func (h *Host) Register(account model.AccountID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.accounts[account] = struct{}{}
}

func (h *Host) AddAdmin(account model.AccountID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.accounts[account] = struct{}{}
	h.admins[account] = struct{}{}
}

// Bind links a foreign address to account.
func (h *Host) Bind(c model.Chain, address string, account model.AccountID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.accounts[account] = struct{}{}
	h.bindings[bindingKey{chain: c, address: address}] = account
}

func (h *Host) Balance(account model.AccountID) uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.balances[account]
}

// RequestWithdrawal burns amount from account and records an Applying withdrawal.
func (h *Host) RequestWithdrawal(account model.AccountID, destination string, amount uint64) (model.WithdrawalID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if amount == 0 {
		return 0, fmt.Errorf("withdrawal of zero")
	}
	if h.balances[account] < amount {
		return 0, fmt.Errorf("balance of %s is %d, want %d", account, h.balances[account], amount)
	}
	h.balances[account] -= amount
	id := h.nextID
	h.nextID++
	h.withdrawals[id] = model.WithdrawalRecord{
		ID:          id,
		Account:     account,
		Destination: destination,
		Amount:      amount,
		State:       model.WithdrawalApplying,
	}
	return id, nil
}

// Withdrawals lists the records in id order.
func (h *Host) Withdrawals() []model.WithdrawalRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]model.WithdrawalRecord, 0, len(h.withdrawals))
	for _, rec := range h.withdrawals {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (h *Host) Issue(_ context.Context, account model.AccountID, amount uint64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	total, err := safe.AddUint64(h.balances[account], amount)
	if err != nil {
		return fmt.Errorf("issue to %s: %w", account, err)
	}
	h.accounts[account] = struct{}{}
	h.balances[account] = total
	return nil
}

// ResolvePayload reads the payload as the name of a registered account.
func (h *Host) ResolvePayload(_ context.Context, payload []byte) (model.AccountID, bool, error) {
	account := model.AccountID(bytes.TrimSpace(payload))
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.accounts[account]; !ok || account == "" {
		return "", false, nil
	}
	return account, true, nil
}

func (h *Host) BoundAccount(_ context.Context, c model.Chain, address string) (model.AccountID, bool, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	account, ok := h.bindings[bindingKey{chain: c, address: address}]
	return account, ok, nil
}

func (h *Host) IsAdmin(_ context.Context, account model.AccountID) (bool, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.admins[account]
	return ok, nil
}

func (h *Host) Withdrawal(_ context.Context, id model.WithdrawalID) (model.WithdrawalRecord, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rec, ok := h.withdrawals[id]
	if !ok {
		return model.WithdrawalRecord{}, model.Errorf(model.KindInvalidWithdrawalIDs, "unknown withdrawal %d", id)
	}
	return rec, nil
}

func (h *Host) Lock(_ context.Context, ids []model.WithdrawalID) error {
	return h.move(ids, model.WithdrawalApplying, model.WithdrawalProcessing)
}

func (h *Host) Unlock(_ context.Context, ids []model.WithdrawalID) error {
	return h.move(ids, model.WithdrawalProcessing, model.WithdrawalApplying)
}

func (h *Host) Complete(_ context.Context, ids []model.WithdrawalID) error {
	return h.move(ids, model.WithdrawalProcessing, model.WithdrawalCompleted)
}

// move applies the transition to every id or to none.
func (h *Host) move(ids []model.WithdrawalID, from, to model.WithdrawalState) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, id := range ids {
		rec, ok := h.withdrawals[id]
		if !ok {
			return model.Errorf(model.KindInvalidWithdrawalIDs, "unknown withdrawal %d", id)
		}
		if rec.State != from {
			return fmt.Errorf("withdrawal %d is %s, want %s", id, rec.State, from)
		}
	}
	for _, id := range ids {
		rec := h.withdrawals[id]
		rec.State = to
		h.withdrawals[id] = rec
	}
	return nil
}

// Package deposit caches deposits whose target account is not known yet.
package deposit

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/storage"
	"github.com/goodnatureofminers/btcbridge/pkg/safe"
)

const pendingPrefix = "pend/"

// Maximum entries kept per address. A relayer cannot grow one record without bound.
const maxEntriesPerAddress = 4096

func pendingKey(address string) []byte { return storage.Key(pendingPrefix, []byte(address)) }

// Ledger keeps unattributed deposits grouped by the address that funded them.
type Ledger struct {
	assets AssetLedger
	gov    Governance
}

func NewLedger(assets AssetLedger, gov Governance) *Ledger {
	return &Ledger{assets: assets, gov: gov}
}

// Add appends entry to the cache of address.
func (l *Ledger) Add(rw storage.ReadWriter, address string, entry model.PendingDeposit, emit model.Emitter) error {
	entries, err := l.Pending(rw, address)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.TxHash == entry.TxHash {
			return nil
		}
	}
	if len(entries) >= maxEntriesPerAddress {
		return model.Errorf(model.KindProcessTxFailed, "pending cache of %s is full", address)
	}
	if err := putEntries(rw, address, append(entries, entry)); err != nil {
		return err
	}
	emit.Emit(model.UnclaimedDeposit{TxHash: entry.TxHash, Address: address, Amount: entry.Value})
	return nil
}

// Pending lists the cached deposits of address in arrival order.
func (l *Ledger) Pending(r storage.Reader, address string) ([]model.PendingDeposit, error) {
	raw, err := r.Get(pendingKey(address))
	if err != nil {
		return nil, fmt.Errorf("get pending deposits of %s: %w", address, err)
	}
	if raw == nil {
		return nil, nil
	}
	entries, err := decodeEntries(raw)
	if err != nil {
		return nil, fmt.Errorf("decode pending deposits of %s: %w", address, err)
	}
	return entries, nil
}

// Addresses lists every address that has cached deposits.
func (l *Ledger) Addresses(r storage.Reader) ([]string, error) {
	var out []string
	err := r.Iterate([]byte(pendingPrefix), func(key, _ []byte) error {
		out = append(out, string(key[len(pendingPrefix):]))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate pending deposits: %w", err)
	}
	return out, nil
}

// Resolve clears the cache of address. With an account the cached sum is credited to it once;
// without one the entries are released without credit. An empty cache is a no-op.
func (l *Ledger) Resolve(
	ctx context.Context,
	rw storage.ReadWriter,
	origin model.Origin,
	address string,
	account *model.AccountID,
	emit model.Emitter,
) (uint64, error) {
	if err := model.RequireAdmin(ctx, origin, l.isAdmin); err != nil {
		return 0, err
	}
	entries, err := l.Pending(rw, address)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	var total uint64
	for _, e := range entries {
		if total, err = safe.AddUint64(total, e.Value); err != nil {
			return 0, fmt.Errorf("sum pending deposits of %s: %w", address, err)
		}
	}
	if err := rw.Delete(pendingKey(address)); err != nil {
		return 0, fmt.Errorf("delete pending deposits of %s: %w", address, err)
	}
	if account != nil {
		credited := *account
		emit.Defer(func(ctx context.Context) error {
			if err := l.assets.Issue(ctx, credited, total); err != nil {
				return model.Wrap(model.KindProcessTxFailed, fmt.Sprintf("credit %s", credited), err)
			}
			return nil
		})
	}
	emit.Emit(model.PendingDepositRemoved{Address: address, Account: account, Amount: total, Entries: len(entries)})
	return total, nil
}

func (l *Ledger) isAdmin(ctx context.Context, account model.AccountID) (bool, error) {
	if l.gov == nil {
		return false, nil
	}
	return l.gov.IsAdmin(ctx, account)
}

func putEntries(rw storage.ReadWriter, address string, entries []model.PendingDeposit) error {
	var enc storage.Encoder
	enc.Uint(uint64(len(entries)))
	for _, e := range entries {
		enc.Hash(e.TxHash)
		enc.Uint(e.Value)
		enc.Uint(uint64(e.Height))
	}
	raw, err := enc.Finish()
	if err != nil {
		return fmt.Errorf("encode pending deposits of %s: %w", address, err)
	}
	return rw.Put(pendingKey(address), raw)
}

func decodeEntries(raw []byte) ([]model.PendingDeposit, error) {
	dec := storage.NewDecoder(raw)
	n := dec.Uint()
	if n > maxEntriesPerAddress {
		return nil, fmt.Errorf("%d entries exceed the limit", n)
	}
	entries := make([]model.PendingDeposit, 0, n)
	for i := uint64(0); i < n; i++ {
		entries = append(entries, model.PendingDeposit{TxHash: dec.Hash(), Value: dec.Uint(), Height: dec.Uint32()})
	}
	if err := dec.Finish(); err != nil {
		return nil, err
	}
	return entries, nil
}

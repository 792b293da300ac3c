package relay

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/storage"
)

const txStatePrefix = "tx/"

func txStateKey(hash chainhash.Hash) []byte { return storage.Key(txStatePrefix, hash[:]) }

func getTxState(r storage.Reader, hash chainhash.Hash) (model.TxState, bool, error) {
	raw, err := r.Get(txStateKey(hash))
	if err != nil {
		return model.TxState{}, false, fmt.Errorf("get tx state %s: %w", hash, err)
	}
	if raw == nil {
		return model.TxState{}, false, nil
	}
	d := storage.NewDecoder(raw)
	state := model.TxState{
		Kind:   model.TxKind(d.Uint()),
		Result: model.TxResult(d.Uint()),
	}
	if err := d.Finish(); err != nil {
		return model.TxState{}, false, model.Wrap(model.KindDeserialize, "tx state", err)
	}
	return state, true, nil
}

func putTxState(rw storage.ReadWriter, hash chainhash.Hash, state model.TxState) error {
	var e storage.Encoder
	e.Uint(uint64(state.Kind))
	e.Uint(uint64(state.Result))
	raw, err := e.Finish()
	if err != nil {
		return err
	}
	if err := rw.Put(txStateKey(hash), raw); err != nil {
		return fmt.Errorf("put tx state %s: %w", hash, err)
	}
	return nil
}

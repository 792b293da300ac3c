package bitcoin

import (
	"bytes"
	"slices"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/chain"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/pkg/safe"
)

// ClassifyTransaction decides what a confirmed transaction means for the bridge.
// Withdrawal is checked first, then TrusteeTransition, then Deposit; anything else is Irrelevant.
// While a transition window is open the previous hot and cold addresses count as custody.
// A spend from one of them that pays only the new custody addresses is a sweep.
func (a *Adapter) ClassifyTransaction(tx, prev *wire.MsgTx, view chain.CustodyView) (chain.Classification, error) {
	var c chain.Classification

	if prev != nil {
		addr, err := a.primaryInputAddress(tx, prev)
		if err != nil {
			return c, err
		}
		c.InputAddress = addr
	}

	spender := a.custodySpender(tx, view)

	if view.Proposal != nil && sameOutputs(tx, view.Proposal) {
		c.Kind, c.Matched = model.TxWithdrawal, true
		return c, nil
	}

	if from := sweptFrom(view, spender, c.InputAddress); from != "" && a.allOutputsPay(tx, view.Hot, view.Cold) {
		c.Kind, c.Matched, c.SweptFrom = model.TxTrusteeTransition, true, from
		return c, nil
	}

	if spender != "" {
		c.Kind = model.TxWithdrawal
		return c, nil
	}

	value, err := a.custodyValue(tx, view)
	if err != nil {
		return c, err
	}
	if value > 0 {
		c.Kind, c.Matched, c.DepositValue = model.TxDeposit, true, value
		c.Payload = opReturnPayload(tx)
		return c, nil
	}

	c.Kind, c.Matched = model.TxIrrelevant, true
	return c, nil
}

func (a *Adapter) primaryInputAddress(tx, prev *wire.MsgTx) (string, error) {
	if len(tx.TxIn) == 0 {
		return "", model.Errorf(model.KindInvalidPrevTx, "transaction has no inputs")
	}
	outpoint := tx.TxIn[0].PreviousOutPoint
	if prevHash := prev.TxHash(); outpoint.Hash != prevHash {
		return "", model.Errorf(model.KindInvalidPrevTx, "input 0 spends %s, prev tx is %s", outpoint.Hash, prevHash)
	}
	if int(outpoint.Index) >= len(prev.TxOut) {
		return "", model.Errorf(model.KindInvalidPrevTx, "prev tx has no output %d", outpoint.Index)
	}
	return a.OutputAddress(prev.TxOut[outpoint.Index].PkScript), nil
}

// sweptFrom returns the previous custody address spent by the tx, or "" outside a transition window.
func sweptFrom(view chain.CustodyView, spender, input string) string {
	for _, addr := range []string{spender, input} {
		if view.IsPrevious(addr) {
			return addr
		}
	}
	return ""
}

// custodySpender returns the custody address whose redeem script appears in any input, or "".
func (a *Adapter) custodySpender(tx *wire.MsgTx, view chain.CustodyView) string {
	for _, in := range tx.TxIn {
		pushes, err := scriptPushes(in.SignatureScript)
		if err != nil || len(pushes) == 0 {
			continue
		}
		addr := a.redeemScriptAddress(pushes[len(pushes)-1])
		if addr == "" {
			continue
		}
		if addr == view.Hot || addr == view.Cold || view.IsPrevious(addr) {
			return addr
		}
	}
	return ""
}

// allOutputsPay reports whether every output pays one of addresses.
func (a *Adapter) allOutputsPay(tx *wire.MsgTx, addresses ...string) bool {
	if len(tx.TxOut) == 0 {
		return false
	}
	for _, out := range tx.TxOut {
		addr := a.OutputAddress(out.PkScript)
		if addr == "" || !slices.Contains(addresses, addr) {
			return false
		}
	}
	return true
}

func (a *Adapter) custodyValue(tx *wire.MsgTx, view chain.CustodyView) (uint64, error) {
	var total uint64
	for _, out := range tx.TxOut {
		addr := a.OutputAddress(out.PkScript)
		if addr == "" || (addr != view.Hot && addr != view.Cold && !view.IsPrevious(addr)) {
			continue
		}
		value, err := safe.Uint64(out.Value)
		if err != nil {
			return 0, model.Wrap(model.KindDeserialize, "output value", err)
		}
		if total, err = safe.AddUint64(total, value); err != nil {
			return 0, model.Wrap(model.KindDeserialize, "deposit value", err)
		}
	}
	return total, nil
}

func sameOutputs(tx, proposal *wire.MsgTx) bool {
	if len(tx.TxOut) != len(proposal.TxOut) {
		return false
	}
	for i, out := range tx.TxOut {
		want := proposal.TxOut[i]
		if out.Value != want.Value || !bytes.Equal(out.PkScript, want.PkScript) {
			return false
		}
	}
	return true
}

// opReturnPayload concatenates the data pushes of the first null-data output.
func opReturnPayload(tx *wire.MsgTx) []byte {
	for _, out := range tx.TxOut {
		if txscript.GetScriptClass(out.PkScript) != txscript.NullDataTy {
			continue
		}
		var payload []byte
		tokenizer := txscript.MakeScriptTokenizer(0, out.PkScript)
		for tokenizer.Next() {
			if tokenizer.Opcode() == txscript.OP_RETURN {
				continue
			}
			payload = append(payload, tokenizer.Data()...)
		}
		if tokenizer.Err() != nil || len(payload) == 0 {
			return nil
		}
		return payload
	}
	return nil
}

// scriptPushes returns the data of every push in script. OP_0 yields an empty element.
func scriptPushes(script []byte) ([][]byte, error) {
	var pushes [][]byte
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		op := tokenizer.Opcode()
		if op > txscript.OP_PUSHDATA4 {
			return nil, errNonPushScript
		}
		pushes = append(pushes, tokenizer.Data())
	}
	if err := tokenizer.Err(); err != nil {
		return nil, err
	}
	return pushes, nil
}

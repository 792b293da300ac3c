package bitcoin

import (
	"bytes"
	"errors"
	"slices"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
)

var errNonPushScript = errors.New("signature script contains non-push opcodes")

// Signers returns the positions, within redeemScript's key list, of the keys that produced valid
// SIGHASH_ALL signatures on every input of tx. Inputs must be P2SH multisig spends of redeemScript
// (OP_0 <sig>... <redeemScript>) or carry no signature script at all, and every input must be
// signed by the same set of keys.
func (a *Adapter) Signers(tx *wire.MsgTx, redeemScript []byte) ([]int, error) {
	keys, err := multisigKeys(redeemScript)
	if err != nil {
		return nil, err
	}
	if len(tx.TxIn) == 0 {
		return nil, model.Errorf(model.KindMismatchedTx, "transaction has no inputs")
	}

	var signers []int
	for i, in := range tx.TxIn {
		got, err := a.inputSigners(tx, i, in.SignatureScript, redeemScript, keys)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			signers = got
			continue
		}
		if !slices.Equal(signers, got) {
			return nil, model.Errorf(model.KindInvalidSignCount, "input %d signed by %v, input 0 by %v", i, got, signers)
		}
	}
	return signers, nil
}

func (a *Adapter) inputSigners(tx *wire.MsgTx, idx int, sigScript, redeemScript []byte, keys []*btcec.PublicKey) ([]int, error) {
	if len(sigScript) == 0 {
		return []int{}, nil
	}
	pushes, err := scriptPushes(sigScript)
	if err != nil {
		return nil, model.Wrap(model.KindMismatchedTx, "signature script", err)
	}
	if len(pushes) < 2 || len(pushes[0]) != 0 || !bytes.Equal(pushes[len(pushes)-1], redeemScript) {
		return nil, model.Errorf(model.KindMismatchedTx, "input %d is not a custody multisig spend", idx)
	}

	hash, err := txscript.CalcSignatureHash(redeemScript, txscript.SigHashAll, tx, idx)
	if err != nil {
		return nil, model.Wrap(model.KindMismatchedTx, "signature hash", err)
	}

	found := make(map[int]struct{})
	for _, push := range pushes[1 : len(pushes)-1] {
		if len(push) == 0 {
			continue
		}
		if txscript.SigHashType(push[len(push)-1]) != txscript.SigHashAll {
			return nil, model.Errorf(model.KindInvalidSignCount, "input %d: sighash type %#x", idx, push[len(push)-1])
		}
		sig, err := ecdsa.ParseDERSignature(push[:len(push)-1])
		if err != nil {
			return nil, model.Wrap(model.KindInvalidSignCount, "parse signature", err)
		}
		matched := -1
		for k, key := range keys {
			if _, dup := found[k]; dup {
				continue
			}
			if sig.Verify(hash, key) {
				matched = k
				break
			}
		}
		if matched < 0 {
			return nil, model.Errorf(model.KindInvalidSignCount, "input %d carries a signature from no trustee", idx)
		}
		found[matched] = struct{}{}
	}

	out := make([]int, 0, len(found))
	for k := range found {
		out = append(out, k)
	}
	slices.Sort(out)
	return out, nil
}

func multisigKeys(redeemScript []byte) ([]*btcec.PublicKey, error) {
	if txscript.GetScriptClass(redeemScript) != txscript.MultiSigTy {
		return nil, model.Errorf(model.KindMismatchedTx, "redeem script is not multisig")
	}
	var keys []*btcec.PublicKey
	tokenizer := txscript.MakeScriptTokenizer(0, redeemScript)
	for tokenizer.Next() {
		data := tokenizer.Data()
		if len(data) != compressedPubKeyLen {
			continue
		}
		key, err := btcec.ParsePubKey(data)
		if err != nil {
			return nil, model.Wrap(model.KindInvalidPublicKey, "redeem script key", err)
		}
		keys = append(keys, key)
	}
	if err := tokenizer.Err(); err != nil {
		return nil, model.Wrap(model.KindMismatchedTx, "redeem script", err)
	}
	return keys, nil
}

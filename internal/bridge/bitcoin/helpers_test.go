package bitcoin

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

func testKeys(t *testing.T, seed byte, n int) ([]*btcec.PrivateKey, [][]byte) {
	t.Helper()
	privs := make([]*btcec.PrivateKey, 0, n)
	pubs := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		secret := bytes.Repeat([]byte{seed}, 32)
		secret[31] = byte(i + 1)
		priv, pub := btcec.PrivKeyFromBytes(secret)
		privs = append(privs, priv)
		pubs = append(pubs, pub.SerializeCompressed())
	}
	return privs, pubs
}

func p2pkhAddress(t *testing.T, params *chaincfg.Params, seed byte) (string, []byte) {
	t.Helper()
	_, pubs := testKeys(t, seed, 1)
	addr, err := btcutil.NewAddressPubKeyHash(btcutil.Hash160(pubs[0]), params)
	if err != nil {
		t.Fatalf("NewAddressPubKeyHash() error = %v", err)
	}
	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		t.Fatalf("PayToAddrScript() error = %v", err)
	}
	return addr.EncodeAddress(), script
}

func payTo(t *testing.T, a *Adapter, address string) []byte {
	t.Helper()
	script, err := a.PayToAddress(address)
	if err != nil {
		t.Fatalf("PayToAddress(%s) error = %v", address, err)
	}
	return script
}

func spendTx(inputs int, outs ...*wire.TxOut) *wire.MsgTx {
	tx := wire.NewMsgTx(wire.TxVersion)
	for i := 0; i < inputs; i++ {
		tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{0xaa, byte(i)}, uint32(i)), nil, nil))
	}
	for _, out := range outs {
		tx.AddTxOut(out)
	}
	return tx
}

// signInputs adds signatures from privs to every input of tx, keeping signatures already present.
func signInputs(t *testing.T, tx *wire.MsgTx, redeem []byte, privs ...*btcec.PrivateKey) {
	t.Helper()
	for i, in := range tx.TxIn {
		var existing [][]byte
		if len(in.SignatureScript) > 0 {
			pushes, err := scriptPushes(in.SignatureScript)
			if err != nil {
				t.Fatalf("scriptPushes() error = %v", err)
			}
			existing = pushes[1 : len(pushes)-1]
		}
		b := txscript.NewScriptBuilder().AddOp(txscript.OP_0)
		for _, sig := range existing {
			b.AddData(sig)
		}
		for _, priv := range privs {
			sig, err := txscript.RawTxInSignature(tx, i, redeem, txscript.SigHashAll, priv)
			if err != nil {
				t.Fatalf("RawTxInSignature() error = %v", err)
			}
			b.AddData(sig)
		}
		script, err := b.AddData(redeem).Script()
		if err != nil {
			t.Fatalf("Script() error = %v", err)
		}
		in.SignatureScript = script
	}
}

func serializeTx(t *testing.T, tx *wire.MsgTx) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	return buf.Bytes()
}

func ptrHash(h chainhash.Hash) *chainhash.Hash { return &h }

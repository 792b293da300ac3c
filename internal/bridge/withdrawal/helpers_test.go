package withdrawal

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/golang/mock/gomock"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/bitcoin"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/storage"
)

var regtest = &chaincfg.RegressionNetParams

type fixture struct {
	t       *testing.T
	db      *storage.DB
	adapter *bitcoin.Adapter
	session *model.TrusteeSession
	hotKeys []*btcec.PrivateKey
	records *MockRecordsLedger
	gov     *MockGovernance
	machine *Machine
	// withdrawal records served by the records mock
	byID map[model.WithdrawalID]model.WithdrawalRecord
}

func newFixture(t *testing.T, ctrl *gomock.Controller) *fixture {
	t.Helper()
	db, err := storage.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{
		t:       t,
		db:      db,
		adapter: bitcoin.NewWithParams(regtest),
		records: NewMockRecordsLedger(ctrl),
		gov:     NewMockGovernance(ctrl),
		byID:    make(map[model.WithdrawalID]model.WithdrawalRecord),
	}

	const n = 4
	var hotPubs, coldPubs [][]byte
	session := &model.TrusteeSession{Threshold: uint16(model.SignThreshold(n))}
	for i := 0; i < n; i++ {
		hot := bytes.Repeat([]byte{0x11}, 32)
		hot[31] = byte(i + 1)
		cold := bytes.Repeat([]byte{0x22}, 32)
		cold[31] = byte(i + 1)
		hotPriv, hotPub := btcec.PrivKeyFromBytes(hot)
		_, coldPub := btcec.PrivKeyFromBytes(cold)
		f.hotKeys = append(f.hotKeys, hotPriv)
		hotPubs = append(hotPubs, hotPub.SerializeCompressed())
		coldPubs = append(coldPubs, coldPub.SerializeCompressed())
		session.Trustees = append(session.Trustees, model.TrusteeInfo{
			Account:    model.AccountID(fmt.Sprintf("trustee-%d", i)),
			HotPubKey:  hotPub.SerializeCompressed(),
			ColdPubKey: coldPub.SerializeCompressed(),
		})
	}
	if session.Hot, err = f.adapter.DeriveCustodyAddress(hotPubs, int(session.Threshold)); err != nil {
		t.Fatalf("DeriveCustodyAddress(hot) error = %v", err)
	}
	if session.Cold, err = f.adapter.DeriveCustodyAddress(coldPubs, int(session.Threshold)); err != nil {
		t.Fatalf("DeriveCustodyAddress(cold) error = %v", err)
	}
	f.session = session

	sessions := NewMockSessions(ctrl)
	sessions.EXPECT().Session(gomock.Any()).Return(session, nil).AnyTimes()
	f.records.EXPECT().Withdrawal(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id model.WithdrawalID) (model.WithdrawalRecord, error) {
			rec, ok := f.byID[id]
			if !ok {
				return model.WithdrawalRecord{}, model.Errorf(model.KindInvalidWithdrawalIDs, "unknown withdrawal %d", id)
			}
			return rec, nil
		}).AnyTimes()

	f.machine = NewMachine(model.ChainBitcoin, f.adapter, sessions, f.records, f.gov)
	return f
}

func (f *fixture) trustee(i int) model.AccountID { return f.session.Trustees[i].Account }

// addRecord registers an Applying withdrawal paying amount to a fresh regtest address.
func (f *fixture) addRecord(id model.WithdrawalID, amount uint64) model.WithdrawalRecord {
	f.t.Helper()
	addr, err := btcutil.NewAddressPubKeyHash(bytes.Repeat([]byte{byte(id)}, 20), regtest)
	if err != nil {
		f.t.Fatalf("NewAddressPubKeyHash() error = %v", err)
	}
	rec := model.WithdrawalRecord{ID: id, Account: "user", Destination: addr.EncodeAddress(), Amount: amount}
	f.byID[id] = rec
	return rec
}

func (f *fixture) payTo(address string) []byte {
	f.t.Helper()
	script, err := f.adapter.PayToAddress(address)
	if err != nil {
		f.t.Fatalf("PayToAddress() error = %v", err)
	}
	return script
}

// draft spends two custody outputs and pays recs followed by change to the hot address.
func (f *fixture) draft(recs ...model.WithdrawalRecord) *wire.MsgTx {
	tx := wire.NewMsgTx(wire.TxVersion)
	for i := 0; i < 2; i++ {
		tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{0xcc, byte(i)}, uint32(i)), nil, nil))
	}
	for _, rec := range recs {
		tx.AddTxOut(wire.NewTxOut(int64(rec.Amount), f.payTo(rec.Destination)))
	}
	tx.AddTxOut(wire.NewTxOut(50_000, f.payTo(f.session.Hot.Address)))
	return tx
}

// signed returns a copy of tx carrying signatures of the given trustee positions on every input.
func (f *fixture) signed(tx *wire.MsgTx, signers ...int) *wire.MsgTx {
	f.t.Helper()
	out := tx.Copy()
	redeem := f.session.Hot.RedeemScript
	for i, in := range out.TxIn {
		b := txscript.NewScriptBuilder().AddOp(txscript.OP_0)
		for _, s := range signers {
			sig, err := txscript.RawTxInSignature(out, i, redeem, txscript.SigHashAll, f.hotKeys[s])
			if err != nil {
				f.t.Fatalf("RawTxInSignature() error = %v", err)
			}
			b.AddData(sig)
		}
		script, err := b.AddData(redeem).Script()
		if err != nil {
			f.t.Fatalf("Script() error = %v", err)
		}
		in.SignatureScript = script
	}
	return out
}

func (f *fixture) create(proposer int, ids []model.WithdrawalID, draft *wire.MsgTx) (*model.WithdrawalProposal, []model.Event, error) {
	var (
		p   *model.WithdrawalProposal
		buf model.EventBuffer
	)
	err := f.db.Update(func(rw storage.ReadWriter) error {
		var err error
		p, err = f.machine.CreateProposal(context.Background(), rw, f.trustee(proposer), ids, draft, &buf)
		if err != nil {
			return err
		}
		return buf.RunEffects(context.Background())
	})
	return p, buf.Events(), err
}

func (f *fixture) sign(trustee model.AccountID, tx *wire.MsgTx) (*model.WithdrawalProposal, []model.Event, error) {
	var (
		p   *model.WithdrawalProposal
		buf model.EventBuffer
	)
	err := f.db.Update(func(rw storage.ReadWriter) error {
		var err error
		p, err = f.machine.SignProposal(context.Background(), rw, trustee, tx, &buf)
		if err != nil {
			return err
		}
		return buf.RunEffects(context.Background())
	})
	return p, buf.Events(), err
}

func (f *fixture) proposal() *model.WithdrawalProposal {
	f.t.Helper()
	var p *model.WithdrawalProposal
	if err := f.db.View(func(r storage.Reader) error {
		var err error
		p, err = f.machine.Proposal(r)
		return err
	}); err != nil {
		f.t.Fatalf("Proposal() error = %v", err)
	}
	return p
}

// open creates an unsigned proposal for two fresh records and returns it with its draft.
func (f *fixture) open() ([]model.WithdrawalID, *wire.MsgTx) {
	f.t.Helper()
	ids := []model.WithdrawalID{1, 2}
	draft := f.draft(f.addRecord(1, 100_000), f.addRecord(2, 250_000))
	f.records.EXPECT().Lock(gomock.Any(), ids).Return(nil)
	if _, _, err := f.create(0, ids, draft); err != nil {
		f.t.Fatalf("CreateProposal() error = %v", err)
	}
	return ids, draft
}

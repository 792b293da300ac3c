// Package chain defines the capability set every supported foreign chain implements.
package chain

import (
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
)

type (
	// Adapter is implemented once per model.Chain variant.
	Adapter interface {
		Chain() model.Chain
		Params() *chaincfg.Params
		DecodeHeader(raw []byte) (wire.BlockHeader, error)
		DecodeTransaction(raw []byte) (*wire.MsgTx, error)
		VerifyAddress(address string) error
		PayToAddress(address string) ([]byte, error)
		DeriveCustodyAddress(pubKeys [][]byte, threshold int) (model.AddressInfo, error)
		ClassifyTransaction(tx, prev *wire.MsgTx, view CustodyView) (Classification, error)
		Signers(tx *wire.MsgTx, redeemScript []byte) ([]int, error)
	}
)

// CustodyView is the part of the trustee and proposal state the classifier needs.
// PreviousHot and PreviousCold are set only while a transition window is open.
type CustodyView struct {
	Hot          string
	Cold         string
	PreviousHot  string
	PreviousCold string
	Proposal     *wire.MsgTx
}

// IsPrevious reports whether address is one of the outgoing custody addresses.
func (v CustodyView) IsPrevious(address string) bool {
	return address != "" && (address == v.PreviousHot || address == v.PreviousCold)
}

// Classification is the classifier verdict for one transaction.
type Classification struct {
	Kind model.TxKind
	// Matched is false for a custody spend that matches neither the proposal nor a transition sweep.
	Matched bool
	// DepositValue is the sum of outputs paying a custody address.
	DepositValue uint64
	// Payload is the OP_RETURN data, nil when the tx carries none.
	Payload []byte
	// InputAddress is the address that funded input 0, known only when a prev tx was supplied.
	InputAddress string
	// SweptFrom is the previous custody address a TrusteeTransition spends.
	SweptFrom string
}

// MerkleProof proves a transaction is included in a block.
type MerkleProof struct {
	TxIndex uint32
	Branch  []chainhash.Hash
}

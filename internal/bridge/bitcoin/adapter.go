// Package bitcoin implements the chain capability set for Bitcoin networks.
package bitcoin

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/chain"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
)

var _ chain.Adapter = (*Adapter)(nil)

// Adapter decodes and inspects Bitcoin data for one network.
type Adapter struct {
	params *chaincfg.Params
}

// New returns an Adapter for the named network.
func New(network string) (*Adapter, error) {
	params, err := ChainParams(network)
	if err != nil {
		return nil, err
	}
	return &Adapter{params: params}, nil
}

// NewWithParams returns an Adapter for explicit params.
func NewWithParams(params *chaincfg.Params) *Adapter {
	return &Adapter{params: params}
}

// ChainParams maps a network name to its chaincfg parameters.
func ChainParams(network string) (*chaincfg.Params, error) {
	switch strings.ToLower(network) {
	case "main", "mainnet", "bitcoin":
		return &chaincfg.MainNetParams, nil
	case "testnet", "testnet3":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	case "simnet":
		return &chaincfg.SimNetParams, nil
	default:
		return nil, fmt.Errorf("unsupported network %q", network)
	}
}

func (a *Adapter) Chain() model.Chain { return model.ChainBitcoin }

func (a *Adapter) Params() *chaincfg.Params { return a.params }

// DecodeHeader parses exactly one 80-byte header.
func (a *Adapter) DecodeHeader(raw []byte) (wire.BlockHeader, error) {
	var h wire.BlockHeader
	if len(raw) != wire.MaxBlockHeaderPayload {
		return h, model.Errorf(model.KindDeserialize, "header must be %d bytes, got %d", wire.MaxBlockHeaderPayload, len(raw))
	}
	if err := h.Deserialize(bytes.NewReader(raw)); err != nil {
		return h, model.Wrap(model.KindDeserialize, "header", err)
	}
	return h, nil
}

// DecodeTransaction parses a transaction and rejects trailing bytes.
func (a *Adapter) DecodeTransaction(raw []byte) (*wire.MsgTx, error) {
	tx := new(wire.MsgTx)
	r := bytes.NewReader(raw)
	if err := tx.Deserialize(r); err != nil {
		return nil, model.Wrap(model.KindDeserialize, "transaction", err)
	}
	if r.Len() != 0 {
		return nil, model.Errorf(model.KindDeserialize, "transaction has %d trailing bytes", r.Len())
	}
	return tx, nil
}

// VerifyAddress checks that address is a standard address of this network.
func (a *Adapter) VerifyAddress(address string) error {
	_, err := a.decodeAddress(address)
	return err
}

// PayToAddress returns the output script paying address.
func (a *Adapter) PayToAddress(address string) ([]byte, error) {
	addr, err := a.decodeAddress(address)
	if err != nil {
		return nil, err
	}
	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, model.Wrap(model.KindInvalidAddress, address, err)
	}
	return script, nil
}

func (a *Adapter) decodeAddress(address string) (btcutil.Address, error) {
	addr, err := btcutil.DecodeAddress(address, a.params)
	if err != nil {
		return nil, model.Wrap(model.KindInvalidAddress, address, err)
	}
	if !addr.IsForNet(a.params) {
		return nil, model.Errorf(model.KindInvalidAddress, "%s is not a %s address", address, a.params.Name)
	}
	switch addr.(type) {
	case *btcutil.AddressPubKeyHash, *btcutil.AddressScriptHash,
		*btcutil.AddressWitnessPubKeyHash, *btcutil.AddressWitnessScriptHash, *btcutil.AddressTaproot:
		return addr, nil
	default:
		return nil, model.Errorf(model.KindInvalidAddress, "%s has unsupported type %T", address, addr)
	}
}

// OutputAddress extracts the single address an output script pays, or "" for anything else.
func (a *Adapter) OutputAddress(pkScript []byte) string {
	class, addrs, _, err := txscript.ExtractPkScriptAddrs(pkScript, a.params)
	if err != nil || len(addrs) != 1 || class == txscript.MultiSigTy {
		return ""
	}
	return addrs[0].EncodeAddress()
}

package bitcoin

import (
	"encoding/hex"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
)

const compressedPubKeyLen = 33

var fieldPrime = btcec.S256().Params().P

// ValidatePubKey accepts only compressed secp256k1 keys whose x coordinate is a valid field element.
func ValidatePubKey(key []byte) error {
	if len(key) != compressedPubKeyLen {
		return model.Errorf(model.KindInvalidPublicKey, "key length %d", len(key))
	}
	if key[0] != 0x02 && key[0] != 0x03 {
		return model.Errorf(model.KindInvalidPublicKey, "key prefix %#x", key[0])
	}
	x := new(big.Int).SetBytes(key[1:])
	if x.Sign() == 0 {
		return model.Errorf(model.KindInvalidPublicKey, "zero x coordinate")
	}
	if x.Cmp(fieldPrime) >= 0 {
		return model.Errorf(model.KindInvalidPublicKey, "x coordinate exceeds field prime")
	}
	if _, err := btcec.ParsePubKey(key); err != nil {
		return model.Wrap(model.KindInvalidPublicKey, hex.EncodeToString(key), err)
	}
	return nil
}

// DeriveCustodyAddress builds a threshold-of-n multisig redeem script over pubKeys in the given
// order and returns its P2SH address. The same ordered keys always produce the same address.
func (a *Adapter) DeriveCustodyAddress(pubKeys [][]byte, threshold int) (model.AddressInfo, error) {
	if threshold <= 0 || threshold > len(pubKeys) {
		return model.AddressInfo{}, model.Errorf(model.KindInvalidTrusteeCount,
			"threshold %d of %d keys", threshold, len(pubKeys))
	}

	seen := make(map[string]struct{}, len(pubKeys))
	keys := make([]*btcutil.AddressPubKey, 0, len(pubKeys))
	for _, raw := range pubKeys {
		if err := ValidatePubKey(raw); err != nil {
			return model.AddressInfo{}, err
		}
		id := string(raw)
		if _, dup := seen[id]; dup {
			return model.AddressInfo{}, model.Errorf(model.KindDuplicatedKey, "%x", raw)
		}
		seen[id] = struct{}{}

		key, err := btcutil.NewAddressPubKey(raw, a.params)
		if err != nil {
			return model.AddressInfo{}, model.Wrap(model.KindInvalidPublicKey, hex.EncodeToString(raw), err)
		}
		keys = append(keys, key)
	}

	redeem, err := txscript.MultiSigScript(keys, threshold)
	if err != nil {
		return model.AddressInfo{}, model.Wrap(model.KindInvalidTrusteeCount, "multisig script", err)
	}
	addr, err := btcutil.NewAddressScriptHash(redeem, a.params)
	if err != nil {
		return model.AddressInfo{}, model.Wrap(model.KindInvalidAddress, "p2sh", err)
	}
	return model.AddressInfo{Address: addr.EncodeAddress(), RedeemScript: redeem}, nil
}

// redeemScriptAddress returns the P2SH address of a multisig redeem script, or "".
func (a *Adapter) redeemScriptAddress(script []byte) string {
	if txscript.GetScriptClass(script) != txscript.MultiSigTy {
		return ""
	}
	addr, err := btcutil.NewAddressScriptHash(script, a.params)
	if err != nil {
		return ""
	}
	return addr.EncodeAddress()
}

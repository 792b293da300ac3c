package trustee

import (
	"fmt"

	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/storage"
)

func sessionKey(chain model.Chain) []byte {
	return storage.Key("sess/", []byte(chain.String()))
}

func historyKey(chain model.Chain, number uint32) []byte {
	return storage.Key("sess-history/", []byte(chain.String()), []byte{'/'}, storage.Uint32Key(number))
}

func encodeAddress(enc *storage.Encoder, a model.AddressInfo) {
	enc.String(a.Address)
	enc.Bytes(a.RedeemScript)
}

func decodeAddress(dec *storage.Decoder) model.AddressInfo {
	return model.AddressInfo{Address: dec.String(), RedeemScript: dec.Bytes()}
}

func encodePrevious(enc *storage.Encoder, a *model.AddressInfo) {
	enc.Bool(a != nil)
	if a != nil {
		encodeAddress(enc, *a)
	}
}

func decodePrevious(dec *storage.Decoder) *model.AddressInfo {
	if !dec.Bool() {
		return nil
	}
	a := decodeAddress(dec)
	return &a
}

func encodeSession(s *model.TrusteeSession) ([]byte, error) {
	var enc storage.Encoder
	enc.Uint(uint64(s.Number))
	enc.Uint(uint64(len(s.Trustees)))
	for _, t := range s.Trustees {
		enc.String(string(t.Account))
		enc.Bytes(t.HotPubKey)
		enc.Bytes(t.ColdPubKey)
	}
	enc.Uint(uint64(s.Threshold))
	encodeAddress(&enc, s.Hot)
	encodeAddress(&enc, s.Cold)
	encodePrevious(&enc, s.PreviousHot)
	encodePrevious(&enc, s.PreviousCold)
	return enc.Finish()
}

func decodeSession(raw []byte) (*model.TrusteeSession, error) {
	dec := storage.NewDecoder(raw)
	s := &model.TrusteeSession{Number: dec.Uint32()}
	n := dec.Uint()
	if n > model.MaxTrustees {
		return nil, fmt.Errorf("session lists %d trustees", n)
	}
	for i := uint64(0); i < n; i++ {
		s.Trustees = append(s.Trustees, model.TrusteeInfo{
			Account:    model.AccountID(dec.String()),
			HotPubKey:  dec.Bytes(),
			ColdPubKey: dec.Bytes(),
		})
	}
	s.Threshold = uint16(dec.Uint32())
	s.Hot = decodeAddress(dec)
	s.Cold = decodeAddress(dec)
	s.PreviousHot = decodePrevious(dec)
	s.PreviousCold = decodePrevious(dec)
	if err := dec.Finish(); err != nil {
		return nil, err
	}
	return s, nil
}

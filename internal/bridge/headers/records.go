package headers

import (
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/storage"
)

const (
	headerPrefix = "hdr/"
	heightPrefix = "hgt/"
	mainPrefix   = "main/"
)

var (
	bestKey      = []byte("idx/best")
	confirmedKey = []byte("idx/confirmed")
	genesisKey   = []byte("idx/genesis")
	prunedKey    = []byte("idx/pruned")
)

func headerKey(hash chainhash.Hash) []byte { return storage.Key(headerPrefix, hash[:]) }

func heightKey(height uint32) []byte { return storage.Key(heightPrefix, storage.Uint32Key(height)) }

func mainKey(height uint32) []byte { return storage.Key(mainPrefix, storage.Uint32Key(height)) }

func encodeRecord(rec *model.HeaderRecord) ([]byte, error) {
	var enc storage.Encoder
	enc.Encode(func(w io.Writer) error { return rec.Header.Serialize(w) })
	enc.Uint(uint64(rec.Height))
	return enc.Finish()
}

func decodeRecord(raw []byte) (*model.HeaderRecord, error) {
	rec := new(model.HeaderRecord)
	dec := storage.NewDecoder(raw)
	dec.Decode(func(r io.Reader) error { return rec.Header.Deserialize(r) })
	rec.Height = dec.Uint32()
	if err := dec.Finish(); err != nil {
		return nil, err
	}
	rec.Hash = rec.Header.BlockHash()
	return rec, nil
}

func encodeIndex(idx model.ChainIndex) ([]byte, error) {
	var enc storage.Encoder
	enc.Hash(idx.Hash)
	enc.Uint(uint64(idx.Height))
	return enc.Finish()
}

func decodeIndex(raw []byte) (model.ChainIndex, error) {
	dec := storage.NewDecoder(raw)
	idx := model.ChainIndex{Hash: dec.Hash(), Height: dec.Uint32()}
	return idx, dec.Finish()
}

func encodeHashes(hashes []chainhash.Hash) ([]byte, error) {
	var enc storage.Encoder
	enc.Uint(uint64(len(hashes)))
	for _, h := range hashes {
		enc.Hash(h)
	}
	return enc.Finish()
}

func decodeHashes(raw []byte) ([]chainhash.Hash, error) {
	dec := storage.NewDecoder(raw)
	n := dec.Uint()
	if n > uint64(len(raw)/chainhash.HashSize) {
		return nil, fmt.Errorf("hash list claims %d entries in %d bytes", n, len(raw))
	}
	hashes := make([]chainhash.Hash, 0, n)
	for i := uint64(0); i < n; i++ {
		hashes = append(hashes, dec.Hash())
	}
	return hashes, dec.Finish()
}

func getRecord(r storage.Reader, hash chainhash.Hash) (*model.HeaderRecord, error) {
	raw, err := r.Get(headerKey(hash))
	if err != nil {
		return nil, fmt.Errorf("get header %s: %w", hash, err)
	}
	if raw == nil {
		return nil, nil
	}
	rec, err := decodeRecord(raw)
	if err != nil {
		return nil, fmt.Errorf("decode header %s: %w", hash, err)
	}
	return rec, nil
}

func putRecord(rw storage.ReadWriter, rec *model.HeaderRecord) error {
	raw, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("encode header %s: %w", rec.Hash, err)
	}
	return rw.Put(headerKey(rec.Hash), raw)
}

func getIndex(r storage.Reader, key []byte) (model.ChainIndex, bool, error) {
	raw, err := r.Get(key)
	if err != nil {
		return model.ChainIndex{}, false, fmt.Errorf("get %s: %w", key, err)
	}
	if raw == nil {
		return model.ChainIndex{}, false, nil
	}
	idx, err := decodeIndex(raw)
	if err != nil {
		return model.ChainIndex{}, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return idx, true, nil
}

func putIndex(rw storage.ReadWriter, key []byte, idx model.ChainIndex) error {
	raw, err := encodeIndex(idx)
	if err != nil {
		return err
	}
	return rw.Put(key, raw)
}

func getHashes(r storage.Reader, height uint32) ([]chainhash.Hash, error) {
	raw, err := r.Get(heightKey(height))
	if err != nil {
		return nil, fmt.Errorf("get height %d: %w", height, err)
	}
	if raw == nil {
		return nil, nil
	}
	hashes, err := decodeHashes(raw)
	if err != nil {
		return nil, fmt.Errorf("decode height %d: %w", height, err)
	}
	return hashes, nil
}

func putHashes(rw storage.ReadWriter, height uint32, hashes []chainhash.Hash) error {
	if len(hashes) == 0 {
		return rw.Delete(heightKey(height))
	}
	raw, err := encodeHashes(hashes)
	if err != nil {
		return err
	}
	return rw.Put(heightKey(height), raw)
}

func getMainHash(r storage.Reader, height uint32) (chainhash.Hash, bool, error) {
	raw, err := r.Get(mainKey(height))
	if err != nil {
		return chainhash.Hash{}, false, fmt.Errorf("get main chain at %d: %w", height, err)
	}
	if raw == nil {
		return chainhash.Hash{}, false, nil
	}
	hash, err := chainhash.NewHash(raw)
	if err != nil {
		return chainhash.Hash{}, false, fmt.Errorf("decode main chain at %d: %w", height, err)
	}
	return *hash, true, nil
}


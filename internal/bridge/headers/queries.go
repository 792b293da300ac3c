package headers

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/storage"
)

// Header returns the stored record for hash, or nil when it is unknown.
func (s *Store) Header(r storage.Reader, hash chainhash.Hash) (*model.HeaderRecord, error) {
	return getRecord(r, hash)
}

// IsMainChain reports whether rec lies on the current best branch.
func (s *Store) IsMainChain(r storage.Reader, rec *model.HeaderRecord) (bool, error) {
	return s.isMain(r, rec)
}

func (s *Store) Best(r storage.Reader) (model.ChainIndex, error) {
	best, _, _, err := s.tips(r)
	return best, err
}

func (s *Store) Confirmed(r storage.Reader) (model.ChainIndex, error) {
	_, confirmed, _, err := s.tips(r)
	return confirmed, err
}

func (s *Store) Genesis(r storage.Reader) (model.ChainIndex, error) {
	_, _, genesis, err := s.tips(r)
	return genesis, err
}

// HashesAtHeight lists every stored header at height in insertion order.
func (s *Store) HashesAtHeight(r storage.Reader, height uint32) ([]chainhash.Hash, error) {
	return getHashes(r, height)
}

// MainHashAt returns the main-chain header hash at height.
func (s *Store) MainHashAt(r storage.Reader, height uint32) (chainhash.Hash, bool, error) {
	return getMainHash(r, height)
}

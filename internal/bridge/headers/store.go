// Package headers stores Bitcoin block headers, validates their proof of work and tracks the
// best and confirmed tips across competing branches.
package headers

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/storage"
	"github.com/goodnatureofminers/btcbridge/internal/clock"
)

const (
	DefaultConfirmationDepth = 6
	DefaultMaxForkRetention  = 144
	DefaultMaxFutureDrift    = 2 * time.Hour
)

// Config tunes the store. Zero values take the defaults above.
type Config struct {
	Params            *chaincfg.Params
	ConfirmationDepth uint32
	MaxForkRetention  uint32
	MaxFutureDrift    time.Duration
}

// Store implements header insertion and fork choice over a storage unit.
type Store struct {
	params            *chaincfg.Params
	confirmationDepth uint32
	maxForkRetention  uint32
	maxFutureDrift    time.Duration
	clock             clock.TimeSource
}

func New(cfg Config, ts clock.TimeSource) *Store {
	s := &Store{
		params:            cfg.Params,
		confirmationDepth: cfg.ConfirmationDepth,
		maxForkRetention:  cfg.MaxForkRetention,
		maxFutureDrift:    cfg.MaxFutureDrift,
		clock:             ts,
	}
	if s.confirmationDepth == 0 {
		s.confirmationDepth = DefaultConfirmationDepth
	}
	if s.maxForkRetention == 0 {
		s.maxForkRetention = DefaultMaxForkRetention
	}
	if s.maxFutureDrift == 0 {
		s.maxFutureDrift = DefaultMaxFutureDrift
	}
	return s
}

func (s *Store) ConfirmationDepth() uint32 { return s.confirmationDepth }

func (s *Store) retargetInterval() uint32 {
	return uint32(s.params.TargetTimespan / s.params.TargetTimePerBlock)
}

// InitGenesis seeds the store with its first trusted header.
func (s *Store) InitGenesis(rw storage.ReadWriter, header wire.BlockHeader, height uint32) (model.ChainIndex, error) {
	if _, ok, err := getIndex(rw, genesisKey); err != nil {
		return model.ChainIndex{}, err
	} else if ok {
		return model.ChainIndex{}, model.Errorf(model.KindAlreadyInitialized, "header chain already has a genesis")
	}
	if !s.params.PoWNoRetargeting && height%s.retargetInterval() != 0 {
		return model.ChainIndex{}, model.Errorf(model.KindInvalidGenesis,
			"genesis height %d is not a multiple of the retarget interval %d", height, s.retargetInterval())
	}

	rec := &model.HeaderRecord{Header: header, Height: height, Hash: header.BlockHash()}
	idx := model.ChainIndex{Hash: rec.Hash, Height: height}
	if err := putRecord(rw, rec); err != nil {
		return idx, err
	}
	if err := putHashes(rw, height, []chainhash.Hash{rec.Hash}); err != nil {
		return idx, err
	}
	if err := rw.Put(mainKey(height), rec.Hash[:]); err != nil {
		return idx, err
	}
	for _, key := range [][]byte{genesisKey, bestKey, confirmedKey} {
		if err := putIndex(rw, key, idx); err != nil {
			return idx, err
		}
	}
	return idx, putIndex(rw, prunedKey, idx)
}

// PushHeader validates header against its stored parent and applies fork choice.
// On error the caller must discard the storage unit.
func (s *Store) PushHeader(rw storage.ReadWriter, header wire.BlockHeader, emit model.Emitter) (model.ChainIndex, error) {
	hash := header.BlockHash()

	best, confirmed, genesis, err := s.tips(rw)
	if err != nil {
		return model.ChainIndex{}, err
	}

	if existing, err := getRecord(rw, hash); err != nil {
		return model.ChainIndex{}, err
	} else if existing != nil {
		return model.ChainIndex{}, model.Errorf(model.KindExistingHeader, "%s", hash)
	}

	parent, err := getRecord(rw, header.PrevBlock)
	if err != nil {
		return model.ChainIndex{}, err
	}
	if parent == nil {
		return model.ChainIndex{}, model.Errorf(model.KindPrevHeaderNotExisted, "parent %s of %s", header.PrevBlock, hash)
	}
	height := parent.Height + 1

	if limit := s.clock.Now().Add(s.maxFutureDrift); header.Timestamp.After(limit) {
		return model.ChainIndex{}, model.Errorf(model.KindHeaderFuturisticTimestamp,
			"%s timestamp %s after %s", hash, header.Timestamp.UTC(), limit.UTC())
	}

	want, err := s.requiredBits(rw, parent, header.Timestamp, genesis)
	if err != nil {
		return model.ChainIndex{}, err
	}
	if header.Bits != want {
		return model.ChainIndex{}, model.Errorf(model.KindHeaderNBitsNotMatch, "%s bits %08x, want %08x", hash, header.Bits, want)
	}
	if err := checkProofOfWork(hash, header.Bits, s.params.PowLimit); err != nil {
		return model.ChainIndex{}, err
	}

	if height <= confirmed.Height {
		return model.ChainIndex{}, model.Errorf(model.KindAncientFork, "%s at height %d, confirmed %d", hash, height, confirmed.Height)
	}
	fork, err := s.forkPoint(rw, parent, genesis)
	if err != nil {
		return model.ChainIndex{}, err
	}
	if fork.Height < confirmed.Height {
		return model.ChainIndex{}, model.Errorf(model.KindAncientFork,
			"%s branches off at %d below confirmed %d", hash, fork.Height, confirmed.Height)
	}

	rec := &model.HeaderRecord{Header: header, Height: height, Hash: hash}
	if err := putRecord(rw, rec); err != nil {
		return model.ChainIndex{}, err
	}
	siblings, err := getHashes(rw, height)
	if err != nil {
		return model.ChainIndex{}, err
	}
	if err := putHashes(rw, height, append(siblings, hash)); err != nil {
		return model.ChainIndex{}, err
	}

	reorg := false
	if height > best.Height {
		reorg = fork.Hash != parent.Hash
		if err := s.switchBranch(rw, rec, fork, best); err != nil {
			return model.ChainIndex{}, err
		}
		best = model.ChainIndex{Hash: hash, Height: height}
		if err := putIndex(rw, bestKey, best); err != nil {
			return model.ChainIndex{}, err
		}
		if confirmed, err = s.advanceConfirmed(rw, best, confirmed, genesis); err != nil {
			return model.ChainIndex{}, err
		}
		if err := s.prune(rw, best, genesis); err != nil {
			return model.ChainIndex{}, err
		}
	}

	emit.Emit(model.HeaderInserted{Hash: hash, Height: height, Best: best, Confirmed: confirmed, Reorg: reorg})
	return model.ChainIndex{Hash: hash, Height: height}, nil
}

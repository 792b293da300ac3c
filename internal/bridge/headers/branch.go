package headers

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/storage"
)

func (s *Store) tips(r storage.Reader) (best, confirmed, genesis model.ChainIndex, err error) {
	var ok bool
	if genesis, ok, err = getIndex(r, genesisKey); err != nil {
		return
	} else if !ok {
		err = model.Errorf(model.KindNotInitialized, "header chain has no genesis")
		return
	}
	if best, _, err = getIndex(r, bestKey); err != nil {
		return
	}
	confirmed, _, err = getIndex(r, confirmedKey)
	return
}

func (s *Store) isMain(r storage.Reader, rec *model.HeaderRecord) (bool, error) {
	hash, ok, err := getMainHash(r, rec.Height)
	if err != nil || !ok {
		return false, err
	}
	return hash == rec.Hash, nil
}

// forkPoint returns the nearest main-chain ancestor of rec, rec itself included.
func (s *Store) forkPoint(r storage.Reader, rec *model.HeaderRecord, genesis model.ChainIndex) (model.ChainIndex, error) {
	node := rec
	for {
		main, err := s.isMain(r, node)
		if err != nil {
			return model.ChainIndex{}, err
		}
		if main {
			return model.ChainIndex{Hash: node.Hash, Height: node.Height}, nil
		}
		if node.Height <= genesis.Height {
			return model.ChainIndex{}, model.Errorf(model.KindAncientFork, "%s does not descend from genesis", rec.Hash)
		}
		parent, err := getRecord(r, node.Header.PrevBlock)
		if err != nil {
			return model.ChainIndex{}, err
		}
		if parent == nil {
			return model.ChainIndex{}, model.Errorf(model.KindAncientFork, "ancestor %s of %s was pruned", node.Header.PrevBlock, rec.Hash)
		}
		node = parent
	}
}

// ancestor returns the header at height on the branch ending at rec.
func (s *Store) ancestor(r storage.Reader, rec *model.HeaderRecord, height uint32) (*model.HeaderRecord, error) {
	node := rec
	for node.Height > height {
		main, err := s.isMain(r, node)
		if err != nil {
			return nil, err
		}
		if main {
			hash, ok, err := getMainHash(r, height)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, fmt.Errorf("main chain has no header at %d", height)
			}
			node, err = getRecord(r, hash)
			if err != nil {
				return nil, err
			}
			break
		}
		parent, err := getRecord(r, node.Header.PrevBlock)
		if err != nil {
			return nil, err
		}
		node = parent
		if node == nil {
			break
		}
	}
	if node == nil || node.Height != height {
		return nil, model.Errorf(model.KindPrevHeaderNotExisted, "no ancestor of %s at height %d", rec.Hash, height)
	}
	return node, nil
}

// switchBranch makes tip's branch the main chain, unmarking the old branch above the fork point.
func (s *Store) switchBranch(rw storage.ReadWriter, tip *model.HeaderRecord, fork, best model.ChainIndex) error {
	for h := fork.Height + 1; h <= best.Height; h++ {
		if err := rw.Delete(mainKey(h)); err != nil {
			return fmt.Errorf("unmark main chain at %d: %w", h, err)
		}
	}
	node := tip
	for node.Height > fork.Height {
		if err := rw.Put(mainKey(node.Height), node.Hash[:]); err != nil {
			return fmt.Errorf("mark main chain at %d: %w", node.Height, err)
		}
		if node.Height == fork.Height+1 {
			break
		}
		parent, err := getRecord(rw, node.Header.PrevBlock)
		if err != nil {
			return err
		}
		if parent == nil {
			return fmt.Errorf("branch of %s is missing %s", tip.Hash, node.Header.PrevBlock)
		}
		node = parent
	}
	return nil
}

// advanceConfirmed moves Confirmed to the main-chain header ConfirmationDepth below best.
// It never moves backwards.
func (s *Store) advanceConfirmed(rw storage.ReadWriter, best, confirmed, genesis model.ChainIndex) (model.ChainIndex, error) {
	if best.Height < genesis.Height+s.confirmationDepth {
		return confirmed, nil
	}
	height := best.Height - s.confirmationDepth
	if height <= confirmed.Height {
		return confirmed, nil
	}
	hash, ok, err := getMainHash(rw, height)
	if err != nil {
		return confirmed, err
	}
	if !ok {
		return confirmed, fmt.Errorf("main chain has no header at %d", height)
	}
	next := model.ChainIndex{Hash: hash, Height: height}
	return next, putIndex(rw, confirmedKey, next)
}

// prune drops side-branch headers that fell more than ConfirmationDepth+MaxForkRetention below best.
// Main-chain headers are kept so transactions in old blocks stay provable.
func (s *Store) prune(rw storage.ReadWriter, best, genesis model.ChainIndex) error {
	keep := s.confirmationDepth + s.maxForkRetention
	if best.Height <= genesis.Height+keep {
		return nil
	}
	cutoff := best.Height - keep

	pruned, _, err := getIndex(rw, prunedKey)
	if err != nil {
		return err
	}
	if pruned.Height >= cutoff {
		return nil
	}

	for h := pruned.Height + 1; h <= cutoff; h++ {
		hashes, err := getHashes(rw, h)
		if err != nil {
			return err
		}
		if len(hashes) <= 1 {
			continue
		}
		main, _, err := getMainHash(rw, h)
		if err != nil {
			return err
		}
		for _, hash := range hashes {
			if hash == main {
				continue
			}
			if err := rw.Delete(headerKey(hash)); err != nil {
				return fmt.Errorf("prune header %s: %w", hash, err)
			}
		}
		if err := putHashes(rw, h, []chainhash.Hash{main}); err != nil {
			return err
		}
	}
	return putIndex(rw, prunedKey, model.ChainIndex{Height: cutoff})
}

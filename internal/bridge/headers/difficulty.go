package headers

import (
	"math/big"
	"time"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/model"
	"github.com/goodnatureofminers/btcbridge/internal/bridge/storage"
)

func checkProofOfWork(hash chainhash.Hash, bits uint32, powLimit *big.Int) error {
	target := blockchain.CompactToBig(bits)
	if target.Sign() <= 0 {
		return model.Errorf(model.KindInvalidPoW, "%s target %064x is not positive", hash, target)
	}
	if target.Cmp(powLimit) > 0 {
		return model.Errorf(model.KindInvalidPoW, "%s target %064x above pow limit", hash, target)
	}
	if blockchain.HashToBig(&hash).Cmp(target) > 0 {
		return model.Errorf(model.KindInvalidPoW, "%s above target %064x", hash, target)
	}
	return nil
}

// requiredBits returns the compact target a child of parent stamped at ts must carry.
func (s *Store) requiredBits(r storage.Reader, parent *model.HeaderRecord, ts time.Time, genesis model.ChainIndex) (uint32, error) {
	if s.params.PoWNoRetargeting {
		return parent.Header.Bits, nil
	}

	interval := s.retargetInterval()
	height := parent.Height + 1
	if height%interval != 0 {
		if !s.params.ReduceMinDifficulty {
			return parent.Header.Bits, nil
		}
		allowMin := parent.Header.Timestamp.Add(s.params.MinDiffReductionTime)
		if ts.After(allowMin) {
			return s.params.PowLimitBits, nil
		}
		return s.lastNonMinimumBits(r, parent, genesis)
	}

	first, err := s.ancestor(r, parent, height-interval)
	if err != nil {
		return 0, err
	}

	targetSeconds := int64(s.params.TargetTimespan / time.Second)
	factor := s.params.RetargetAdjustmentFactor
	span := parent.Header.Timestamp.Unix() - first.Header.Timestamp.Unix()
	if minSpan := targetSeconds / factor; span < minSpan {
		span = minSpan
	} else if maxSpan := targetSeconds * factor; span > maxSpan {
		span = maxSpan
	}

	next := new(big.Int).Mul(blockchain.CompactToBig(parent.Header.Bits), big.NewInt(span))
	next.Div(next, big.NewInt(targetSeconds))
	if next.Cmp(s.params.PowLimit) > 0 {
		next.Set(s.params.PowLimit)
	}
	return blockchain.BigToCompact(next), nil
}

// lastNonMinimumBits walks back to the most recent header that either starts a retarget window
// or carries a target other than the network minimum.
func (s *Store) lastNonMinimumBits(r storage.Reader, from *model.HeaderRecord, genesis model.ChainIndex) (uint32, error) {
	interval := s.retargetInterval()
	node := from
	for node.Height%interval != 0 && node.Header.Bits == s.params.PowLimitBits {
		if node.Height <= genesis.Height {
			return s.params.PowLimitBits, nil
		}
		parent, err := getRecord(r, node.Header.PrevBlock)
		if err != nil {
			return 0, err
		}
		if parent == nil {
			return s.params.PowLimitBits, nil
		}
		node = parent
	}
	return node.Header.Bits, nil
}

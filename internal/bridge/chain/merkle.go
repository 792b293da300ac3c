package chain

import (
	"fmt"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// BuildMerkleProof returns the sibling path proving txHashes[index] against the merkle root of txHashes.
func BuildMerkleProof(txHashes []chainhash.Hash, index uint32) (MerkleProof, error) {
	if int(index) >= len(txHashes) {
		return MerkleProof{}, fmt.Errorf("tx index %d out of range (%d txs)", index, len(txHashes))
	}

	proof := MerkleProof{TxIndex: index}
	level := append([]chainhash.Hash(nil), txHashes...)
	pos := index
	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		proof.Branch = append(proof.Branch, level[pos^1])

		next := make([]chainhash.Hash, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next = append(next, blockchain.HashMerkleBranches(&level[i], &level[i+1]))
		}
		level = next
		pos >>= 1
	}
	return proof, nil
}

// MerkleRoot folds txHash up the proof branch.
// ok is false when the index has bits left over after the branch is consumed, or when a
// left sibling duplicates the running hash, which only happens for a forged proof.
func MerkleRoot(txHash chainhash.Hash, proof MerkleProof) (root chainhash.Hash, ok bool) {
	current := txHash
	pos := proof.TxIndex
	for i := range proof.Branch {
		sibling := proof.Branch[i]
		if pos&1 == 1 {
			if sibling == current {
				return chainhash.Hash{}, false
			}
			current = blockchain.HashMerkleBranches(&sibling, &current)
		} else {
			current = blockchain.HashMerkleBranches(&current, &sibling)
		}
		pos >>= 1
	}
	if pos != 0 {
		return chainhash.Hash{}, false
	}
	return current, true
}

// VerifyMerkleProof reports whether txHash is committed to by root under proof.
func VerifyMerkleProof(root, txHash chainhash.Hash, proof MerkleProof) bool {
	got, ok := MerkleRoot(txHash, proof)
	return ok && got == root
}

// UnsignedHash is the txid of tx with every signature script and witness removed.
// Two drafts of the same spend share it no matter how many signatures they carry.
func UnsignedHash(tx *wire.MsgTx) chainhash.Hash {
	stripped := tx.Copy()
	for _, in := range stripped.TxIn {
		in.SignatureScript = nil
		in.Witness = nil
	}
	return stripped.TxHash()
}

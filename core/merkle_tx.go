package core

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
)

// buildMerkleLevels returns every level of a Merkle tree built over leaves
// (each leaf SHA-256-hashed first), adapted from the teacher's
// BuildMerkleTree. The last level holds the single root.
func buildMerkleLevels(leaves [][]byte) [][][32]byte {
	if len(leaves) == 0 {
		return nil
	}
	level := make([][32]byte, len(leaves))
	for i, l := range leaves {
		level[i] = sha256.Sum256(l)
	}
	tree := [][][32]byte{level}
	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([][32]byte, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			combined := append(append([]byte(nil), level[i][:]...), level[i+1][:]...)
			next[i/2] = sha256.Sum256(combined)
		}
		tree = append(tree, next)
		level = next
	}
	return tree
}

// TransactionMerkleRoot computes the Merkle root over a block's transaction
// IDs, used as Block.MerkleRoot (spec §3).
func TransactionMerkleRoot(txIDs []Hash) Hash {
	if len(txIDs) == 0 {
		return Hash("")
	}
	leaves := make([][]byte, len(txIDs))
	for i, id := range txIDs {
		leaves[i] = []byte(id)
	}
	levels := buildMerkleLevels(leaves)
	root := levels[len(levels)-1][0]
	return hashBytesToHash(root[:])
}

// MerkleInclusionProof returns a proof that the leaf at index is part of the
// tree built over leaves, along with the tree's root.
func MerkleInclusionProof(leaves [][]byte, index int) ([][]byte, Hash, error) {
	if len(leaves) == 0 {
		return nil, "", NewError(KindInvalidInput, "no leaves")
	}
	if index < 0 || index >= len(leaves) {
		return nil, "", NewError(KindInvalidInput, "index out of range")
	}
	tree := buildMerkleLevels(leaves)
	proof := make([][]byte, 0, len(tree)-1)
	idx := index
	for i := 0; i < len(tree)-1; i++ {
		level := tree[i]
		if idx%2 == 0 {
			proof = append(proof, level[idx+1][:])
		} else {
			proof = append(proof, level[idx-1][:])
		}
		idx /= 2
	}
	root := tree[len(tree)-1][0]
	return proof, hashBytesToHash(root[:]), nil
}

// VerifyMerkleInclusion checks that proof reconstructs root for leaf at
// index.
func VerifyMerkleInclusion(root Hash, leaf []byte, proof [][]byte, index int) bool {
	h := sha256.Sum256(leaf)
	hash := h[:]
	idx := index
	for _, p := range proof {
		var combined []byte
		if idx%2 == 0 {
			combined = append(append([]byte(nil), hash...), p...)
		} else {
			combined = append(append([]byte(nil), p...), hash...)
		}
		sum := sha256.Sum256(combined)
		hash = sum[:]
		idx /= 2
	}
	rootBytes, err := hex.DecodeString(string(root))
	if err != nil {
		return false
	}
	return bytes.Equal(hash, rootBytes)
}

package core

import (
	"crypto/sha256"
	"fmt"
	"sort"
)

// StateTree commits a balances map to a single Merkle root, enabling
// membership verification without re-hashing the whole set (spec §4.2).
// Leaves are hash("{address}:{balance}") keyed by address, iterated in
// sorted-address order so the root is independent of map iteration order.
type StateTree struct {
	root Hash
}

// NewStateTree returns an empty tree (root is the empty hash).
func NewStateTree() *StateTree { return &StateTree{} }

func leafHash(addr Address, balance uint64) [32]byte {
	return sha256.Sum256([]byte(fmt.Sprintf("%s:%d", addr, balance)))
}

// computeRoot iteratively pair-hashes sorted leaves, duplicating the odd
// tail at each level, until one node remains (spec §3, §4.2). An empty
// balances map yields the empty hash.
func computeRoot(balances map[Address]uint64) Hash {
	if len(balances) == 0 {
		return Hash("")
	}
	addrs := make([]Address, 0, len(balances))
	for a := range balances {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	level := make([][32]byte, len(addrs))
	for i, a := range addrs {
		level[i] = leafHash(a, balances[a])
	}
	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([][32]byte, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			combined := append(append([]byte(nil), level[i][:]...), level[i+1][:]...)
			next[i/2] = sha256.Sum256(combined)
		}
		level = next
	}
	return hashBytesToHash(level[0][:])
}

// Update recomputes and stores the root for balances, returning it (spec
// §4.2 `update`).
func (t *StateTree) Update(balances map[Address]uint64) Hash {
	t.root = computeRoot(balances)
	return t.root
}

// Root returns the tree's current root.
func (t *StateTree) Root() Hash { return t.root }

// Verify recomputes the root of balances and compares it against the tree's
// recorded root (spec §4.2 `verify`). Verifying a nonempty recorded root
// against an empty balances map fails with EmptyState.
func (t *StateTree) Verify(balances map[Address]uint64) error {
	if len(balances) == 0 && !t.root.IsZero() {
		return NewError(KindEmptyState, "cannot verify empty balances against nonempty root %s", t.root)
	}
	recomputed := computeRoot(balances)
	if recomputed != t.root {
		return NewError(KindStateCorruption, "state root mismatch: recorded %s, recomputed %s", t.root, recomputed)
	}
	return nil
}

// VerifyBalances is a pure function returning whether root is the Merkle
// root of balances, without mutating any StateTree.
func VerifyBalances(root Hash, balances map[Address]uint64) bool {
	if len(balances) == 0 {
		return root.IsZero()
	}
	return computeRoot(balances) == root
}

// commitBalances independently derives a commitment to balances: an XOR
// accumulator over per-address leaf hashes, order-independent and built by
// a different construction than computeRoot's pairwise tree. An engine
// maintains one of these incrementally as each balance write happens
// (see Engine.setBalanceLocked) and compares it against commitBalances
// freshly recomputed from the resulting map, so the two can actually
// diverge if some balance mutation bypassed the tracked path (spec §9 Open
// Question #2).
func commitBalances(balances map[Address]uint64) [32]byte {
	var acc [32]byte
	for addr, bal := range balances {
		xorLeafInto(&acc, leafHash(addr, bal))
	}
	return acc
}

func xorLeafInto(acc *[32]byte, leaf [32]byte) {
	for i := range acc {
		acc[i] ^= leaf[i]
	}
}

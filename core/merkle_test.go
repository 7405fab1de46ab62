package core

import "testing"

func TestStateTreeUpdateVerifyRoundTrip(t *testing.T) {
	tree := NewStateTree()
	balances := map[Address]uint64{"alice": 100, "bob": 50}
	root := tree.Update(balances)
	if root.IsZero() {
		t.Fatal("expected a nonzero root for a nonempty balance set")
	}
	if err := tree.Verify(balances); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	balances["bob"] = 51
	if err := tree.Verify(balances); err == nil {
		t.Fatal("expected verification to fail after mutating a balance")
	}
}

func TestStateTreeRootIndependentOfMapOrder(t *testing.T) {
	a := map[Address]uint64{"alice": 1, "bob": 2, "carol": 3}
	b := map[Address]uint64{"carol": 3, "alice": 1, "bob": 2}
	if computeRoot(a) != computeRoot(b) {
		t.Fatal("root must not depend on map iteration order")
	}
}

func TestVerifyBalancesEmptyState(t *testing.T) {
	if !VerifyBalances(Hash(""), map[Address]uint64{}) {
		t.Fatal("empty balances should verify against the empty root")
	}
	if VerifyBalances(Hash("deadbeef"), map[Address]uint64{}) {
		t.Fatal("empty balances must not verify against a nonzero root")
	}
}

func TestMerkleInclusionProofRoundTrip(t *testing.T) {
	leaves := [][]byte{[]byte("a"), []byte("b"), []byte("c"), []byte("d"), []byte("e")}
	for i := range leaves {
		proof, root, err := MerkleInclusionProof(leaves, i)
		if err != nil {
			t.Fatalf("MerkleInclusionProof(%d): %v", i, err)
		}
		if !VerifyMerkleInclusion(root, leaves[i], proof, i) {
			t.Fatalf("inclusion proof for leaf %d did not verify", i)
		}
	}
}

func TestTransactionMerkleRootEmpty(t *testing.T) {
	if TransactionMerkleRoot(nil) != Hash("") {
		t.Fatal("expected the empty hash for an empty transaction set")
	}
}

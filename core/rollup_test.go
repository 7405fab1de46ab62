package core

import "testing"

func sampleBatchTxs(t *testing.T) []Transaction {
	t.Helper()
	tx1, err := NewTransfer("alice", "bob", 10, "")
	if err != nil {
		t.Fatalf("NewTransfer: %v", err)
	}
	tx2, err := NewTransfer("bob", "carol", 5, "")
	if err != nil {
		t.Fatalf("NewTransfer: %v", err)
	}
	return []Transaction{tx1, tx2}
}

func TestCreateOptimisticBatchIsSubmitted(t *testing.T) {
	r := NewRollupBatcher(RollupConfig{ChallengeWindow: 10})
	txs := sampleBatchTxs(t)
	balances := map[Address]uint64{"alice": 90, "bob": 5, "carol": 5}
	b, err := r.CreateBatch(RollupOptimistic, "sequencer", txs, Hash(""), balances, 100)
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if b.Status != BatchSubmitted {
		t.Fatalf("expected Submitted status, got %s", b.Status)
	}
}

func TestCreateZKBatchFinalizesImmediately(t *testing.T) {
	r := NewRollupBatcher(RollupConfig{ChallengeWindow: 10})
	txs := sampleBatchTxs(t)
	balances := map[Address]uint64{"alice": 90, "bob": 5, "carol": 5}
	b, err := r.CreateBatch(RollupZK, "sequencer", txs, Hash(""), balances, 100)
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if b.Status != BatchFinalized {
		t.Fatalf("expected a verified ZK batch to finalize immediately, got %s", b.Status)
	}
	if b.Proof == nil {
		t.Fatal("expected a recorded proof on the finalized ZK batch")
	}
}

func TestFinalizeBatchRequiresChallengeWindow(t *testing.T) {
	r := NewRollupBatcher(RollupConfig{ChallengeWindow: 10})
	txs := sampleBatchTxs(t)
	balances := map[Address]uint64{"alice": 90, "bob": 5, "carol": 5}
	b, err := r.CreateBatch(RollupOptimistic, "sequencer", txs, Hash(""), balances, 100)
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if err := r.FinalizeBatch(b.ID, 105); err == nil {
		t.Fatal("expected an error finalizing before the challenge window elapses")
	}
	if err := r.FinalizeBatch(b.ID, 110); err != nil {
		t.Fatalf("FinalizeBatch after the window elapses: %v", err)
	}
	got, _ := r.Batch(b.ID)
	if got.Status != BatchFinalized {
		t.Fatalf("expected Finalized status, got %s", got.Status)
	}
}

func TestSubmitFraudProofRevertsBatch(t *testing.T) {
	r := NewRollupBatcher(RollupConfig{ChallengeWindow: 10})
	txs := sampleBatchTxs(t)
	balances := map[Address]uint64{"alice": 90, "bob": 5, "carol": 5}
	b, err := r.CreateBatch(RollupOptimistic, "sequencer", txs, Hash(""), balances, 100)
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	fp := FraudProof{
		TxIndex:      0,
		PreState:     Hash(""),
		Tx:           txs[0],
		ExpectedPost: hashBytesToHash([]byte("a-different-post-state")),
	}
	if err := r.SubmitFraudProof(b.ID, fp); err != nil {
		t.Fatalf("SubmitFraudProof: %v", err)
	}
	got, _ := r.Batch(b.ID)
	if got.Status != BatchReverted {
		t.Fatalf("expected Reverted status, got %s", got.Status)
	}
}

func TestSubmitFraudProofRejectsAgreeingWitness(t *testing.T) {
	r := NewRollupBatcher(RollupConfig{ChallengeWindow: 10})
	txs := sampleBatchTxs(t)
	balances := map[Address]uint64{"alice": 90, "bob": 5, "carol": 5}
	b, err := r.CreateBatch(RollupOptimistic, "sequencer", txs, Hash(""), balances, 100)
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	fp := FraudProof{
		TxIndex:      0,
		PreState:     Hash(""),
		Tx:           txs[0],
		ExpectedPost: b.PostState,
	}
	if err := r.SubmitFraudProof(b.ID, fp); err == nil {
		t.Fatal("expected rejection of a fraud proof that agrees with the recorded post-state")
	}
}

func TestSubmitFraudProofRejectsNonOptimisticBatch(t *testing.T) {
	r := NewRollupBatcher(RollupConfig{ChallengeWindow: 10})
	txs := sampleBatchTxs(t)
	balances := map[Address]uint64{"alice": 90, "bob": 5, "carol": 5}
	b, err := r.CreateBatch(RollupZK, "sequencer", txs, Hash(""), balances, 100)
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	fp := FraudProof{TxIndex: 0, Tx: txs[0], ExpectedPost: hashBytesToHash([]byte("x"))}
	if err := r.SubmitFraudProof(b.ID, fp); err == nil {
		t.Fatal("expected an error submitting a fraud proof against a ZK batch")
	}
}

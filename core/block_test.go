package core

import "testing"

func TestNewGenesisBlockIsValid(t *testing.T) {
	genesis, err := NewGenesisBlock()
	if err != nil {
		t.Fatalf("NewGenesisBlock: %v", err)
	}
	if err := genesis.Validate(); err != nil {
		t.Fatalf("genesis block should validate: %v", err)
	}
	if genesis.Index != 0 || genesis.PreviousHash != ZeroHash {
		t.Fatalf("unexpected genesis shape: index=%d previous_hash=%s", genesis.Index, genesis.PreviousHash)
	}
	if len(genesis.Transactions) != 1 || genesis.Transactions[0].Receiver != GenesisReceiver {
		t.Fatal("genesis block must carry exactly one coinbase transfer to GenesisReceiver")
	}
}

func TestBlockValidateDetectsHashTampering(t *testing.T) {
	genesis, err := NewGenesisBlock()
	if err != nil {
		t.Fatalf("NewGenesisBlock: %v", err)
	}
	genesis.Nonce = 12345
	if err := genesis.Validate(); err == nil {
		t.Fatal("expected validation failure after changing nonce without recomputing hash")
	}
}

func TestNewBlockRejectsOversizedTransactionList(t *testing.T) {
	tx, err := NewTransfer("alice", "bob", 1, "")
	if err != nil {
		t.Fatalf("NewTransfer: %v", err)
	}
	huge := make([]Transaction, 0, 200000)
	for i := 0; i < 200000; i++ {
		huge = append(huge, *tx)
	}
	if _, err := NewBlock(1, huge, ZeroHash, GenesisVersion, ConsensusPoW); err == nil {
		t.Fatal("expected BlockTooLarge for an oversized transaction list")
	}
}

func TestVerifyTransactionInclusion(t *testing.T) {
	tx1, _ := NewTransfer("alice", "bob", 1, "a")
	tx2, _ := NewTransfer("alice", "carol", 2, "b")
	tx3, _ := NewTransfer("alice", "dave", 3, "c")
	blk, err := NewBlock(1, []Transaction{*tx1, *tx2, *tx3}, ZeroHash, GenesisVersion, ConsensusPoW)
	if err != nil {
		t.Fatalf("NewBlock: %v", err)
	}
	ok, err := blk.VerifyTransactionInclusion(tx2, 1)
	if err != nil {
		t.Fatalf("VerifyTransactionInclusion: %v", err)
	}
	if !ok {
		t.Fatal("expected tx2 to be proven included at index 1")
	}
	ok, err = blk.VerifyTransactionInclusion(tx2, 0)
	if err != nil {
		t.Fatalf("VerifyTransactionInclusion: %v", err)
	}
	if ok {
		t.Fatal("tx2 should not be included at index 0")
	}
}

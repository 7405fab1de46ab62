package core

import "testing"

func TestNewTransferValidAndSigned(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	tx, err := NewTransfer(kp.Address(), "bob-address-000000000000000000000000", 100, "lunch")
	if err != nil {
		t.Fatalf("NewTransfer: %v", err)
	}
	if err := tx.Sign(kp); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	ok, err := tx.VerifySignature()
	if err != nil {
		t.Fatalf("VerifySignature: %v", err)
	}
	if !ok {
		t.Fatal("expected signature to verify")
	}
}

func TestNewTransferRejectsSelfTransferAndZeroAmount(t *testing.T) {
	if _, err := NewTransfer("alice", "alice", 10, ""); err == nil {
		t.Fatal("expected error for sender == receiver")
	}
	if _, err := NewTransfer("alice", "bob", 0, ""); err == nil {
		t.Fatal("expected error for zero amount")
	}
}

func TestTransactionIDChangesWithFields(t *testing.T) {
	tx1, err := NewTransfer("alice", "bob", 10, "memo-a")
	if err != nil {
		t.Fatalf("NewTransfer: %v", err)
	}
	tx2, err := NewTransfer("alice", "bob", 10, "memo-b")
	if err != nil {
		t.Fatalf("NewTransfer: %v", err)
	}
	if tx1.ID == tx2.ID {
		t.Fatal("transactions differing only by memo should have distinct ids")
	}
}

func TestTamperedTransactionFailsValidate(t *testing.T) {
	tx, err := NewTransfer("alice", "bob", 10, "memo")
	if err != nil {
		t.Fatalf("NewTransfer: %v", err)
	}
	tx.Amount = 999
	if err := tx.Validate(); err == nil {
		t.Fatal("expected validation to fail after mutating a signed field")
	}
}

func TestContractDeployRequiresGas(t *testing.T) {
	if _, err := NewContractDeploy("alice", []byte("PUSH 1\n"), 0, 1); err == nil {
		t.Fatal("expected error for zero gas limit")
	}
	if _, err := NewContractDeploy("alice", []byte("PUSH 1\n"), 100, 0); err == nil {
		t.Fatal("expected error for zero gas price")
	}
	if _, err := NewContractDeploy("alice", nil, 100, 1); err == nil {
		t.Fatal("expected error for empty contract code")
	}
}

func TestStakingTransactionValidation(t *testing.T) {
	if _, err := NewStaking("alice", "", 10, StakeOpStake); err == nil {
		t.Fatal("expected error for empty validator")
	}
	if _, err := NewStaking("alice", "val", 10, StakeOp("bogus")); err == nil {
		t.Fatal("expected error for unknown stake op")
	}
	tx, err := NewStaking("alice", "val", 10, StakeOpStake)
	if err != nil {
		t.Fatalf("NewStaking: %v", err)
	}
	if tx.Type != TxStaking {
		t.Fatalf("expected TxStaking, got %v", tx.Type)
	}
}

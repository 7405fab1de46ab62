package core

import (
	"context"
	"testing"
)

func newPoWEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(EngineConfig{
		Consensus:   ConsensusPoW,
		Difficulty:  1,
		MaxAttempts: 1_000_000,
		PoS:         PoSConfig{MinStake: 100, MaxValidators: 10, BaseReward: 10, SlashingRate: 0.1},
		BlockReward: 50,
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestNewEngineAppliesGenesis(t *testing.T) {
	e := newPoWEngine(t)
	if e.Height() != 0 {
		t.Fatalf("expected height 0 after genesis, got %d", e.Height())
	}
	if e.Balance(GenesisReceiver) != GenesisReward {
		t.Fatalf("expected genesis balance %d, got %d", GenesisReward, e.Balance(GenesisReceiver))
	}
}

func TestAddTransactionRejectsInsufficientBalance(t *testing.T) {
	e := newPoWEngine(t)
	tx, err := NewTransfer("nobody", "bob", 10, "")
	if err != nil {
		t.Fatalf("NewTransfer: %v", err)
	}
	err = e.AddTransaction(tx)
	if err == nil {
		t.Fatal("expected InsufficientBalance for a sender with no funds")
	}
	if kind, _ := KindOf(err); kind != KindInsufficientBalance {
		t.Fatalf("unexpected error kind %v", kind)
	}
}

func TestMineBlockTransferAndReward(t *testing.T) {
	e := newPoWEngine(t)
	tx, err := NewTransfer(GenesisReceiver, "bob", 100, "seed")
	if err != nil {
		t.Fatalf("NewTransfer: %v", err)
	}
	if err := e.AddTransaction(tx); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	miner := Address("miner-address-000000000000000000000000")
	blk, err := e.MineBlock(context.Background(), miner, nil)
	if err != nil {
		t.Fatalf("MineBlock: %v", err)
	}
	if blk.Index != 1 {
		t.Fatalf("expected block index 1, got %d", blk.Index)
	}
	if e.Balance("bob") != 100 {
		t.Fatalf("expected bob's balance 100, got %d", e.Balance("bob"))
	}
	if e.Balance(miner) != 50 {
		t.Fatalf("expected miner reward 50, got %d", e.Balance(miner))
	}
	if e.Height() != 1 {
		t.Fatalf("expected height 1, got %d", e.Height())
	}
}

func TestMineBlockEmptyMempoolFails(t *testing.T) {
	e := newPoWEngine(t)
	if _, err := e.MineBlock(context.Background(), "miner", nil); err == nil {
		t.Fatal("expected an error mining with an empty mempool")
	}
}

func TestContractDeployAndCallFlow(t *testing.T) {
	e := newPoWEngine(t)
	alice, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	seed, err := NewTransfer(GenesisReceiver, alice.Address(), 1000, "seed")
	if err != nil {
		t.Fatalf("NewTransfer: %v", err)
	}
	if err := e.AddTransaction(seed); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if _, err := e.MineBlock(context.Background(), alice.Address(), nil); err != nil {
		t.Fatalf("MineBlock: %v", err)
	}

	code := []byte("PUSH 10\nPUSH 32\nADD\nSTORE total\n")
	deploy, err := NewContractDeploy(alice.Address(), code, 1000, 1)
	if err != nil {
		t.Fatalf("NewContractDeploy: %v", err)
	}
	if err := deploy.Sign(alice); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := e.AddTransaction(deploy); err != nil {
		t.Fatalf("AddTransaction(deploy): %v", err)
	}
	if _, err := e.MineBlock(context.Background(), alice.Address(), nil); err != nil {
		t.Fatalf("MineBlock: %v", err)
	}

	addr, err := ContractAddress(alice.Address(), code, deploy.Timestamp)
	if err != nil {
		t.Fatalf("ContractAddress: %v", err)
	}
	contract, ok := e.Contract(addr)
	if !ok {
		t.Fatal("expected the deployed contract to be retrievable")
	}
	if contract.Storage["total"] != "42" {
		t.Fatalf("expected storage[total]=42, got %q", contract.Storage["total"])
	}

	call, err := NewContractCall(alice.Address(), addr, []byte("op=noop"), 0, 50, 1)
	if err != nil {
		t.Fatalf("NewContractCall: %v", err)
	}
	if err := e.AddTransaction(call); err != nil {
		t.Fatalf("AddTransaction(call): %v", err)
	}
	if _, err := e.MineBlock(context.Background(), alice.Address(), nil); err != nil {
		t.Fatalf("MineBlock: %v", err)
	}
}

func TestValidateChainDetectsTamperedBlock(t *testing.T) {
	e := newPoWEngine(t)
	tx, err := NewTransfer(GenesisReceiver, "bob", 10, "")
	if err != nil {
		t.Fatalf("NewTransfer: %v", err)
	}
	if err := e.AddTransaction(tx); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if _, err := e.MineBlock(context.Background(), "miner", nil); err != nil {
		t.Fatalf("MineBlock: %v", err)
	}
	if err := e.ValidateChain(); err != nil {
		t.Fatalf("expected a healthy chain to validate, got %v", err)
	}
	e.chain[1].Nonce += 1
	if err := e.ValidateChain(); err == nil {
		t.Fatal("expected ValidateChain to detect a tampered nonce")
	}
}

func TestRollbackToSnapshot(t *testing.T) {
	e := newPoWEngine(t)
	tx, err := NewTransfer(GenesisReceiver, "bob", 10, "")
	if err != nil {
		t.Fatalf("NewTransfer: %v", err)
	}
	if err := e.AddTransaction(tx); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if _, err := e.MineBlock(context.Background(), "miner", nil); err != nil {
		t.Fatalf("MineBlock: %v", err)
	}
	if e.Height() != 1 {
		t.Fatalf("expected height 1 before rollback, got %d", e.Height())
	}
	if err := e.RollbackToSnapshot(0); err != nil {
		t.Fatalf("RollbackToSnapshot: %v", err)
	}
	if e.Height() != 0 {
		t.Fatalf("expected height 0 after rollback, got %d", e.Height())
	}
	if e.Balance("bob") != 0 {
		t.Fatalf("expected bob's balance to be rolled back to 0, got %d", e.Balance("bob"))
	}
}

func TestMineBlockUnderPoSRequiresMatchingSigner(t *testing.T) {
	e, err := NewEngine(EngineConfig{
		Consensus:   ConsensusPoS,
		PoS:         PoSConfig{MinStake: 100, MaxValidators: 10, BaseReward: 10, SlashingRate: 0.1},
		BlockReward: 50,
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	validator, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	if err := e.PoS().RegisterValidator(validator.PublicKey, validator.Address(), 1000); err != nil {
		t.Fatalf("RegisterValidator: %v", err)
	}
	tx, err := NewTransfer(GenesisReceiver, "bob", 10, "")
	if err != nil {
		t.Fatalf("NewTransfer: %v", err)
	}
	if err := e.AddTransaction(tx); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	wrongSigner, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	if _, err := e.MineBlock(context.Background(), "miner", wrongSigner); err == nil {
		t.Fatal("expected an error when posSigner does not match the selected validator")
	}
	if _, err := e.MineBlock(context.Background(), "miner", validator); err != nil {
		t.Fatalf("MineBlock with the correct validator signer: %v", err)
	}
}

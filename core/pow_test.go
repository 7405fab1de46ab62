package core

import (
	"context"
	"testing"
)

func TestPoWMinerFindsValidNonce(t *testing.T) {
	miner := NewPoWMiner(2, 5_000_000)
	nonce, hash, err := miner.Mine(context.Background(), []byte("block-data"), ZeroHash)
	if err != nil {
		t.Fatalf("Mine: %v", err)
	}
	if !miner.ValidateHash(hash) {
		t.Fatalf("mined hash %s does not satisfy difficulty %d", hash, miner.Difficulty)
	}
	_ = nonce
}

func TestPoWMinerRespectsMaxAttempts(t *testing.T) {
	miner := NewPoWMiner(64, 10) // unreachable difficulty within 10 attempts
	_, _, err := miner.Mine(context.Background(), []byte("x"), ZeroHash)
	if err == nil {
		t.Fatal("expected MiningLimitExceeded for an unreachable difficulty")
	}
	if kind, _ := KindOf(err); kind != KindMiningLimitExceeded {
		t.Fatalf("unexpected error kind %v", kind)
	}
}

func TestPoWMinerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	miner := NewPoWMiner(64, 1_000_000)
	_, _, err := miner.Mine(ctx, []byte("x"), ZeroHash)
	if err == nil {
		t.Fatal("expected an error from a pre-cancelled context")
	}
}

func TestAdjustDifficulty(t *testing.T) {
	if got := adjustDifficulty(5, 10, 2); got != 6 {
		t.Fatalf("expected difficulty to rise to 6 when blocks come in too fast, got %d", got)
	}
	if got := adjustDifficulty(5, 10, 25); got != 4 {
		t.Fatalf("expected difficulty to fall to 4 when blocks come in too slow, got %d", got)
	}
	if got := adjustDifficulty(1, 10, 25); got != 1 {
		t.Fatalf("difficulty should floor at 1, got %d", got)
	}
	if got := adjustDifficulty(5, 10, 10); got != 5 {
		t.Fatalf("expected difficulty unchanged at target pace, got %d", got)
	}
}

func TestAverageInterBlockTime(t *testing.T) {
	if got := AverageInterBlockTime([]int64{100, 110, 125}); got != 12.5 {
		t.Fatalf("expected average 12.5, got %v", got)
	}
	if got := AverageInterBlockTime([]int64{100}); got != 0 {
		t.Fatalf("expected 0 for a single timestamp, got %v", got)
	}
}

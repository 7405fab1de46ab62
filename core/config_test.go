package core

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultLedgerConfigToEngineConfig(t *testing.T) {
	cfg := DefaultLedgerConfig()
	ec := cfg.ToEngineConfig()
	if ec.Consensus != ConsensusPoW {
		t.Fatalf("expected default consensus PoW, got %s", ec.Consensus)
	}
	if ec.Difficulty != cfg.PoW.Difficulty || ec.MaxAttempts != cfg.PoW.MaxAttempts {
		t.Fatalf("expected PoW fields to carry over, got %+v", ec)
	}
	if ec.PoS.MinStake != cfg.PoS.MinStake {
		t.Fatalf("expected PoS.MinStake to carry over, got %d", ec.PoS.MinStake)
	}
	if ec.BlockReward != cfg.BlockReward || ec.MaxSnapshots != cfg.MaxSnapshots {
		t.Fatalf("expected BlockReward/MaxSnapshots to carry over, got %+v", ec)
	}
}

func TestLoadLedgerConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vanta.yaml")
	yamlDoc := "consensus: pos\npos:\n  min_stake: 5000\n  max_validators: 7\nblock_reward: 25\n"
	if err := os.WriteFile(path, []byte(yamlDoc), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := LoadLedgerConfig(path)
	if err != nil {
		t.Fatalf("LoadLedgerConfig: %v", err)
	}
	if cfg.Consensus != "pos" {
		t.Fatalf("expected consensus override 'pos', got %q", cfg.Consensus)
	}
	if cfg.PoS.MinStake != 5000 || cfg.PoS.MaxValidators != 7 {
		t.Fatalf("expected PoS overrides to apply, got %+v", cfg.PoS)
	}
	if cfg.BlockReward != 25 {
		t.Fatalf("expected block_reward override, got %d", cfg.BlockReward)
	}
	if cfg.Bridge.MaxTransferAmount != DefaultLedgerConfig().Bridge.MaxTransferAmount {
		t.Fatalf("expected untouched fields to retain their defaults")
	}
	ec := cfg.ToEngineConfig()
	if ec.Consensus != ConsensusPoS {
		t.Fatalf("expected EngineConfig consensus PoS after override, got %s", ec.Consensus)
	}
}

func TestLoadLedgerConfigMissingFile(t *testing.T) {
	if _, err := LoadLedgerConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml")); err == nil {
		t.Fatal("expected an error loading a nonexistent config file")
	}
}

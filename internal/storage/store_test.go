package storage

import (
	"path/filepath"
	"testing"

	"github.com/vantachain/vanta/core"
)

func openTestStore(t *testing.T) *LevelDBStore {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "leveldb")
	s, err := OpenLevelDBStore(dir, nil)
	if err != nil {
		t.Fatalf("OpenLevelDBStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndLoadBlockchainRoundTrip(t *testing.T) {
	s := openTestStore(t)
	genesis, err := core.NewGenesisBlock()
	if err != nil {
		t.Fatalf("NewGenesisBlock: %v", err)
	}
	if err := s.SaveBlockchain([]core.Block{*genesis}); err != nil {
		t.Fatalf("SaveBlockchain: %v", err)
	}
	got, err := s.LoadBlockchain()
	if err != nil {
		t.Fatalf("LoadBlockchain: %v", err)
	}
	if len(got) != 1 || got[0].Hash != genesis.Hash {
		t.Fatalf("expected the round-tripped chain to match, got %+v", got)
	}
}

func TestLoadBlockchainNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.LoadBlockchain(); err == nil {
		t.Fatal("expected an error loading a blockchain that was never saved")
	}
}

func TestSaveAndLoadWalletRoundTrip(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveWallet("alice", []byte("encrypted-wallet-blob")); err != nil {
		t.Fatalf("SaveWallet: %v", err)
	}
	got, err := s.LoadWallet("alice")
	if err != nil {
		t.Fatalf("LoadWallet: %v", err)
	}
	if string(got) != "encrypted-wallet-blob" {
		t.Fatalf("unexpected wallet record: %q", got)
	}
}

func TestLoadWalletNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.LoadWallet("nobody"); err == nil {
		t.Fatal("expected an error loading a wallet that doesn't exist")
	}
}

func TestListWallets(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveWallet("alice", []byte("a")); err != nil {
		t.Fatalf("SaveWallet(alice): %v", err)
	}
	if err := s.SaveWallet("bob", []byte("b")); err != nil {
		t.Fatalf("SaveWallet(bob): %v", err)
	}
	ids, err := s.ListWallets()
	if err != nil {
		t.Fatalf("ListWallets: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 wallet ids, got %d: %v", len(ids), ids)
	}
	seen := map[string]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	if !seen["alice"] || !seen["bob"] {
		t.Fatalf("expected to list both alice and bob, got %v", ids)
	}
}

package walletstore

import (
	"path/filepath"
	"testing"

	"github.com/vantachain/vanta/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "leveldb")
	backend, err := storage.OpenLevelDBStore(dir, nil)
	if err != nil {
		t.Fatalf("OpenLevelDBStore: %v", err)
	}
	t.Cleanup(func() { _ = backend.Close() })
	return New(backend)
}

func TestCreateAndUnlockRoundTrip(t *testing.T) {
	s := newTestStore(t)
	kp, rec, err := s.Create("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	unlocked, err := s.Unlock(rec.ID, "correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if unlocked.Address() != kp.Address() {
		t.Fatalf("expected unlocked address %s, got %s", kp.Address(), unlocked.Address())
	}
}

func TestUnlockRejectsWrongPassword(t *testing.T) {
	s := newTestStore(t)
	_, rec, err := s.Create("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Unlock(rec.ID, "wrong-password"); err == nil {
		t.Fatal("expected an error unlocking with the wrong password")
	}
}

func TestListWalletsReturnsCreatedIDs(t *testing.T) {
	s := newTestStore(t)
	_, rec1, err := s.Create("password-one")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, rec2, err := s.Create("password-two")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	ids, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	seen := map[string]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	if !seen[rec1.ID] || !seen[rec2.ID] {
		t.Fatalf("expected both created wallet ids in %v", ids)
	}
}

func TestCreateWithMnemonicRejectsInvalidEntropyBits(t *testing.T) {
	s := newTestStore(t)
	if _, _, _, err := s.CreateWithMnemonic(100, "", "password"); err == nil {
		t.Fatal("expected an error for an entropy bit count other than 128 or 256")
	}
}

func TestCreateWithMnemonicAndRecoverYieldSameAddress(t *testing.T) {
	s := newTestStore(t)
	kp, _, mnemonic, err := s.CreateWithMnemonic(128, "my-passphrase", "password")
	if err != nil {
		t.Fatalf("CreateWithMnemonic: %v", err)
	}
	recovered, _, err := s.RecoverFromMnemonic(mnemonic, "my-passphrase", "another-password")
	if err != nil {
		t.Fatalf("RecoverFromMnemonic: %v", err)
	}
	if recovered.Address() != kp.Address() {
		t.Fatalf("expected recovered address %s to match original %s", recovered.Address(), kp.Address())
	}
}

func TestRecoverFromMnemonicRejectsInvalidChecksum(t *testing.T) {
	s := newTestStore(t)
	invalid := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon"
	if _, _, err := s.RecoverFromMnemonic(invalid, "", "password"); err == nil {
		t.Fatal("expected an error recovering from an invalid mnemonic checksum")
	}
}

func TestRecoverFromMnemonicDifferentPassphraseYieldsDifferentAddress(t *testing.T) {
	s := newTestStore(t)
	_, _, mnemonic, err := s.CreateWithMnemonic(128, "passphrase-a", "password")
	if err != nil {
		t.Fatalf("CreateWithMnemonic: %v", err)
	}
	withA, _, err := s.RecoverFromMnemonic(mnemonic, "passphrase-a", "password")
	if err != nil {
		t.Fatalf("RecoverFromMnemonic(passphrase-a): %v", err)
	}
	withB, _, err := s.RecoverFromMnemonic(mnemonic, "passphrase-b", "password")
	if err != nil {
		t.Fatalf("RecoverFromMnemonic(passphrase-b): %v", err)
	}
	if withA.Address() == withB.Address() {
		t.Fatal("expected different BIP-39 passphrases to derive different addresses")
	}
}

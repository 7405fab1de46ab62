package core

import (
	"bytes"
	"testing"
)

func TestGenerateKeypairSignVerify(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	msg := []byte("vanta payload")
	sig := kp.Sign(msg)
	if !sig.Verify(msg) {
		t.Fatal("signature does not verify over the signed message")
	}
	if sig.Verify([]byte("tampered")) {
		t.Fatal("signature verified over a different message")
	}
}

func TestDeriveAddressDeterministic(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	a1 := DeriveAddress(kp.PublicKey)
	a2 := DeriveAddress(kp.PublicKey)
	if a1 != a2 {
		t.Fatalf("address derivation is not deterministic: %s != %s", a1, a2)
	}
	if !a1.IsHex() {
		t.Fatalf("derived address %q is not 40-hex-char", a1)
	}
}

func TestDeriveKeyFromPasswordRejectsWeakInputs(t *testing.T) {
	if _, err := DeriveKeyFromPassword("", make([]byte, 32)); err == nil {
		t.Fatal("expected error for empty password")
	}
	if _, err := DeriveKeyFromPassword("hunter2", make([]byte, 8)); err == nil {
		t.Fatal("expected error for short salt")
	}
	key, err := DeriveKeyFromPassword("hunter2", make([]byte, 32))
	if err != nil {
		t.Fatalf("DeriveKeyFromPassword: %v", err)
	}
	if len(key) != argon2KeyLen {
		t.Fatalf("expected %d-byte key, got %d", argon2KeyLen, len(key))
	}
}

func TestKeypairFromSeedDeterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{0x42}, 32)
	kp1, err := KeypairFromSeed(seed)
	if err != nil {
		t.Fatalf("KeypairFromSeed: %v", err)
	}
	kp2, err := KeypairFromSeed(seed)
	if err != nil {
		t.Fatalf("KeypairFromSeed: %v", err)
	}
	if kp1.Address() != kp2.Address() {
		t.Fatal("same seed produced different addresses")
	}
	if _, err := KeypairFromSeed(seed[:16]); err == nil {
		t.Fatal("expected error for undersized seed")
	}
}

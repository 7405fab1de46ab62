package core

import (
	"testing"
	"time"
)

func newTestBridge(t *testing.T, validators ...string) (*Bridge, map[string]*Keypair) {
	t.Helper()
	keys := make(map[string]*Keypair, len(validators))
	vs := make(map[string]TrustedValidator, len(validators))
	for _, id := range validators {
		kp, err := GenerateKeypair()
		if err != nil {
			t.Fatalf("GenerateKeypair: %v", err)
		}
		keys[id] = kp
		vs[id] = TrustedValidator{ID: id, PublicKey: kp.PublicKey}
	}
	b := NewBridge(BridgeConfig{
		MaxTransferAmount:  1000,
		DailyTransferLimit: 10000,
		MinConfirmations:   1,
		ProveTimeout:       time.Hour,
		Validators:         vs,
	})
	return b, keys
}

func TestBridgeInitiateRejectsOversizedAmount(t *testing.T) {
	b, _ := newTestBridge(t, "v1")
	sender, _ := GenerateKeypair()
	req := []byte("transfer-request")
	sig := sender.Sign(req)
	if _, err := b.Initiate("chainA", "chainB", sender.Address(), "receiver", 2000, "token", sig, req); err == nil {
		t.Fatal("expected an error for a transfer exceeding the max amount")
	}
}

func TestBridgeInitiateRejectsBadSignature(t *testing.T) {
	b, _ := newTestBridge(t, "v1")
	sender, _ := GenerateKeypair()
	other, _ := GenerateKeypair()
	req := []byte("transfer-request")
	badSig := other.Sign(req)
	badSig.PublicKey = sender.PublicKey
	if _, err := b.Initiate("chainA", "chainB", sender.Address(), "receiver", 100, "token", badSig, req); err == nil {
		t.Fatal("expected an error for a signature that does not verify")
	}
}

func TestBridgeFullLifecycleSingleValidator(t *testing.T) {
	b, keys := newTestBridge(t, "v1")
	sender, _ := GenerateKeypair()
	req := []byte("transfer-request")
	sig := sender.Sign(req)
	xfer, err := b.Initiate("chainA", "chainB", sender.Address(), "receiver", 100, "token", sig, req)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if xfer.Status != BridgePending {
		t.Fatalf("expected Pending status, got %s", xfer.Status)
	}
	if err := b.Lock(xfer.ID); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	proofSig := keys["v1"].Sign([]byte(xfer.ID))
	if err := b.Prove(xfer.ID, "v1", proofSig); err != nil {
		t.Fatalf("Prove: %v", err)
	}
	got, ok := b.Transfer(xfer.ID)
	if !ok {
		t.Fatal("expected the transfer to exist")
	}
	if got.Status != BridgeProven {
		t.Fatalf("expected Proven status after the sole validator signs, got %s", got.Status)
	}
	if err := b.Release(xfer.ID); err != nil {
		t.Fatalf("Release: %v", err)
	}
	got, _ = b.Transfer(xfer.ID)
	if got.Status != BridgeReleased {
		t.Fatalf("expected Released status, got %s", got.Status)
	}
}

func TestBridgeProveRequiresMajority(t *testing.T) {
	b, keys := newTestBridge(t, "v1", "v2", "v3")
	sender, _ := GenerateKeypair()
	req := []byte("transfer-request")
	sig := sender.Sign(req)
	xfer, err := b.Initiate("chainA", "chainB", sender.Address(), "receiver", 100, "token", sig, req)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if err := b.Lock(xfer.ID); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if err := b.Prove(xfer.ID, "v1", keys["v1"].Sign([]byte(xfer.ID))); err != nil {
		t.Fatalf("Prove(v1): %v", err)
	}
	got, _ := b.Transfer(xfer.ID)
	if got.Status != BridgeLocked {
		t.Fatalf("expected Locked status with only 1/3 approvals, got %s", got.Status)
	}
	if err := b.Prove(xfer.ID, "v2", keys["v2"].Sign([]byte(xfer.ID))); err != nil {
		t.Fatalf("Prove(v2): %v", err)
	}
	got, _ = b.Transfer(xfer.ID)
	if got.Status != BridgeProven {
		t.Fatalf("expected Proven status once a majority of validators sign, got %s", got.Status)
	}
}

func TestBridgeProveRejectsUntrustedValidator(t *testing.T) {
	b, _ := newTestBridge(t, "v1")
	sender, _ := GenerateKeypair()
	req := []byte("transfer-request")
	sig := sender.Sign(req)
	xfer, err := b.Initiate("chainA", "chainB", sender.Address(), "receiver", 100, "token", sig, req)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if err := b.Lock(xfer.ID); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	stranger, _ := GenerateKeypair()
	if err := b.Prove(xfer.ID, "unknown-validator", stranger.Sign([]byte(xfer.ID))); err == nil {
		t.Fatal("expected an error proving with an untrusted validator id")
	}
}

func TestBridgeReleaseRequiresProven(t *testing.T) {
	b, _ := newTestBridge(t, "v1")
	sender, _ := GenerateKeypair()
	req := []byte("transfer-request")
	sig := sender.Sign(req)
	xfer, err := b.Initiate("chainA", "chainB", sender.Address(), "receiver", 100, "token", sig, req)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if err := b.Release(xfer.ID); err == nil {
		t.Fatal("expected an error releasing a transfer that has not been locked and proven")
	}
}

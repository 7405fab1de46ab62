package core

import (
	"testing"
	"time"
)

func openTestChannel(t *testing.T) (*ChannelEngine, *Channel, *Keypair, *Keypair) {
	t.Helper()
	e := NewChannelEngine()
	alice, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	bob, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	ch, err := e.Open(
		[]Address{alice.Address(), bob.Address()},
		map[Address][]byte{alice.Address(): alice.PublicKey, bob.Address(): bob.PublicKey},
		map[Address]uint64{alice.Address(): 100, bob.Address(): 0},
		time.Hour,
		200,
	)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return e, ch, alice, bob
}

func TestChannelOpenRejectsTooFewParticipants(t *testing.T) {
	e := NewChannelEngine()
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	_, err = e.Open([]Address{kp.Address()}, map[Address][]byte{kp.Address(): kp.PublicKey}, map[Address]uint64{kp.Address(): 10}, time.Hour, 100)
	if err == nil {
		t.Fatal("expected an error opening a channel with a single participant")
	}
}

func TestChannelOpenRejectsBalancesOverMaxTotal(t *testing.T) {
	e := NewChannelEngine()
	a, _ := GenerateKeypair()
	b, _ := GenerateKeypair()
	_, err := e.Open(
		[]Address{a.Address(), b.Address()},
		map[Address][]byte{a.Address(): a.PublicKey, b.Address(): b.PublicKey},
		map[Address]uint64{a.Address(): 90, b.Address(): 90},
		time.Hour, 100,
	)
	if err == nil {
		t.Fatal("expected an error when initial balances exceed max_total")
	}
}

func TestChannelUpdateHappyPath(t *testing.T) {
	e, ch, alice, bob := openTestChannel(t)
	newBalances := map[Address]uint64{alice.Address(): 60, bob.Address(): 40}
	msg := ChannelUpdateMessage(ch.ID, 1, newBalances)
	upd := ChannelUpdate{
		NewNonce:    1,
		NewBalances: newBalances,
		Signatures: map[Address]Signature{
			alice.Address(): alice.Sign(msg),
			bob.Address():   bob.Sign(msg),
		},
	}
	if err := e.Update(ch.ID, upd); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, ok := e.Get(ch.ID)
	if !ok {
		t.Fatal("expected channel to still exist")
	}
	if got.Nonce != 1 || got.Balances[alice.Address()] != 60 || got.Balances[bob.Address()] != 40 {
		t.Fatalf("unexpected channel state after update: %+v", got)
	}
}

func TestChannelUpdateRejectsStaleNonce(t *testing.T) {
	e, ch, alice, bob := openTestChannel(t)
	newBalances := map[Address]uint64{alice.Address(): 60, bob.Address(): 40}
	msg := ChannelUpdateMessage(ch.ID, 0, newBalances)
	upd := ChannelUpdate{
		NewNonce:    0,
		NewBalances: newBalances,
		Signatures: map[Address]Signature{
			alice.Address(): alice.Sign(msg),
			bob.Address():   bob.Sign(msg),
		},
	}
	err := e.Update(ch.ID, upd)
	if err == nil {
		t.Fatal("expected a stale-nonce rejection for nonce 0 against current nonce 0")
	}
	if kind, _ := KindOf(err); kind != KindStaleNonce {
		t.Fatalf("unexpected error kind %v", kind)
	}
}

func TestChannelUpdateRejectsMissingSignature(t *testing.T) {
	e, ch, alice, bob := openTestChannel(t)
	newBalances := map[Address]uint64{alice.Address(): 60, bob.Address(): 40}
	msg := ChannelUpdateMessage(ch.ID, 1, newBalances)
	upd := ChannelUpdate{
		NewNonce:    1,
		NewBalances: newBalances,
		Signatures: map[Address]Signature{
			alice.Address(): alice.Sign(msg),
		},
	}
	if err := e.Update(ch.ID, upd); err == nil {
		t.Fatal("expected an error for a missing participant signature")
	}
}

func TestChannelUpdateRejectsBalanceSumMismatch(t *testing.T) {
	e, ch, alice, bob := openTestChannel(t)
	newBalances := map[Address]uint64{alice.Address(): 60, bob.Address(): 50} // sums to 110, not 100
	msg := ChannelUpdateMessage(ch.ID, 1, newBalances)
	upd := ChannelUpdate{
		NewNonce:    1,
		NewBalances: newBalances,
		Signatures: map[Address]Signature{
			alice.Address(): alice.Sign(msg),
			bob.Address():   bob.Sign(msg),
		},
	}
	if err := e.Update(ch.ID, upd); err == nil {
		t.Fatal("expected an error when the updated balances change the total")
	}
}

func TestChannelCloseCooperative(t *testing.T) {
	e, ch, alice, bob := openTestChannel(t)
	newBalances := map[Address]uint64{alice.Address(): 0, bob.Address(): 100}
	msg := ChannelUpdateMessage(ch.ID, 1, newBalances)
	upd := ChannelUpdate{
		NewNonce:    1,
		NewBalances: newBalances,
		Signatures: map[Address]Signature{
			alice.Address(): alice.Sign(msg),
			bob.Address():   bob.Sign(msg),
		},
	}
	final, err := e.Close(ch.ID, upd)
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if final[bob.Address()] != 100 {
		t.Fatalf("expected bob to receive the full balance, got %d", final[bob.Address()])
	}
	got, _ := e.Get(ch.ID)
	if got.Status != ChannelClosed {
		t.Fatalf("expected channel status Closed, got %s", got.Status)
	}
}

func TestResolveDisputeRejectsBeforeWindowElapsesFromDispute(t *testing.T) {
	e, ch, alice, bob := openTestChannel(t)
	newBalances := map[Address]uint64{alice.Address(): 60, bob.Address(): 40}
	msg := ChannelUpdateMessage(ch.ID, 1, newBalances)
	upd := ChannelUpdate{
		NewNonce:    1,
		NewBalances: newBalances,
		Signatures: map[Address]Signature{
			alice.Address(): alice.Sign(msg),
			bob.Address():   bob.Sign(msg),
		},
	}
	if err := e.Dispute(ch.ID, upd); err != nil {
		t.Fatalf("Dispute: %v", err)
	}
	// The channel was opened well before this dispute was raised; if the
	// window were (incorrectly) measured from OpenedAt instead of
	// DisputedAt, resolving immediately after disputing would succeed here.
	if err := e.ResolveDispute(ch.ID); err == nil {
		t.Fatal("expected ResolveDispute to reject before the dispute window elapses")
	}
}

func TestResolveDisputeAdoptsHighestNonceAfterWindow(t *testing.T) {
	e := NewChannelEngine()
	alice, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	bob, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	ch, err := e.Open(
		[]Address{alice.Address(), bob.Address()},
		map[Address][]byte{alice.Address(): alice.PublicKey, bob.Address(): bob.PublicKey},
		map[Address]uint64{alice.Address(): 100, bob.Address(): 0},
		10*time.Millisecond,
		200,
	)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	newBalances := map[Address]uint64{alice.Address(): 30, bob.Address(): 70}
	msg := ChannelUpdateMessage(ch.ID, 1, newBalances)
	upd := ChannelUpdate{
		NewNonce:    1,
		NewBalances: newBalances,
		Signatures: map[Address]Signature{
			alice.Address(): alice.Sign(msg),
			bob.Address():   bob.Sign(msg),
		},
	}
	if err := e.Dispute(ch.ID, upd); err != nil {
		t.Fatalf("Dispute: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if err := e.ResolveDispute(ch.ID); err != nil {
		t.Fatalf("ResolveDispute: %v", err)
	}
	got, _ := e.Get(ch.ID)
	if got.Status != ChannelClosed {
		t.Fatalf("expected channel status Closed, got %s", got.Status)
	}
	if got.Nonce != 1 || got.Balances[alice.Address()] != 30 || got.Balances[bob.Address()] != 70 {
		t.Fatalf("unexpected channel state after resolving dispute: %+v", got)
	}
}

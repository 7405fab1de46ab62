package core

import "testing"

func newTestValidatorKeypair(t *testing.T) *Keypair {
	t.Helper()
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	return kp
}

func TestRegisterValidatorEnforcesMinStakeAndCapacity(t *testing.T) {
	e := NewPoSEngine(PoSConfig{MinStake: 100, MaxValidators: 1, BaseReward: 10, SlashingRate: 0.1})
	kp := newTestValidatorKeypair(t)
	if err := e.RegisterValidator(kp.PublicKey, kp.Address(), 50); err == nil {
		t.Fatal("expected error for stake below minimum")
	}
	if err := e.RegisterValidator(kp.PublicKey, kp.Address(), 200); err != nil {
		t.Fatalf("RegisterValidator: %v", err)
	}
	kp2 := newTestValidatorKeypair(t)
	if err := e.RegisterValidator(kp2.PublicKey, kp2.Address(), 200); err == nil {
		t.Fatal("expected error once validator set is full")
	}
}

func TestSelectValidatorIsDeterministic(t *testing.T) {
	e := NewPoSEngine(PoSConfig{MinStake: 1, MaxValidators: 10, BaseReward: 10, SlashingRate: 0.1})
	kp1 := newTestValidatorKeypair(t)
	kp2 := newTestValidatorKeypair(t)
	if err := e.RegisterValidator(kp1.PublicKey, kp1.Address(), 100); err != nil {
		t.Fatalf("RegisterValidator: %v", err)
	}
	if err := e.RegisterValidator(kp2.PublicKey, kp2.Address(), 300); err != nil {
		t.Fatalf("RegisterValidator: %v", err)
	}
	a, err := e.SelectValidator(10, Hash("parent-hash"))
	if err != nil {
		t.Fatalf("SelectValidator: %v", err)
	}
	b, err := e.SelectValidator(10, Hash("parent-hash"))
	if err != nil {
		t.Fatalf("SelectValidator: %v", err)
	}
	if a != b {
		t.Fatalf("selection must be deterministic for the same (index, parent hash): got %s then %s", a, b)
	}
}

func TestSelectValidatorNoActiveValidators(t *testing.T) {
	e := NewPoSEngine(PoSConfig{MinStake: 1, MaxValidators: 10, BaseReward: 10, SlashingRate: 0.1})
	if _, err := e.SelectValidator(1, ZeroHash); err == nil {
		t.Fatal("expected error when no validators are registered")
	}
}

func TestDoubleSignSlashesValidator(t *testing.T) {
	e := NewPoSEngine(PoSConfig{MinStake: 100, MaxValidators: 10, BaseReward: 10, SlashingRate: 0.5})
	kp := newTestValidatorKeypair(t)
	if err := e.RegisterValidator(kp.PublicKey, kp.Address(), 1000); err != nil {
		t.Fatalf("RegisterValidator: %v", err)
	}
	if err := e.RecordSignature(5, kp.Address(), Hash("hash-a")); err != nil {
		t.Fatalf("first signature should not be slashed: %v", err)
	}
	if err := e.RecordSignature(5, kp.Address(), Hash("hash-b")); err == nil {
		t.Fatal("expected a slashing error for signing two different hashes at the same index")
	}
	v, ok := e.Validator(kp.Address())
	if !ok {
		t.Fatal("validator should still be registered after slashing")
	}
	if v.Stake != 500 {
		t.Fatalf("expected stake halved to 500 after a 0.5 slashing rate, got %d", v.Stake)
	}
	if len(v.SlashHistory) != 1 {
		t.Fatalf("expected one slash event, got %d", len(v.SlashHistory))
	}
}

func TestSlashBelowMinStakeDeactivatesValidator(t *testing.T) {
	e := NewPoSEngine(PoSConfig{MinStake: 800, MaxValidators: 10, BaseReward: 10, SlashingRate: 0.5})
	kp := newTestValidatorKeypair(t)
	if err := e.RegisterValidator(kp.PublicKey, kp.Address(), 1000); err != nil {
		t.Fatalf("RegisterValidator: %v", err)
	}
	if err := e.Slash(1, kp.Address(), "test slash"); err != nil {
		t.Fatalf("Slash: %v", err)
	}
	v, _ := e.Validator(kp.Address())
	if v.Active {
		t.Fatal("validator should be deactivated once stake falls below min_stake")
	}
}

func TestProcessStakingTransactionUnstakeBelowMinimumRejected(t *testing.T) {
	e := NewPoSEngine(PoSConfig{MinStake: 500, MaxValidators: 10, BaseReward: 10, SlashingRate: 0.1})
	kp := newTestValidatorKeypair(t)
	if err := e.RegisterValidator(kp.PublicKey, kp.Address(), 1000); err != nil {
		t.Fatalf("RegisterValidator: %v", err)
	}
	tx, err := NewStaking(kp.Address(), kp.Address(), 600, StakeOpUnstake)
	if err != nil {
		t.Fatalf("NewStaking: %v", err)
	}
	if err := e.ProcessStakingTransaction(tx); err == nil {
		t.Fatal("expected error: unstaking 600 of 1000 would leave 400, below min_stake 500")
	}
	fullUnstake, err := NewStaking(kp.Address(), kp.Address(), 1000, StakeOpUnstake)
	if err != nil {
		t.Fatalf("NewStaking: %v", err)
	}
	if err := e.ProcessStakingTransaction(fullUnstake); err != nil {
		t.Fatalf("full unstake to zero should be allowed: %v", err)
	}
	v, _ := e.Validator(kp.Address())
	if v.Stake != 0 || v.Active {
		t.Fatal("validator should be inactive with zero stake after a full unstake")
	}
}

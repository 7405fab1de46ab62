package core

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
	"sort"
	"sync"
)

// SlashEvent records one slashing incident against a validator (spec §4.6;
// teacher precedent: core/stake_penalty.go records discrete penalty events
// rather than only decrementing a running total).
type SlashEvent struct {
	BlockIndex uint64 `json:"block_index"`
	Amount     uint64 `json:"amount"`
	Reason     string `json:"reason"`
	Time       int64  `json:"time"`
}

// Validator is a PoS participant (spec §3).
type Validator struct {
	Address      Address      `json:"address"`
	PublicKey    []byte       `json:"public_key"`
	Stake        uint64       `json:"stake"`
	Performance  float64      `json:"performance"`
	SlashHistory []SlashEvent `json:"slash_history"`
	Active       bool         `json:"active"`
}

// PoSEngine maintains the validator registry, stake accounting, and
// deterministic validator selection of spec §4.6.
type PoSEngine struct {
	mu            sync.RWMutex
	validators    map[Address]*Validator
	minStake      uint64
	maxValidators int
	baseReward    uint64
	slashingRate  float64

	// signedAt tracks, per block index, which hash each validator last
	// signed — a second distinct hash at the same index is a double-sign.
	signedAt map[uint64]map[Address]Hash
}

// PoSConfig groups the PoS engine's tunable parameters (spec §4.6).
type PoSConfig struct {
	MinStake      uint64
	MaxValidators int
	BaseReward    uint64
	SlashingRate  float64
}

// NewPoSEngine constructs a PoS engine with the given parameters.
func NewPoSEngine(cfg PoSConfig) *PoSEngine {
	return &PoSEngine{
		validators:    make(map[Address]*Validator),
		minStake:      cfg.MinStake,
		maxValidators: cfg.MaxValidators,
		baseReward:    cfg.BaseReward,
		slashingRate:  cfg.SlashingRate,
		signedAt:      make(map[uint64]map[Address]Hash),
	}
}

// RegisterValidator admits a new validator, requiring stake >= min_stake
// and the registry to be under max_validators (spec §4.6).
func (e *PoSEngine) RegisterValidator(pubKey ed25519.PublicKey, address Address, stake uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if stake < e.minStake {
		return NewError(KindConsensusError, "stake %d below minimum %d", stake, e.minStake)
	}
	if len(e.validators) >= e.maxValidators {
		return NewError(KindConsensusError, "validator set full (%d/%d)", len(e.validators), e.maxValidators)
	}
	if _, exists := e.validators[address]; exists {
		return NewError(KindInvalidInput, "validator %s already registered", address)
	}
	e.validators[address] = &Validator{
		Address:     address,
		PublicKey:   append([]byte(nil), pubKey...),
		Stake:       stake,
		Performance: 1.0,
		Active:      true,
	}
	return nil
}

// ProcessStakingTransaction applies a Staking transaction to the validator
// registry: stake increases add to the validator's balance; unstake
// decreases are rejected if the remaining stake would be nonzero yet below
// min_stake (spec §4.6).
func (e *PoSEngine) ProcessStakingTransaction(tx *Transaction) error {
	if tx.Type != TxStaking {
		return NewError(KindInvalidInput, "not a staking transaction")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.validators[tx.Validator]
	if !ok {
		return NewError(KindNotFound, "validator %s not registered", tx.Validator)
	}
	switch tx.StakeOp {
	case StakeOpStake:
		v.Stake += tx.Amount
	case StakeOpUnstake:
		if tx.Amount > v.Stake {
			return NewError(KindInsufficientBalance, "cannot unstake %d, validator has %d", tx.Amount, v.Stake)
		}
		remaining := v.Stake - tx.Amount
		if remaining > 0 && remaining < e.minStake {
			return NewError(KindConsensusError, "unstake would leave %d below minimum stake %d", remaining, e.minStake)
		}
		v.Stake = remaining
		if v.Stake == 0 {
			v.Active = false
		}
	default:
		return NewError(KindInvalidInput, "unknown stake operation %q", tx.StakeOp)
	}
	return nil
}

// activeValidatorsLocked returns active validators sorted by address for
// deterministic iteration order. Caller must hold e.mu.
func (e *PoSEngine) activeValidatorsLocked() []*Validator {
	out := make([]*Validator, 0, len(e.validators))
	for _, v := range e.validators {
		if v.Active && v.Stake > 0 {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// SelectValidator deterministically picks the block producer for nextIndex
// given parentHash: a PRNG seeded with hash(parentHash || nextIndex)
// performs weighted sampling over active validators, weighted by
// stake * performance_score (spec §4.6). The same (index, parentHash,
// validator set) always yields the same result.
func (e *PoSEngine) SelectValidator(nextIndex uint64, parentHash Hash) (Address, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	active := e.activeValidatorsLocked()
	if len(active) == 0 {
		return "", NewError(KindConsensusError, "no active validators")
	}

	var idxBuf [8]byte
	binary.BigEndian.PutUint64(idxBuf[:], nextIndex)
	seedInput := append([]byte(parentHash), idxBuf[:]...)
	seedHash := sha256.Sum256(seedInput)
	seed := int64(binary.BigEndian.Uint64(seedHash[:8]))
	rng := rand.New(rand.NewSource(seed))

	weights := make([]float64, len(active))
	var total float64
	for i, v := range active {
		w := float64(v.Stake) * v.Performance
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return active[0].Address, nil
	}
	roll := rng.Float64() * total
	var cum float64
	for i, w := range weights {
		cum += w
		if roll < cum {
			return active[i].Address, nil
		}
	}
	return active[len(active)-1].Address, nil
}

// ValidateBlock checks that validator is active and that signature is a
// valid signature of hash under the validator's registered public key
// (spec §4.6).
func (e *PoSEngine) ValidateBlock(hash Hash, validator Address, signature Signature) bool {
	e.mu.RLock()
	v, ok := e.validators[validator]
	e.mu.RUnlock()
	if !ok || !v.Active {
		return false
	}
	if !ConstantTimeEqual(v.PublicKey, signature.PublicKey) {
		return false
	}
	return signature.Verify([]byte(hash))
}

// RecordSignature registers that validator signed hash for blockIndex. If
// the validator previously signed a *different* hash at the same index, it
// is slashed slashing_rate * stake; if the post-slash stake falls below
// min_stake the validator is evicted (spec §4.6, §4.8).
func (e *PoSEngine) RecordSignature(blockIndex uint64, validator Address, hash Hash) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	byValidator, ok := e.signedAt[blockIndex]
	if !ok {
		byValidator = make(map[Address]Hash)
		e.signedAt[blockIndex] = byValidator
	}
	prev, seen := byValidator[validator]
	byValidator[validator] = hash
	if seen && prev != hash {
		return e.slashLocked(blockIndex, validator, "double-signed block index")
	}
	return nil
}

func (e *PoSEngine) slashLocked(blockIndex uint64, validator Address, reason string) error {
	v, ok := e.validators[validator]
	if !ok {
		return NewError(KindNotFound, "validator %s not registered", validator)
	}
	amount := uint64(float64(v.Stake) * e.slashingRate)
	if amount > v.Stake {
		amount = v.Stake
	}
	v.Stake -= amount
	v.SlashHistory = append(v.SlashHistory, SlashEvent{
		BlockIndex: blockIndex,
		Amount:     amount,
		Reason:     reason,
		Time:       nowUnix(),
	})
	if v.Stake < e.minStake {
		v.Active = false
	}
	return nil
}

// Slash is the exported form of slashLocked for callers (e.g. dispute
// resolution in other subsystems) that detect misbehaviour outside of
// RecordSignature.
func (e *PoSEngine) Slash(blockIndex uint64, validator Address, reason string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.slashLocked(blockIndex, validator, reason)
}

// Validator returns a copy of the validator record for address.
func (e *PoSEngine) Validator(address Address) (Validator, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.validators[address]
	if !ok {
		return Validator{}, false
	}
	return *v, true
}

// Validators returns a snapshot of every registered validator, sorted by
// address.
func (e *PoSEngine) Validators() []Validator {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Validator, 0, len(e.validators))
	for _, v := range e.validators {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// BaseReward returns the configured base block reward for PoS producers.
func (e *PoSEngine) BaseReward() uint64 { return e.baseReward }

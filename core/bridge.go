package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// BridgeTransferStatus discriminates a bridge transfer's lock/prove/release
// lifecycle (spec §3).
type BridgeTransferStatus string

const (
	BridgePending  BridgeTransferStatus = "Pending"
	BridgeLocked   BridgeTransferStatus = "Locked"
	BridgeProven   BridgeTransferStatus = "Proven"
	BridgeReleased BridgeTransferStatus = "Released"
	BridgeFailed   BridgeTransferStatus = "Failed"
)

// BridgeTransfer is one cross-chain asset transfer in progress (spec §3).
type BridgeTransfer struct {
	ID           string
	SourceChain  string
	TargetChain  string
	Sender       Address
	Receiver     Address
	Amount       uint64
	AssetType    string
	Status       BridgeTransferStatus
	Approvals    map[string]bool // validator id -> signed
	InitiatedAt  time.Time
}

// TrustedValidator is a bridge validator permitted to vote on Prove (spec §4.11).
type TrustedValidator struct {
	ID        string
	PublicKey []byte
}

// BridgeConfig groups a bridge's static parameters (spec §4.11).
type BridgeConfig struct {
	MaxTransferAmount  uint64
	DailyTransferLimit uint64
	MinConfirmations   int
	ProveTimeout       time.Duration
	Validators         map[string]TrustedValidator
}

// Bridge implements the lock/prove/release protocol of spec §4.11 (teacher
// precedent: core/cross_chain_bridge.go's registry + per-transfer state
// machine, generalized to the Transfer shape of spec §3).
type Bridge struct {
	mu         sync.RWMutex
	cfg        BridgeConfig
	transfers  map[string]*BridgeTransfer
	dailyTotal map[string]uint64 // "YYYY-MM-DD" -> cumulative volume
}

// NewBridge constructs a bridge with the given configuration.
func NewBridge(cfg BridgeConfig) *Bridge {
	if cfg.Validators == nil {
		cfg.Validators = make(map[string]TrustedValidator)
	}
	return &Bridge{
		cfg:        cfg,
		transfers:  make(map[string]*BridgeTransfer),
		dailyTotal: make(map[string]uint64),
	}
}

func dayKey(t time.Time) string { return t.UTC().Format("2006-01-02") }

// Initiate validates amount/daily-limit/user-signature and creates a
// Pending transfer (spec §4.11 step 1).
func (b *Bridge) Initiate(sourceChain, targetChain string, sender, receiver Address, amount uint64, assetType string, userSig Signature, requestBytes []byte) (*BridgeTransfer, error) {
	if amount > b.cfg.MaxTransferAmount {
		return nil, NewError(KindInvalidInput, "amount %d exceeds max transfer amount %d", amount, b.cfg.MaxTransferAmount)
	}
	if !userSig.Verify(requestBytes) {
		return nil, NewError(KindSignatureInvalid, "user signature does not verify over transfer request")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	today := dayKey(time.Now())
	if b.dailyTotal[today]+amount > b.cfg.DailyTransferLimit {
		return nil, NewError(KindDailyLimitExceeded, "daily transfer limit %d exceeded", b.cfg.DailyTransferLimit)
	}
	b.dailyTotal[today] += amount
	xfer := &BridgeTransfer{
		ID:          uuid.NewString(),
		SourceChain: sourceChain,
		TargetChain: targetChain,
		Sender:      sender,
		Receiver:    receiver,
		Amount:      amount,
		AssetType:   assetType,
		Status:      BridgePending,
		Approvals:   make(map[string]bool),
		InitiatedAt: time.Now(),
	}
	b.transfers[xfer.ID] = xfer
	return xfer, nil
}

// Lock confirms the source chain has immobilized funds (spec §4.11 step 2).
func (b *Bridge) Lock(transferID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	xfer, ok := b.transfers[transferID]
	if !ok {
		return NewError(KindNotFound, "transfer %s not found", transferID)
	}
	if xfer.Status != BridgePending {
		return NewError(KindInvalidInput, "transfer %s is not pending", transferID)
	}
	xfer.Status = BridgeLocked
	return nil
}

// Prove records one trusted validator's signature over the transfer id;
// once a simple majority of configured validators have signed, status
// advances to Proven (spec §4.11 step 3).
func (b *Bridge) Prove(transferID, validatorID string, sig Signature) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	xfer, ok := b.transfers[transferID]
	if !ok {
		return NewError(KindNotFound, "transfer %s not found", transferID)
	}
	if xfer.Status != BridgeLocked {
		return NewError(KindInvalidInput, "transfer %s is not locked", transferID)
	}
	if time.Since(xfer.InitiatedAt) > b.cfg.ProveTimeout {
		xfer.Status = BridgeFailed
		return NewError(KindConsensusError, "prove window has timed out for transfer %s", transferID)
	}
	validator, ok := b.cfg.Validators[validatorID]
	if !ok {
		return NewError(KindAuthError, "validator %s is not trusted", validatorID)
	}
	if !sig.Verify([]byte(transferID)) || string(sig.PublicKey) != string(validator.PublicKey) {
		return NewError(KindSignatureInvalid, "invalid proof signature from validator %s", validatorID)
	}
	xfer.Approvals[validatorID] = true
	if len(xfer.Approvals)*2 > len(b.cfg.Validators) {
		xfer.Status = BridgeProven
	}
	return nil
}

// Release performs the target-chain release once Proven (spec §4.11 step 4).
func (b *Bridge) Release(transferID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	xfer, ok := b.transfers[transferID]
	if !ok {
		return NewError(KindNotFound, "transfer %s not found", transferID)
	}
	if xfer.Status != BridgeProven {
		return NewError(KindInvalidInput, "transfer %s has not been proven", transferID)
	}
	xfer.Status = BridgeReleased
	return nil
}

// CheckProveTimeout transitions a Locked transfer whose prove window has
// elapsed without reaching quorum to Failed, unlocking the source (spec
// §4.11 "Reversal").
func (b *Bridge) CheckProveTimeout(transferID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	xfer, ok := b.transfers[transferID]
	if !ok {
		return NewError(KindNotFound, "transfer %s not found", transferID)
	}
	if xfer.Status == BridgeLocked && time.Since(xfer.InitiatedAt) > b.cfg.ProveTimeout {
		xfer.Status = BridgeFailed
	}
	return nil
}

// Transfer returns a copy of the transfer record with id.
func (b *Bridge) Transfer(id string) (*BridgeTransfer, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	xfer, ok := b.transfers[id]
	if !ok {
		return nil, false
	}
	cp := *xfer
	cp.Approvals = make(map[string]bool, len(xfer.Approvals))
	for k, v := range xfer.Approvals {
		cp.Approvals[k] = v
	}
	return &cp, true
}

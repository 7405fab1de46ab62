package core

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// maxSnapshotsDefault bounds the snapshot ring kept for rollback (spec §4.8:
// "snapshots (bounded ring)").
const maxSnapshotsDefault = 256

// EngineConfig configures a new Engine (spec §4.8, §4.5, §4.6).
type EngineConfig struct {
	Consensus     ConsensusType
	Difficulty    int
	MaxAttempts   uint64
	PoS           PoSConfig
	BlockReward   uint64
	MaxSnapshots  int
}

// Engine is the ledger: chain, mempool, balances, contracts, both consensus
// engines, and a bounded snapshot ring, all guarded by one RWMutex (spec
// §4.8, §5 — mirroring the teacher's single `Ledger.mu` covering the same
// grouping of state in core/ledger.go).
type Engine struct {
	mu sync.RWMutex

	chain             []*Block
	mempool           []*Transaction
	balances          map[Address]uint64
	balanceCommitment [32]byte // incrementally tracked, see setBalanceLocked
	contracts         map[Address]*Contract
	contractMetrics   map[Address]uint64
	snapshots         []*Snapshot
	maxSnapshots      int

	consensusType ConsensusType
	pow           *PoWMiner
	pos           *PoSEngine
	blockReward   uint64

	stateTree *StateTree
	logger    *logrus.Logger
}

// NewEngine constructs an Engine with a genesis block already applied (spec
// §3: "Genesis block: index 0, previous_hash = all-zero, single coinbase
// tx").
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.MaxSnapshots <= 0 {
		cfg.MaxSnapshots = maxSnapshotsDefault
	}
	e := &Engine{
		balances:        make(map[Address]uint64),
		contracts:       make(map[Address]*Contract),
		contractMetrics: make(map[Address]uint64),
		maxSnapshots:    cfg.MaxSnapshots,
		consensusType:   cfg.Consensus,
		pow:             NewPoWMiner(cfg.Difficulty, cfg.MaxAttempts),
		pos:             NewPoSEngine(cfg.PoS),
		blockReward:     cfg.BlockReward,
		stateTree:       NewStateTree(),
		logger:          logrus.StandardLogger(),
	}
	genesis, err := NewGenesisBlock()
	if err != nil {
		return nil, err
	}
	e.setBalanceLocked(GenesisReceiver, GenesisReward)
	e.stateTree.Update(e.balances)
	e.chain = append(e.chain, genesis)
	e.snapshots = append(e.snapshots, &Snapshot{
		BlockIndex:      0,
		Balances:        cloneBalances(e.balances),
		Contracts:       cloneContracts(e.contracts),
		ContractMetrics: cloneMetrics(e.contractMetrics),
		StateRoot:       e.stateTree.Root(),
		Timestamp:       genesis.Timestamp,
	})
	return e, nil
}

// requiredReserve returns the balance a non-COINBASE sender must hold for
// tx to be admissible (spec §4.8 `add_transaction`).
func requiredReserve(tx *Transaction) uint64 {
	switch tx.Type {
	case TxTransfer:
		return tx.Amount
	case TxContractDeploy:
		return tx.GasLimit * tx.GasPrice
	case TxContractCall:
		return tx.Amount + tx.GasLimit*tx.GasPrice
	case TxStaking:
		if tx.StakeOp == StakeOpStake {
			return tx.Amount
		}
		return 0
	default:
		return 0
	}
}

// AddTransaction validates tx and, for non-COINBASE senders, checks their
// balance covers the transaction's reserve before admitting it to the
// mempool (spec §4.8).
func (e *Engine) AddTransaction(tx *Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !tx.IsCoinbase() {
		need := requiredReserve(tx)
		if e.balances[tx.Sender] < need {
			return NewError(KindInsufficientBalance, "sender %s has %d, needs %d", tx.Sender, e.balances[tx.Sender], need)
		}
	}
	e.mempool = append(e.mempool, tx)
	return nil
}

// packMempoolLocked greedily selects mempool transactions (FIFO among equal
// priority, per spec §4.8 ordering rules) until the next one would exceed
// MaxBlockSize once serialized, then appends a COINBASE reward to miner.
// Caller must hold e.mu.
func (e *Engine) packMempoolLocked(miner Address) ([]Transaction, []int) {
	var packed []Transaction
	var indices []int
	size := 0
	for i, tx := range e.mempool {
		enc, err := tx.ToBytes()
		if err != nil {
			continue
		}
		if size+len(enc) > MaxBlockSize {
			break
		}
		size += len(enc)
		packed = append(packed, *tx)
		indices = append(indices, i)
	}
	reward := &Transaction{
		Type:      TxTransfer,
		Sender:    Coinbase,
		Receiver:  miner,
		Amount:    e.blockReward,
		Timestamp: nowUnix(),
	}
	if id, err := reward.computeID(); err == nil {
		reward.ID = id
		packed = append(packed, *reward)
	}
	return packed, indices
}

// MineBlock packs the mempool, assembles a block, seals it under the
// engine's configured consensus, and appends it (spec §4.8 `mine_block`).
// posSigner is required (and must correspond to the PoS-selected validator)
// when the engine runs under ConsensusPoS; it is ignored for PoW.
func (e *Engine) MineBlock(ctx context.Context, minerAddress Address, posSigner *Keypair) (*Block, error) {
	e.mu.Lock()
	if len(e.mempool) == 0 {
		e.mu.Unlock()
		return nil, NewError(KindEmptyState, "mempool is empty")
	}
	packed, indices := e.packMempoolLocked(minerAddress)
	last := e.chain[len(e.chain)-1]
	nextIndex := last.Index + 1
	txIDs := make([]Hash, len(packed))
	for i, tx := range packed {
		txIDs[i] = tx.ID
	}
	blk := &Block{
		Index:         nextIndex,
		PreviousHash:  last.Hash,
		Timestamp:     nowUnix(),
		Transactions:  packed,
		Version:       GenesisVersion,
		ConsensusType: e.consensusType,
		MerkleRoot:    TransactionMerkleRoot(txIDs),
	}
	e.mu.Unlock()

	switch e.consensusType {
	case ConsensusPoW:
		preimage, err := blk.HeaderBytes()
		if err != nil {
			return nil, err
		}
		nonce, hash, err := e.pow.Mine(ctx, preimage, blk.PreviousHash)
		if err != nil {
			return nil, err
		}
		blk.Nonce = nonce
		blk.Hash = hash

	case ConsensusPoS:
		validator, err := e.pos.SelectValidator(nextIndex, blk.PreviousHash)
		if err != nil {
			return nil, err
		}
		hash, err := blk.ComputeHash()
		if err != nil {
			return nil, err
		}
		blk.Hash = hash
		blk.Validator = validator
		if posSigner == nil || posSigner.Address() != validator {
			return nil, NewError(KindConsensusError, "posSigner does not match selected validator %s", validator)
		}
		sig := posSigner.Sign([]byte(hash))
		blk.Signature = sig.Sig
		if err := e.pos.RecordSignature(nextIndex, validator, hash); err != nil {
			return nil, err
		}
		// Reward always credits the selected validator, regardless of
		// minerAddress (spec §9 resolution 3).
		for i := range blk.Transactions {
			if blk.Transactions[i].IsCoinbase() {
				blk.Transactions[i].Receiver = validator
			}
		}

	default:
		return nil, NewError(KindConsensusError, "unknown consensus type %q", e.consensusType)
	}

	if err := e.AddBlock(blk); err != nil {
		return nil, err
	}

	e.mu.Lock()
	remaining := e.mempool[:0]
	committed := make(map[int]bool, len(indices))
	for _, idx := range indices {
		committed[idx] = true
	}
	for i, tx := range e.mempool {
		if !committed[i] {
			remaining = append(remaining, tx)
		}
	}
	e.mempool = remaining
	e.mu.Unlock()

	return blk, nil
}

// AddBlock validates block structurally and under consensus, applies its
// transactions, rebuilds the state tree, and appends it, rolling back on
// any post-application inconsistency (spec §4.8 `add_block`).
func (e *Engine) AddBlock(block *Block) error {
	if err := block.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	last := e.chain[len(e.chain)-1]
	if block.Index != last.Index+1 {
		return NewError(KindInvalidIndex, "block index %d does not follow %d", block.Index, last.Index)
	}
	if block.PreviousHash != last.Hash {
		return NewError(KindInvalidPreviousHash, "block previous_hash does not match chain tip")
	}
	if err := e.checkConsensusLocked(block); err != nil {
		return err
	}

	snap := &Snapshot{
		BlockIndex:      block.Index,
		Balances:        cloneBalances(e.balances),
		Contracts:       cloneContracts(e.contracts),
		ContractMetrics: cloneMetrics(e.contractMetrics),
		StateRoot:       e.stateTree.Root(),
		Timestamp:       block.Timestamp,
	}

	for i := range block.Transactions {
		tx := &block.Transactions[i]
		if !tx.IsCoinbase() && e.balances[tx.Sender] < requiredReserve(tx) {
			continue // skip-and-evict: applied only to balance checks, never fails the block (spec §4.8)
		}
		if err := e.applyTransactionLocked(block.Index, tx); err != nil {
			e.logger.WithError(err).WithField("tx", tx.ID).Warn("transaction application failed, skipping")
			continue
		}
	}

	e.stateTree.Update(e.balances)
	// balanceCommitment was built incrementally as each balance write went
	// through setBalanceLocked; recomputing it fresh from the resulting map
	// and comparing catches a balance mutated by a path that bypassed
	// setBalanceLocked, unlike comparing the same computeRoot call against
	// itself (spec §9 Open Question #2).
	if commitBalances(e.balances) != e.balanceCommitment {
		e.restoreSnapshotLocked(snap)
		return NewError(KindStateCorruption, "state root verification failed after block %d", block.Index)
	}

	e.snapshots = append(e.snapshots, snap)
	if len(e.snapshots) > e.maxSnapshots {
		e.snapshots = e.snapshots[len(e.snapshots)-e.maxSnapshots:]
	}
	e.chain = append(e.chain, block)
	return nil
}

func (e *Engine) checkConsensusLocked(block *Block) error {
	switch block.ConsensusType {
	case ConsensusPoW:
		if !e.pow.ValidateHash(block.Hash) {
			return NewError(KindInvalidProofOfWork, "block %d hash does not satisfy difficulty", block.Index)
		}
	case ConsensusPoS:
		v, ok := e.pos.Validator(block.Validator)
		if !ok {
			return NewError(KindConsensusError, "unknown validator %s", block.Validator)
		}
		sig := Signature{Sig: block.Signature, PublicKey: v.PublicKey}
		if !e.pos.ValidateBlock(block.Hash, block.Validator, sig) {
			return NewError(KindSignatureInvalid, "invalid validator signature on block %d", block.Index)
		}
	default:
		return NewError(KindConsensusError, "unknown consensus type %q", block.ConsensusType)
	}
	return nil
}

func parseCallParams(data []byte) map[string]string {
	params := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		kv := strings.SplitN(strings.TrimSpace(line), "=", 2)
		if len(kv) == 2 {
			params[kv[0]] = kv[1]
		}
	}
	return params
}

// applyTransactionLocked applies one already-admitted transaction to
// balances/contracts (spec §4.8 step 4). Caller must hold e.mu.
func (e *Engine) applyTransactionLocked(blockIndex uint64, tx *Transaction) error {
	switch tx.Type {
	case TxTransfer:
		if !tx.IsCoinbase() {
			e.setBalanceLocked(tx.Sender, e.balances[tx.Sender]-tx.Amount)
		}
		e.setBalanceLocked(tx.Receiver, e.balances[tx.Receiver]+tx.Amount)

	case TxContractDeploy:
		cost := tx.GasLimit * tx.GasPrice
		e.setBalanceLocked(tx.Sender, e.balances[tx.Sender]-cost)
		contract, err := NewContract(tx.Sender, tx.ContractCode, tx.Timestamp)
		if err != nil {
			return err
		}
		if _, err := contract.Invoke(VMContext{
			BlockHeight: blockIndex,
			GasLimit:    tx.GasLimit,
			Caller:      tx.Sender,
			Self:        contract.ID,
		}); err != nil {
			return err
		}
		e.contracts[contract.ID] = contract

	case TxContractCall:
		contract, ok := e.contracts[tx.ContractAddress]
		if !ok {
			return NewError(KindNotFound, "contract %s not found", tx.ContractAddress)
		}
		reserve := tx.Amount + tx.GasLimit*tx.GasPrice
		e.setBalanceLocked(tx.Sender, e.balances[tx.Sender]-reserve)
		receipt, err := contract.Invoke(VMContext{
			BlockHeight: blockIndex,
			GasLimit:    tx.GasLimit,
			Caller:      tx.Sender,
			Self:        contract.ID,
			Params:      parseCallParams(tx.ContractData),
		})
		if err != nil {
			return err
		}
		unused := tx.GasLimit - receipt.GasUsed
		e.setBalanceLocked(tx.Sender, e.balances[tx.Sender]+unused*tx.GasPrice)
		contract.Balance += tx.Amount
		e.contractMetrics[contract.ID] += receipt.GasUsed

	case TxStaking:
		return e.pos.ProcessStakingTransaction(tx)

	default:
		return NewError(KindTransactionValidationFailed, "unknown transaction type %q", tx.Type)
	}
	return nil
}

// setBalanceLocked writes addr's balance and updates the incrementally
// tracked balance commitment in the same step, so the commitment only ever
// reflects writes that went through this path. Caller must hold e.mu.
func (e *Engine) setBalanceLocked(addr Address, newValue uint64) {
	if old, ok := e.balances[addr]; ok {
		xorLeafInto(&e.balanceCommitment, leafHash(addr, old))
	}
	e.balances[addr] = newValue
	xorLeafInto(&e.balanceCommitment, leafHash(addr, newValue))
}

func (e *Engine) restoreSnapshotLocked(snap *Snapshot) {
	e.balances = cloneBalances(snap.Balances)
	e.contracts = cloneContracts(snap.Contracts)
	e.contractMetrics = cloneMetrics(snap.ContractMetrics)
	e.balanceCommitment = commitBalances(e.balances)
	e.stateTree = NewStateTree()
	e.stateTree.Update(e.balances)
}

// RollbackToSnapshot restores balances/contracts/metrics/state-root from
// the snapshot taken at index and truncates the chain and snapshot ring
// beyond it (spec §4.8 `rollback_to_snapshot`).
func (e *Engine) RollbackToSnapshot(index uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var target *Snapshot
	var keepSnaps []*Snapshot
	for _, s := range e.snapshots {
		if s.BlockIndex <= index {
			keepSnaps = append(keepSnaps, s)
		}
		if s.BlockIndex == index {
			target = s
		}
	}
	if target == nil {
		return NewError(KindNotFound, "no snapshot at index %d", index)
	}
	e.restoreSnapshotLocked(target)
	e.snapshots = keepSnaps

	var keepChain []*Block
	for _, b := range e.chain {
		if b.Index <= index {
			keepChain = append(keepChain, b)
		}
	}
	e.chain = keepChain
	return nil
}

// ValidateChain re-validates every block's structure, linkage, and
// consensus invariants (spec §4.8 `validate_chain`).
func (e *Engine) ValidateChain() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for i := 1; i < len(e.chain); i++ {
		b := e.chain[i]
		if err := b.Validate(); err != nil {
			return WrapError(KindBlockValidationFailed, err, "block %d", b.Index)
		}
		if b.PreviousHash != e.chain[i-1].Hash {
			return NewError(KindInvalidPreviousHash, "block %d does not chain to block %d", b.Index, i-1)
		}
		if err := e.checkConsensusLocked(b); err != nil {
			return err
		}
	}
	return nil
}

// Balance returns the current balance of address.
func (e *Engine) Balance(address Address) uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.balances[address]
}

// Balances returns a snapshot copy of every known balance.
func (e *Engine) Balances() map[Address]uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return cloneBalances(e.balances)
}

// Chain returns the chain's blocks in order.
func (e *Engine) Chain() []*Block {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Block, len(e.chain))
	copy(out, e.chain)
	return out
}

// Height returns the index of the latest block.
func (e *Engine) Height() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.chain[len(e.chain)-1].Index
}

// Mempool returns a snapshot of pending transactions.
func (e *Engine) Mempool() []*Transaction {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Transaction, len(e.mempool))
	copy(out, e.mempool)
	return out
}

// Contract returns the contract at address, if deployed.
func (e *Engine) Contract(address Address) (*Contract, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.contracts[address]
	return c, ok
}

// PoS exposes the engine's PoS subsystem (validator registration, staking
// bookkeeping) regardless of which consensus seals blocks.
func (e *Engine) PoS() *PoSEngine { return e.pos }

// PoW exposes the engine's PoW subsystem.
func (e *Engine) PoW() *PoWMiner { return e.pow }

// StateRoot returns the current Merkle root over balances.
func (e *Engine) StateRoot() Hash {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stateTree.Root()
}

// sortedAddresses is a small helper used by CLI/demo code to print balances
// deterministically.
func sortedAddresses(balances map[Address]uint64) []Address {
	out := make([]Address, 0, len(balances))
	for a := range balances {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

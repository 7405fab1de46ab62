package core

import (
	"crypto/sha256"
	"encoding/binary"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// ShardID identifies a shard within the coordinator.
type ShardID uint32

// defaultShardNodes is how many nodes a newly added shard starts with (spec
// §4.10: "add_shard() appends a shard with two default nodes").
const defaultShardNodes = 2

// rebalanceThresholdDefault is the post-insert load above which
// TriggerRebalancing is invoked automatically (spec §4.10).
const rebalanceThresholdDefault = 0.8

// Shard is one partition of the network's transaction load (spec §3).
type Shard struct {
	ID        ShardID
	Nodes     []string
	Pending   []*Transaction
	Capacity  int
	StateRoot Hash
	Active    bool
}

// Load returns the shard's fractional occupancy (spec §3: "load = |pending|
// / capacity").
func (s *Shard) Load() float64 {
	if s.Capacity == 0 {
		return 0
	}
	return float64(len(s.Pending)) / float64(s.Capacity)
}

// CrossShardStatus discriminates 2PC lifecycle states (spec §3).
type CrossShardStatus string

const (
	CrossShardPending   CrossShardStatus = "Pending"
	CrossShardPrepared  CrossShardStatus = "Prepared"
	CrossShardCommitted CrossShardStatus = "Committed"
	CrossShardAborted   CrossShardStatus = "Aborted"
)

// CrossShardTx is a two-phase-commit transaction spanning two shards (spec §3).
type CrossShardTx struct {
	ID     string
	From   ShardID
	To     ShardID
	Tx     *Transaction
	Status CrossShardStatus
}

// ShardCoordinator manages the shard set, routing, rebalancing, and
// cross-shard 2PC (spec §4.10; teacher: shardManager/ShardCoordinator in
// core/sharding.go, generalized from its gossip/broadcast-heavy network
// design to the in-process coordinator this spec scopes).
type ShardCoordinator struct {
	mu                sync.RWMutex
	shards            map[ShardID]*Shard
	nextID            ShardID
	defaultCapacity   int
	rebalanceThreshold float64
	crossShard        map[string]*CrossShardTx
}

// NewShardCoordinator constructs a coordinator with no shards yet.
func NewShardCoordinator(defaultCapacity int) *ShardCoordinator {
	return &ShardCoordinator{
		shards:             make(map[ShardID]*Shard),
		defaultCapacity:    defaultCapacity,
		rebalanceThreshold: rebalanceThresholdDefault,
		crossShard:         make(map[string]*CrossShardTx),
	}
}

// AddShard appends a shard with two default nodes (spec §4.10).
func (c *ShardCoordinator) AddShard() *Shard {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	idStr := strconv.FormatUint(uint64(id), 10)
	s := &Shard{
		ID:       id,
		Nodes:    []string{"node-" + idStr + "-0", "node-" + idStr + "-1"},
		Capacity: c.defaultCapacity,
		Active:   true,
	}
	c.shards[id] = s
	return s
}

// RemoveShard fails if the shard has nonzero load (spec §3 invariant, §4.10
// `remove_shard`).
func (c *ShardCoordinator) RemoveShard(id ShardID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.shards[id]
	if !ok {
		return NewError(KindNotFound, "shard %d not found", id)
	}
	if len(s.Pending) > 0 {
		return NewError(KindInvalidInput, "shard %d has nonzero load", id)
	}
	delete(c.shards, id)
	return nil
}

// activeShardIDsLocked returns active shard ids sorted ascending. Caller
// must hold c.mu.
func (c *ShardCoordinator) activeShardIDsLocked() []ShardID {
	ids := make([]ShardID, 0, len(c.shards))
	for id, s := range c.shards {
		if s.Active {
			ids = append(ids, id)
		}
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}

// RouteShard returns the shard a transaction from sender is routed to:
// hash(sender) mod active_shards (spec §4.10).
func (c *ShardCoordinator) RouteShard(sender Address) (ShardID, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := c.activeShardIDsLocked()
	if len(ids) == 0 {
		return 0, NewError(KindNotFound, "no active shards")
	}
	sum := sha256.Sum256([]byte(sender))
	idx := binary.BigEndian.Uint64(sum[:8]) % uint64(len(ids))
	return ids[idx], nil
}

// AddTransactionToShard routes and inserts tx, failing with
// CapacityExceeded if the post-insert load would exceed 1.0, and
// triggering rebalancing if it would exceed the configured threshold
// (spec §4.10).
func (c *ShardCoordinator) AddTransactionToShard(id ShardID, tx *Transaction) error {
	c.mu.Lock()
	s, ok := c.shards[id]
	if !ok {
		c.mu.Unlock()
		return NewError(KindNotFound, "shard %d not found", id)
	}
	postLoad := float64(len(s.Pending)+1) / float64(s.Capacity)
	if postLoad > 1.0 {
		c.mu.Unlock()
		return NewError(KindCapacityExceeded, "shard %d would exceed capacity", id)
	}
	s.Pending = append(s.Pending, tx)
	needsRebalance := postLoad > c.rebalanceThreshold
	c.mu.Unlock()
	if needsRebalance {
		c.TriggerRebalancing()
	}
	return nil
}

// TriggerRebalancing moves the top 30% of pending transactions from every
// overloaded shard (load > 1.2*avg) into an underloaded one (load <
// 0.8*avg), recomputing loads after each move. Idempotent; converges in
// O(shard_count) passes (spec §4.10).
func (c *ShardCoordinator) TriggerRebalancing() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for pass := 0; pass < len(c.shards); pass++ {
		moved := c.rebalanceOncePassLocked()
		if !moved {
			return
		}
	}
}

func (c *ShardCoordinator) rebalanceOncePassLocked() bool {
	ids := c.activeShardIDsLocked()
	if len(ids) < 2 {
		return false
	}
	var total float64
	for _, id := range ids {
		total += c.shards[id].Load()
	}
	avg := total / float64(len(ids))

	var overloaded, underloaded []ShardID
	for _, id := range ids {
		l := c.shards[id].Load()
		if l > 1.2*avg {
			overloaded = append(overloaded, id)
		}
		if l < 0.8*avg {
			underloaded = append(underloaded, id)
		}
	}
	if len(overloaded) == 0 || len(underloaded) == 0 {
		return false
	}
	moved := false
	for i, from := range overloaded {
		to := underloaded[i%len(underloaded)]
		if from == to {
			continue
		}
		src := c.shards[from]
		dst := c.shards[to]
		n := (len(src.Pending) * 3) / 10
		if n == 0 {
			continue
		}
		dst.Pending = append(dst.Pending, src.Pending[:n]...)
		src.Pending = src.Pending[n:]
		moved = true
	}
	return moved
}

// CreateCrossShardTransaction creates a Pending 2PC record; from==to is
// rejected (spec §4.10).
func (c *ShardCoordinator) CreateCrossShardTransaction(from, to ShardID, tx *Transaction) (*CrossShardTx, error) {
	if from == to {
		return nil, NewError(KindInvalidInput, "cross-shard transaction source and destination must differ")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.shards[from]; !ok {
		return nil, NewError(KindNotFound, "source shard %d not found", from)
	}
	if _, ok := c.shards[to]; !ok {
		return nil, NewError(KindNotFound, "destination shard %d not found", to)
	}
	cst := &CrossShardTx{ID: uuid.NewString(), From: from, To: to, Tx: tx, Status: CrossShardPending}
	c.crossShard[cst.ID] = cst
	return cst, nil
}

// CommitCrossShardTransaction runs prepare (a no-op reservation) then
// commit (inserting tx into the destination shard's mempool). Failure
// transitions the record to Aborted, leaving the source shard untouched
// (spec §4.10).
func (c *ShardCoordinator) CommitCrossShardTransaction(id string) error {
	c.mu.Lock()
	cst, ok := c.crossShard[id]
	if !ok {
		c.mu.Unlock()
		return NewError(KindNotFound, "cross-shard transaction %s not found", id)
	}
	cst.Status = CrossShardPrepared
	dst, ok := c.shards[cst.To]
	c.mu.Unlock()
	if !ok {
		c.mu.Lock()
		cst.Status = CrossShardAborted
		c.mu.Unlock()
		return NewError(KindNotFound, "destination shard %d not found", cst.To)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	postLoad := float64(len(dst.Pending)+1) / float64(dst.Capacity)
	if postLoad > 1.0 {
		cst.Status = CrossShardAborted
		return NewError(KindCapacityExceeded, "destination shard %d would exceed capacity", cst.To)
	}
	dst.Pending = append(dst.Pending, cst.Tx)
	cst.Status = CrossShardCommitted
	return nil
}

// Shard returns a copy of the shard's current state.
func (c *ShardCoordinator) Shard(id ShardID) (*Shard, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.shards[id]
	if !ok {
		return nil, false
	}
	cp := *s
	cp.Pending = append([]*Transaction(nil), s.Pending...)
	return &cp, true
}

// CrossShardTransaction returns a copy of the 2PC record with id.
func (c *ShardCoordinator) CrossShardTransaction(id string) (*CrossShardTx, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cst, ok := c.crossShard[id]
	return cst, ok
}

package core

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ChannelStatus discriminates state-channel lifecycle states (spec §3).
type ChannelStatus string

const (
	ChannelOpen      ChannelStatus = "Open"
	ChannelUpdating  ChannelStatus = "Updating"
	ChannelClosing   ChannelStatus = "Closing"
	ChannelClosed    ChannelStatus = "Closed"
	ChannelDisputed  ChannelStatus = "Disputed"
)

// Channel is an N-party off-chain state channel (spec §3).
type Channel struct {
	ID           string
	Participants []Address
	PublicKeys   map[Address]ed25519PubKey
	Balances     map[Address]uint64
	Nonce        uint64
	Status       ChannelStatus
	Timeout      time.Duration
	MaxTotal     uint64
	OpenedAt     time.Time
	DisputedAt   time.Time
}

// ed25519PubKey avoids importing crypto/ed25519 into this file's exported
// surface while keeping storage simple; it is a raw 32-byte public key.
type ed25519PubKey = []byte

// ChannelUpdate is a proposed new balance state, carrying every
// participant's signature over (channel_id, new_nonce, new_balances) (spec
// §4.9).
type ChannelUpdate struct {
	NewNonce     uint64
	NewBalances  map[Address]uint64
	Signatures   map[Address]Signature
}

// ChannelUpdateMessage returns the exact byte sequence a participant must
// sign to approve a channel update, so callers outside this package (wallet
// CLI, tests) can produce valid signatures without reimplementing the
// canonical encoding.
func ChannelUpdateMessage(channelID string, nonce uint64, balances map[Address]uint64) []byte {
	return canonicalUpdateBytes(channelID, nonce, balances)
}

func canonicalUpdateBytes(channelID string, nonce uint64, balances map[Address]uint64) []byte {
	addrs := make([]Address, 0, len(balances))
	for a := range balances {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	s := fmt.Sprintf("%s:%d", channelID, nonce)
	for _, a := range addrs {
		s += fmt.Sprintf(":%s=%d", a, balances[a])
	}
	return []byte(s)
}

// ChannelEngine manages open state channels with per-channel serialization
// (spec §4.9, §5 — mirroring the teacher's ChannelEngine in
// core/state_channel.go, generalized from a 2-party token escrow to an
// N-party balance-map channel per spec §3).
type ChannelEngine struct {
	mu       sync.RWMutex
	channels map[string]*Channel
	locks    map[string]*sync.Mutex
}

// NewChannelEngine constructs an empty channel engine.
func NewChannelEngine() *ChannelEngine {
	return &ChannelEngine{
		channels: make(map[string]*Channel),
		locks:    make(map[string]*sync.Mutex),
	}
}

func (e *ChannelEngine) lockFor(id string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	return l
}

// Open creates a channel with >=2 participants, a registered pubkey for
// each, initial balances summing to <= maxTotal, and no negative/oversized
// balances (spec §4.9 `open`).
func (e *ChannelEngine) Open(participants []Address, pubKeys map[Address]ed25519PubKey, balances map[Address]uint64, timeout time.Duration, maxTotal uint64) (*Channel, error) {
	if len(participants) < 2 {
		return nil, NewError(KindInvalidInput, "a channel requires at least 2 participants")
	}
	var total uint64
	for _, p := range participants {
		if _, ok := pubKeys[p]; !ok {
			return nil, NewError(KindInvalidInput, "participant %s has no registered public key", p)
		}
		bal := balances[p]
		if bal > maxTotal {
			return nil, NewError(KindInvalidInput, "participant %s balance %d exceeds max_total %d", p, bal, maxTotal)
		}
		total += bal
	}
	if total > maxTotal {
		return nil, NewError(KindInvalidInput, "initial balances sum %d exceeds max_total %d", total, maxTotal)
	}
	ch := &Channel{
		ID:           uuid.NewString(),
		Participants: append([]Address(nil), participants...),
		PublicKeys:   pubKeys,
		Balances:     cloneBalances(balances),
		Nonce:        0,
		Status:       ChannelOpen,
		Timeout:      timeout,
		MaxTotal:     maxTotal,
		OpenedAt:     time.Now(),
	}
	e.mu.Lock()
	e.channels[ch.ID] = ch
	e.mu.Unlock()
	return ch, nil
}

// Update applies a signed balance update iff: the channel is Open, every
// participant signed (channel_id, new_nonce, new_balances), the sum is
// preserved, no balance is negative, and new_nonce > current_nonce (spec
// §4.9 `update`). Concurrent updates at the same nonce are resolved
// first-arrival; the loser gets StaleNonce.
func (e *ChannelEngine) Update(channelID string, upd ChannelUpdate) error {
	lock := e.lockFor(channelID)
	lock.Lock()
	defer lock.Unlock()

	e.mu.RLock()
	ch, ok := e.channels[channelID]
	e.mu.RUnlock()
	if !ok {
		return NewError(KindNotFound, "channel %s not found", channelID)
	}
	if ch.Status != ChannelOpen {
		return NewError(KindInvalidInput, "channel %s is not open", channelID)
	}
	if upd.NewNonce <= ch.Nonce {
		return NewError(KindStaleNonce, "update nonce %d is not greater than current nonce %d", upd.NewNonce, ch.Nonce)
	}
	msg := canonicalUpdateBytes(channelID, upd.NewNonce, upd.NewBalances)
	for _, p := range ch.Participants {
		sig, ok := upd.Signatures[p]
		if !ok {
			return NewError(KindSignatureInvalid, "missing signature from participant %s", p)
		}
		if !sig.Verify(msg) {
			return NewError(KindSignatureInvalid, "invalid signature from participant %s", p)
		}
	}
	var total uint64
	for _, p := range ch.Participants {
		bal, ok := upd.NewBalances[p]
		if !ok {
			return NewError(KindInvalidInput, "new balances missing participant %s", p)
		}
		total += bal
	}
	var currentTotal uint64
	for _, v := range ch.Balances {
		currentTotal += v
	}
	if total != currentTotal {
		return NewError(KindInvalidInput, "update changes total balance: %d != %d", total, currentTotal)
	}

	ch.Balances = cloneBalances(upd.NewBalances)
	ch.Nonce = upd.NewNonce
	return nil
}

// Close performs a cooperative close: validates exactly like Update but
// transitions the channel to Closed and returns the final balances to be
// settled on-chain by the caller (spec §4.9 `close`).
func (e *ChannelEngine) Close(channelID string, upd ChannelUpdate) (map[Address]uint64, error) {
	if err := e.Update(channelID, upd); err != nil {
		return nil, err
	}
	e.mu.Lock()
	ch := e.channels[channelID]
	ch.Status = ChannelClosed
	final := cloneBalances(ch.Balances)
	e.mu.Unlock()
	return final, nil
}

// Dispute records a disputed state; any participant may submit a prior
// signed state within the timeout window. The engine tracks the
// highest-nonce validly-signed state seen and resolves to it once the
// window elapses (spec §4.9 `dispute`).
func (e *ChannelEngine) Dispute(channelID string, upd ChannelUpdate) error {
	e.mu.Lock()
	ch, ok := e.channels[channelID]
	if !ok {
		e.mu.Unlock()
		return NewError(KindNotFound, "channel %s not found", channelID)
	}
	if ch.Status != ChannelOpen && ch.Status != ChannelDisputed {
		e.mu.Unlock()
		return NewError(KindInvalidInput, "channel %s cannot be disputed in status %s", channelID, ch.Status)
	}
	if ch.Status != ChannelDisputed {
		ch.DisputedAt = time.Now()
	}
	ch.Status = ChannelDisputed
	e.mu.Unlock()

	msg := canonicalUpdateBytes(channelID, upd.NewNonce, upd.NewBalances)
	for _, p := range ch.Participants {
		sig, ok := upd.Signatures[p]
		if !ok || !sig.Verify(msg) {
			return NewError(KindSignatureInvalid, "dispute state missing or invalid signature from %s", p)
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if upd.NewNonce > ch.Nonce {
		ch.Balances = cloneBalances(upd.NewBalances)
		ch.Nonce = upd.NewNonce
	}
	return nil
}

// ResolveDispute finalizes a disputed channel once its timeout window has
// elapsed, adopting whichever state currently has the highest nonce as
// canonical (spec §4.9: "After the window, the latest accepted state
// becomes canonical.").
func (e *ChannelEngine) ResolveDispute(channelID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	ch, ok := e.channels[channelID]
	if !ok {
		return NewError(KindNotFound, "channel %s not found", channelID)
	}
	if ch.Status != ChannelDisputed {
		return NewError(KindInvalidInput, "channel %s is not disputed", channelID)
	}
	if time.Since(ch.DisputedAt) < ch.Timeout {
		return NewError(KindInvalidInput, "dispute window has not elapsed")
	}
	ch.Status = ChannelClosed
	return nil
}

// Get returns a copy of the channel with id.
func (e *ChannelEngine) Get(id string) (*Channel, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ch, ok := e.channels[id]
	if !ok {
		return nil, false
	}
	cp := *ch
	cp.Balances = cloneBalances(ch.Balances)
	return &cp, true
}

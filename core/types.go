// Package core implements the Vanta Chain ledger engine: the block and
// transaction data model, Merkle state commitments, PoW/PoS consensus,
// the contract VM, state channels, sharding, cross-chain bridging, and
// rollup batching.
package core

import (
	"encoding/hex"
	"strings"
)

// Address identifies an account or contract. Ordinary addresses are 40
// lowercase hex characters (hex(sha256(pubkey))[:40], spec §4.1). The
// sentinel values Coinbase and GenesisReceiver are symbolic, non-hex
// addresses used for mint transactions and do not carry balance
// preconditions (spec §3).
type Address string

// Coinbase is the synthetic sender of mint/reward transactions. A
// transaction with this sender has no balance precondition.
const Coinbase Address = "COINBASE"

// GenesisReceiver is the address credited by the genesis coinbase (spec §6).
const GenesisReceiver Address = "genesis"

// AddressZero is used as a burn / escrow sink address.
const AddressZero Address = ""

func (a Address) String() string { return string(a) }

// IsHex reports whether a is a well-formed 20-byte hex address (as opposed
// to a symbolic sentinel such as Coinbase).
func (a Address) IsHex() bool {
	if len(a) != 40 {
		return false
	}
	_, err := hex.DecodeString(string(a))
	return err == nil
}

// Hash is the hex encoding of a 32-byte SHA-256 digest.
type Hash string

// ZeroHash is the all-zero 64-hex-char hash used as the genesis block's
// previous hash (spec §3, §6).
var ZeroHash = Hash(strings.Repeat("0", 64))

func (h Hash) String() string { return string(h) }
func (h Hash) IsZero() bool   { return h == "" || h == ZeroHash }
func (h Hash) IsHex() bool {
	if len(h) != 64 {
		return false
	}
	_, err := hex.DecodeString(string(h))
	return err == nil
}

func hashBytesToHash(b []byte) Hash { return Hash(hex.EncodeToString(b)) }

// ConsensusType names the consensus protocol that sealed a block.
type ConsensusType string

const (
	ConsensusPoW ConsensusType = "pow"
	ConsensusPoS ConsensusType = "pos"
)

// TxType discriminates the transaction variants of spec §3.
type TxType string

const (
	TxTransfer       TxType = "transfer"
	TxContractDeploy TxType = "contract_deploy"
	TxContractCall   TxType = "contract_call"
	TxStaking        TxType = "staking"
)

// StakeOp discriminates staking transaction operations.
type StakeOp string

const (
	StakeOpStake   StakeOp = "stake"
	StakeOpUnstake StakeOp = "unstake"
)

// MaxBlockSize is the maximum serialized size, in bytes, of a block's
// transaction list (spec §3).
const MaxBlockSize = 1 << 20 // 1 MiB

// GenesisReward is the coinbase amount minted to GenesisReceiver in the
// genesis block (spec §6).
const GenesisReward = 1000

// GenesisVersion and GenesisConsensus are the fixed genesis block metadata
// values specified in spec §6.
const (
	GenesisVersion   = "1.0"
	GenesisConsensus = ConsensusPoW
)

package core

import (
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/rlp"
)

// Block is a sealed, hash-linked container of transactions (spec §3, §4.4).
type Block struct {
	Index         uint64        `json:"index"`
	PreviousHash  Hash          `json:"previous_hash"`
	Timestamp     int64         `json:"timestamp"`
	Transactions  []Transaction `json:"transactions"`
	Nonce         uint64        `json:"nonce"`
	Hash          Hash          `json:"hash"`
	MerkleRoot    Hash          `json:"merkle_root,omitempty"`
	Version       string        `json:"version"`
	ConsensusType ConsensusType `json:"consensus_type"`
	Validator     Address       `json:"validator,omitempty"`
	Signature     []byte        `json:"signature,omitempty"`
}

// rlpBlockData is the canonical pre-image hashed to produce Block.Hash: a
// deterministic function of (index, timestamp, serialized txs,
// previous_hash, nonce), per spec §3.
type rlpBlockData struct {
	Index        uint64
	PreviousHash string
	Timestamp    int64
	TxIDs        []string
	Nonce        uint64
}

func (b *Block) canonicalData() rlpBlockData {
	ids := make([]string, len(b.Transactions))
	for i, tx := range b.Transactions {
		ids[i] = string(tx.ID)
	}
	return rlpBlockData{
		Index:        b.Index,
		PreviousHash: string(b.PreviousHash),
		Timestamp:    b.Timestamp,
		TxIDs:        ids,
		Nonce:        b.Nonce,
	}
}

// HeaderBytes returns the canonical RLP-encoded pre-image used both for
// mining (varying Nonce) and for PoS signing.
func (b *Block) HeaderBytes() ([]byte, error) {
	data, err := rlp.EncodeToBytes(b.canonicalData())
	if err != nil {
		return nil, WrapError(KindInvalidInput, err, "encode block header")
	}
	return data, nil
}

// ComputeHash recomputes Block.Hash from the current header fields,
// without mutating the block.
func (b *Block) ComputeHash() (Hash, error) {
	data, err := b.HeaderBytes()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hashBytesToHash(sum[:]), nil
}

// SerializedSize returns the RLP-encoded size in bytes of the block's
// transaction list, used against MaxBlockSize (spec §3, §4.4).
func (b *Block) SerializedSize() (int, error) {
	data, err := rlp.EncodeToBytes(b.Transactions)
	if err != nil {
		return 0, WrapError(KindInvalidInput, err, "encode transactions")
	}
	return len(data), nil
}

// NewBlock validates each transaction and computes the initial hash with
// nonce=0 (spec §4.4 `new`).
func NewBlock(index uint64, txs []Transaction, previousHash Hash, version string, consensus ConsensusType) (*Block, error) {
	for i := range txs {
		if err := txs[i].Validate(); err != nil {
			return nil, WrapError(KindBlockValidationFailed, err, "transaction %d invalid", i)
		}
	}
	txIDs := make([]Hash, len(txs))
	for i, tx := range txs {
		txIDs[i] = tx.ID
	}
	b := &Block{
		Index:         index,
		PreviousHash:  previousHash,
		Timestamp:     nowUnix(),
		Transactions:  txs,
		Nonce:         0,
		Version:       version,
		ConsensusType: consensus,
		MerkleRoot:    TransactionMerkleRoot(txIDs),
	}
	h, err := b.ComputeHash()
	if err != nil {
		return nil, err
	}
	b.Hash = h
	if size, err := b.SerializedSize(); err != nil {
		return nil, err
	} else if size > MaxBlockSize {
		return nil, NewError(KindBlockTooLarge, "block size %d exceeds maximum %d", size, MaxBlockSize)
	}
	return b, nil
}

// NewGenesisBlock builds the fixed genesis block described in spec §6: a
// single COINBASE -> "genesis" transfer of GenesisReward units, previous
// hash all zero, version "1.0", consensus "pow".
func NewGenesisBlock() (*Block, error) {
	tx := &Transaction{
		Type:      TxTransfer,
		Sender:    Coinbase,
		Receiver:  GenesisReceiver,
		Amount:    GenesisReward,
		Timestamp: 0,
	}
	id, err := tx.computeID()
	if err != nil {
		return nil, err
	}
	tx.ID = id
	return NewBlock(0, []Transaction{*tx}, ZeroHash, GenesisVersion, GenesisConsensus)
}

// Validate checks size, transaction validity, hash integrity, and that
// PreviousHash is well-formed hex (spec §4.4 `validate`). It does not check
// chain linkage to a specific predecessor block — that is Engine.AddBlock's
// responsibility (spec §4.8).
func (b *Block) Validate() error {
	if size, err := b.SerializedSize(); err != nil {
		return err
	} else if size > MaxBlockSize {
		return NewError(KindBlockTooLarge, "block size %d exceeds maximum %d", size, MaxBlockSize)
	}
	for i := range b.Transactions {
		if err := b.Transactions[i].Validate(); err != nil {
			return WrapError(KindBlockValidationFailed, err, "transaction %d invalid", i)
		}
	}
	if b.Index > 0 && !b.PreviousHash.IsHex() {
		return NewError(KindInvalidPreviousHash, "previous hash %q is not valid hex", b.PreviousHash)
	}
	if b.Index == 0 && b.PreviousHash != ZeroHash {
		return NewError(KindInvalidPreviousHash, "genesis block must reference the zero hash")
	}
	want, err := b.ComputeHash()
	if err != nil {
		return err
	}
	if want != b.Hash {
		return NewError(KindInvalidHash, "block hash mismatch: recorded %s, recomputed %s", b.Hash, want)
	}
	return nil
}

// VerifyTransactionInclusion uses the block's transaction Merkle tree to
// produce and check a proof that tx is included at position i (spec §4.4).
func (b *Block) VerifyTransactionInclusion(tx *Transaction, i int) (bool, error) {
	if i < 0 || i >= len(b.Transactions) {
		return false, NewError(KindInvalidInput, "index %d out of range", i)
	}
	if b.Transactions[i].ID != tx.ID {
		return false, nil
	}
	leaves := make([][]byte, len(b.Transactions))
	for j, t := range b.Transactions {
		leaves[j] = []byte(t.ID)
	}
	proof, root, err := MerkleInclusionProof(leaves, i)
	if err != nil {
		return false, err
	}
	if root != b.MerkleRoot {
		return false, NewError(KindStateCorruption, "block merkle root mismatch")
	}
	return VerifyMerkleInclusion(root, leaves[i], proof, i), nil
}

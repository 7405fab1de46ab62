package core

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
)

// maxTimestampSkew is the maximum allowed distance between a transaction's
// timestamp and the current time (spec §3: "must fall within one year of
// now when validated").
const maxTimestampSkew = 365 * 24 * time.Hour

// Transaction is an immutable record of one of the four variants described
// in spec §3: Transfer, ContractDeploy, ContractCall, Staking. Fields not
// relevant to a given Type are left at their zero value; rlp encoding
// requires this flat shape (no embedded interfaces or maps).
type Transaction struct {
	ID        Hash   `json:"id"`
	Type      TxType `json:"type"`
	Sender    Address `json:"sender"`
	Receiver  Address `json:"receiver,omitempty"`
	Amount    uint64 `json:"amount"`
	Memo      string `json:"memo,omitempty"`
	Timestamp int64  `json:"timestamp"`

	// ContractDeploy / ContractCall
	ContractCode    []byte  `json:"contract_code,omitempty"`
	ContractAddress Address `json:"contract_address,omitempty"`
	ContractData    []byte  `json:"contract_data,omitempty"`
	GasLimit        uint64  `json:"gas_limit,omitempty"`
	GasPrice        uint64  `json:"gas_price,omitempty"`

	// Staking
	Validator Address `json:"validator,omitempty"`
	StakeOp   StakeOp `json:"stake_op,omitempty"`

	Signature []byte `json:"signature,omitempty"`
	PublicKey []byte `json:"public_key,omitempty"`
}

// rlpTransaction is the canonical, signature-excluding encoding used both to
// derive a transaction's content-addressed ID and as the payload that
// SignTransaction signs over (spec §4.3 `to_bytes`). go-ethereum's rlp
// package (already a teacher dependency, used for block decoding in
// core/ledger.go) gives us a compact, order-sensitive canonical form for
// free instead of hand-rolling one.
type rlpTransaction struct {
	Type            string
	Sender          string
	Receiver        string
	Amount          uint64
	Memo            string
	Timestamp       int64
	ContractCode    []byte
	ContractAddress string
	ContractData    []byte
	GasLimit        uint64
	GasPrice        uint64
	Validator       string
	StakeOp         string
}

func (tx *Transaction) canonicalForm() rlpTransaction {
	return rlpTransaction{
		Type:            string(tx.Type),
		Sender:          string(tx.Sender),
		Receiver:        string(tx.Receiver),
		Amount:          tx.Amount,
		Memo:            tx.Memo,
		Timestamp:       tx.Timestamp,
		ContractCode:    tx.ContractCode,
		ContractAddress: string(tx.ContractAddress),
		ContractData:    tx.ContractData,
		GasLimit:        tx.GasLimit,
		GasPrice:        tx.GasPrice,
		Validator:       string(tx.Validator),
		StakeOp:         string(tx.StakeOp),
	}
}

// ToBytes returns the canonical byte form used by signers: the RLP encoding
// of every field except the signature (spec §4.3 `to_bytes`).
func (tx *Transaction) ToBytes() ([]byte, error) {
	b, err := rlp.EncodeToBytes(tx.canonicalForm())
	if err != nil {
		return nil, WrapError(KindInvalidInput, err, "encode transaction")
	}
	return b, nil
}

func (tx *Transaction) computeID() (Hash, error) {
	b, err := tx.ToBytes()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hashBytesToHash(sum[:]), nil
}

func nowUnix() int64 { return time.Now().Unix() }

// NewTransfer constructs and validates a Transfer transaction (spec §4.3).
func NewTransfer(sender, receiver Address, amount uint64, memo string) (*Transaction, error) {
	tx := &Transaction{
		Type:      TxTransfer,
		Sender:    sender,
		Receiver:  receiver,
		Amount:    amount,
		Memo:      memo,
		Timestamp: nowUnix(),
	}
	id, err := tx.computeID()
	if err != nil {
		return nil, err
	}
	tx.ID = id
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return tx, nil
}

// NewContractDeploy constructs and validates a ContractDeploy transaction
// (spec §4.3). Receiver is omitted.
func NewContractDeploy(sender Address, code []byte, gasLimit, gasPrice uint64) (*Transaction, error) {
	tx := &Transaction{
		Type:         TxContractDeploy,
		Sender:       sender,
		ContractCode: code,
		GasLimit:     gasLimit,
		GasPrice:     gasPrice,
		Timestamp:    nowUnix(),
	}
	id, err := tx.computeID()
	if err != nil {
		return nil, err
	}
	tx.ID = id
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return tx, nil
}

// NewContractCall constructs and validates a ContractCall transaction (spec
// §4.3). Amount may be zero.
func NewContractCall(sender, contractAddr Address, data []byte, amount, gasLimit, gasPrice uint64) (*Transaction, error) {
	tx := &Transaction{
		Type:            TxContractCall,
		Sender:          sender,
		ContractAddress: contractAddr,
		ContractData:    data,
		Amount:          amount,
		GasLimit:        gasLimit,
		GasPrice:        gasPrice,
		Timestamp:       nowUnix(),
	}
	id, err := tx.computeID()
	if err != nil {
		return nil, err
	}
	tx.ID = id
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return tx, nil
}

// NewStaking constructs and validates a Staking transaction (spec §4.3).
func NewStaking(sender, validator Address, amount uint64, op StakeOp) (*Transaction, error) {
	tx := &Transaction{
		Type:      TxStaking,
		Sender:    sender,
		Validator: validator,
		Amount:    amount,
		StakeOp:   op,
		Timestamp: nowUnix(),
	}
	id, err := tx.computeID()
	if err != nil {
		return nil, err
	}
	tx.ID = id
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return tx, nil
}

// Validate re-derives the transaction ID and checks field-level invariants
// (spec §4.3). It does not check sender balance — that is the ledger's
// responsibility at admission time (spec §4.8).
func (tx *Transaction) Validate() error {
	wantID, err := tx.computeID()
	if err != nil {
		return err
	}
	if tx.ID != wantID {
		return NewError(KindTransactionValidationFailed, "transaction id mismatch: recorded %s, recomputed %s", tx.ID, wantID)
	}
	if tx.Sender == "" {
		return NewError(KindTransactionValidationFailed, "sender must not be empty")
	}
	now := time.Now()
	txTime := time.Unix(tx.Timestamp, 0)
	skew := now.Sub(txTime)
	if skew < 0 {
		skew = -skew
	}
	if skew > maxTimestampSkew {
		return NewError(KindTransactionValidationFailed, "timestamp %d is more than one year from now", tx.Timestamp)
	}

	switch tx.Type {
	case TxTransfer:
		if tx.Receiver == "" {
			return NewError(KindTransactionValidationFailed, "transfer receiver must not be empty")
		}
		if tx.Sender == tx.Receiver {
			return NewError(KindTransactionValidationFailed, "transfer sender and receiver must differ")
		}
		if tx.Amount == 0 {
			return NewError(KindTransactionValidationFailed, "transfer amount must be positive")
		}
	case TxContractDeploy:
		if len(tx.ContractCode) == 0 {
			return NewError(KindTransactionValidationFailed, "contract code must not be empty")
		}
		if tx.GasLimit == 0 {
			return NewError(KindTransactionValidationFailed, "gas limit must be positive")
		}
		if tx.GasPrice == 0 {
			return NewError(KindTransactionValidationFailed, "gas price must be positive")
		}
	case TxContractCall:
		if tx.ContractAddress == "" {
			return NewError(KindTransactionValidationFailed, "contract address must not be empty")
		}
		if tx.GasLimit == 0 {
			return NewError(KindTransactionValidationFailed, "gas limit must be positive")
		}
		if tx.GasPrice == 0 {
			return NewError(KindTransactionValidationFailed, "gas price must be positive")
		}
		// Amount >= 0 always holds for uint64; the asymmetry with Transfer
		// (amount must be strictly positive there) is intentional (spec §9).
	case TxStaking:
		if tx.Validator == "" {
			return NewError(KindTransactionValidationFailed, "staking validator must not be empty")
		}
		switch tx.StakeOp {
		case StakeOpStake:
			if tx.Amount == 0 {
				return NewError(KindTransactionValidationFailed, "stake amount must be positive")
			}
		case StakeOpUnstake:
			if tx.Amount == 0 {
				return NewError(KindTransactionValidationFailed, "unstake amount must be positive")
			}
		default:
			return NewError(KindTransactionValidationFailed, "unknown stake operation %q", tx.StakeOp)
		}
	default:
		return NewError(KindTransactionValidationFailed, "unknown transaction type %q", tx.Type)
	}
	return nil
}

// Sign signs the transaction's canonical byte form with kp and attaches the
// resulting signature (spec §4.3 `sign`).
func (tx *Transaction) Sign(kp *Keypair) error {
	b, err := tx.ToBytes()
	if err != nil {
		return err
	}
	sig := kp.Sign(b)
	tx.Signature = sig.Sig
	tx.PublicKey = sig.PublicKey
	return nil
}

// VerifySignature recomputes the transaction's canonical byte form and
// verifies the attached signature against it (spec §4.3 `verify_signature`).
func (tx *Transaction) VerifySignature() (bool, error) {
	if len(tx.Signature) == 0 || len(tx.PublicKey) == 0 {
		return false, nil
	}
	b, err := tx.ToBytes()
	if err != nil {
		return false, err
	}
	sig := Signature{Sig: tx.Signature, PublicKey: tx.PublicKey}
	return sig.Verify(b), nil
}

// IsCoinbase reports whether tx is a mint/reward transaction (no balance
// precondition, spec §3).
func (tx *Transaction) IsCoinbase() bool { return tx.Sender == Coinbase }

func (tx *Transaction) String() string {
	return fmt.Sprintf("Transaction{id=%s type=%s sender=%s receiver=%s amount=%d}", tx.ID, tx.Type, tx.Sender, tx.Receiver, tx.Amount)
}

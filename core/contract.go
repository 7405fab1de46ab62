package core

import (
	"crypto/ed25519"
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/rlp"
)

// Contract is a deployed smart contract (spec §3): immutable byte-code,
// mutable string-keyed storage, a GIL balance credited via calls, and an
// active flag.
type Contract struct {
	ID        Address           `json:"id"`
	Owner     Address           `json:"owner"`
	Code      []byte            `json:"code"`
	Storage   map[string]string `json:"storage"`
	Balance   uint64            `json:"balance"`
	Active    bool              `json:"active"`
	CreatedAt int64             `json:"created_at"`
}

type rlpContractID struct {
	Owner     string
	Code      []byte
	CreatedAt int64
}

// deriveContractAddress derives a contract's address from its code, owner,
// and deploy-time timestamp (spec §3: "id (derived from code+owner+deploy-
// time)").
func deriveContractAddress(owner Address, code []byte, createdAt int64) (Address, error) {
	enc, err := rlp.EncodeToBytes(rlpContractID{Owner: string(owner), Code: code, CreatedAt: createdAt})
	if err != nil {
		return "", WrapError(KindInvalidInput, err, "encode contract id")
	}
	sum := sha256.Sum256(enc)
	return DeriveAddress(ed25519.PublicKey(sum[:])), nil
}

// ContractAddress derives the address a deploy of code by owner at
// createdAt would receive, without constructing a Contract. Callers that
// recorded a ContractDeploy transaction can use this to look up the
// resulting contract (spec §3: "id (derived from code+owner+deploy-time)").
func ContractAddress(owner Address, code []byte, createdAt int64) (Address, error) {
	return deriveContractAddress(owner, code, createdAt)
}

// NewContract validates code and constructs a Contract instance. It does
// not run the initializer — that is Engine.applyContractDeploy's job, which
// has a gas budget and sender context to charge against.
func NewContract(owner Address, code []byte, createdAt int64) (*Contract, error) {
	if err := ValidateContractCode(code); err != nil {
		return nil, err
	}
	id, err := deriveContractAddress(owner, code, createdAt)
	if err != nil {
		return nil, err
	}
	return &Contract{
		ID:        id,
		Owner:     owner,
		Code:      code,
		Storage:   make(map[string]string),
		Active:    true,
		CreatedAt: createdAt,
	}, nil
}

// Invoke runs the contract's code under ctx with gasLimit, using and
// mutating c.Storage. It returns the VM receipt; the caller (Engine) is
// responsible for billing gas and crediting value to c.Balance.
func (c *Contract) Invoke(ctx VMContext) (*Receipt, error) {
	if !c.Active {
		return nil, NewError(KindContractExecutionError, "contract %s is not active", c.ID)
	}
	vm, err := NewVM(c.Code, c.Storage, ctx)
	if err != nil {
		return nil, err
	}
	receipt, err := vm.Run()
	if err != nil {
		return nil, err
	}
	c.Storage = vm.Storage
	return receipt, nil
}

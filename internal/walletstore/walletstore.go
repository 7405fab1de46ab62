// Package walletstore encrypts and persists wallet keypairs using a
// password-derived Argon2id key and AES-256-GCM (spec §6).
package walletstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/tyler-smith/go-bip39"

	"github.com/vantachain/vanta/core"
	"github.com/vantachain/vanta/internal/storage"
)

const nonceSize = 12

// Record is the on-disk shape of one encrypted wallet (spec §6): the
// keypair's seed is sealed under AES-256-GCM with a key derived from the
// wallet password via Argon2id.
type Record struct {
	ID            string    `json:"id"`
	Address       string    `json:"address"`
	EncryptedData []byte    `json:"encrypted_data"`
	Salt          []byte    `json:"salt"`
	Nonce         []byte    `json:"nonce"`
	CreatedAt     time.Time `json:"created_at"`
	LastAccessed  time.Time `json:"last_accessed"`
}

type plaintextSeed struct {
	Seed []byte `json:"seed"` // ed25519.PrivateKey, 64 bytes
}

// Store wraps a storage.Store with wallet-specific encrypt/decrypt
// operations, mirroring the teacher's wallet.go keystore but against the
// generalized Store interface and this spec's key/address model.
type Store struct {
	backend storage.Store
}

// New wraps backend with wallet encryption.
func New(backend storage.Store) *Store {
	return &Store{backend: backend}
}

// Create generates a new keypair, encrypts it under password, and persists
// the resulting record (spec §6 `create_wallet`).
func (s *Store) Create(password string) (*core.Keypair, *Record, error) {
	kp, err := core.GenerateKeypair()
	if err != nil {
		return nil, nil, err
	}
	rec, err := s.seal(kp, password)
	if err != nil {
		return nil, nil, err
	}
	if err := s.persist(rec); err != nil {
		return nil, nil, err
	}
	return kp, rec, nil
}

// CreateWithMnemonic generates a fresh BIP-39 mnemonic (entropyBits must be
// 128 or 256, giving a 12- or 24-word phrase), derives an Ed25519 keypair
// from its seed, encrypts it under password, and persists the record. The
// mnemonic is returned once and never stored — losing it means losing
// recovery, exactly as for the teacher's HD wallet (core/wallet.go
// NewRandomWallet), generalized here to this module's flat (non-HD)
// keypair model.
func (s *Store) CreateWithMnemonic(entropyBits int, passphrase, password string) (*core.Keypair, *Record, string, error) {
	if entropyBits != 128 && entropyBits != 256 {
		return nil, nil, "", core.NewError(core.KindInvalidInput, "entropy bits must be 128 or 256, got %d", entropyBits)
	}
	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return nil, nil, "", core.WrapError(core.KindInvalidInput, err, "generate mnemonic entropy")
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, nil, "", core.WrapError(core.KindInvalidInput, err, "build mnemonic")
	}
	kp, err := keypairFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, nil, "", err
	}
	rec, err := s.seal(kp, password)
	if err != nil {
		return nil, nil, "", err
	}
	if err := s.persist(rec); err != nil {
		return nil, nil, "", err
	}
	return kp, rec, mnemonic, nil
}

// RecoverFromMnemonic rebuilds the keypair a previously issued mnemonic
// controls, re-encrypts it under password, and persists it as a new wallet
// record (spec §6 recovery path; teacher precedent: core/wallet.go
// WalletFromMnemonic).
func (s *Store) RecoverFromMnemonic(mnemonic, passphrase, password string) (*core.Keypair, *Record, error) {
	kp, err := keypairFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, nil, err
	}
	rec, err := s.seal(kp, password)
	if err != nil {
		return nil, nil, err
	}
	if err := s.persist(rec); err != nil {
		return nil, nil, err
	}
	return kp, rec, nil
}

func keypairFromMnemonic(mnemonic, passphrase string) (*core.Keypair, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, core.NewError(core.KindInvalidInput, "invalid mnemonic checksum")
	}
	seed := bip39.NewSeed(mnemonic, passphrase)
	return core.KeypairFromSeed(seed[:ed25519.SeedSize])
}

func (s *Store) seal(kp *core.Keypair, password string) (*Record, error) {
	salt, err := core.RandomSalt(32)
	if err != nil {
		return nil, err
	}
	key, err := core.DeriveKeyFromPassword(password, salt)
	if err != nil {
		return nil, err
	}
	defer core.SecureZero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, core.WrapError(core.KindInvalidInput, err, "init aes cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, core.WrapError(core.KindInvalidInput, err, "init gcm")
	}
	nonce, err := core.RandomSalt(nonceSize)
	if err != nil {
		return nil, err
	}
	plain, err := json.Marshal(plaintextSeed{Seed: kp.PrivateKey})
	if err != nil {
		return nil, core.WrapError(core.KindInvalidInput, err, "marshal wallet seed")
	}
	sealed := gcm.Seal(nil, nonce, plain, nil)

	now := time.Now()
	return &Record{
		ID:            uuid.NewString(),
		Address:       string(kp.Address()),
		EncryptedData: sealed,
		Salt:          salt,
		Nonce:         nonce,
		CreatedAt:     now,
		LastAccessed:  now,
	}, nil
}

func (s *Store) persist(rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return core.WrapError(core.KindStorageError, err, "marshal wallet record")
	}
	return s.backend.SaveWallet(rec.ID, data)
}

// Unlock loads the record for id and decrypts the keypair under password
// (spec §6: wallet unlock).
func (s *Store) Unlock(id, password string) (*core.Keypair, error) {
	data, err := s.backend.LoadWallet(id)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, core.WrapError(core.KindStorageError, err, "decode wallet record")
	}

	key, err := core.DeriveKeyFromPassword(password, rec.Salt)
	if err != nil {
		return nil, err
	}
	defer core.SecureZero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, core.WrapError(core.KindInvalidInput, err, "init aes cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, core.WrapError(core.KindInvalidInput, err, "init gcm")
	}
	plain, err := gcm.Open(nil, rec.Nonce, rec.EncryptedData, nil)
	if err != nil {
		return nil, core.NewError(core.KindAuthError, "incorrect wallet password")
	}
	var seed plaintextSeed
	if err := json.Unmarshal(plain, &seed); err != nil {
		return nil, core.WrapError(core.KindStorageError, err, "decode wallet seed")
	}
	priv := ed25519.PrivateKey(seed.Seed)

	rec.LastAccessed = time.Now()
	if err := s.persist(&rec); err != nil {
		return nil, err
	}

	return &core.Keypair{PrivateKey: priv, PublicKey: priv.Public().(ed25519.PublicKey)}, nil
}

// List returns every wallet id the backend holds (spec §6 `list_wallets`).
func (s *Store) List() ([]string, error) {
	return s.backend.ListWallets()
}

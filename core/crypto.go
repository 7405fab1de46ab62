package core

import (
	"crypto/ed25519"
	crand "crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Keypair holds an Ed25519 seed (private key material) and the derived
// 32-byte public key (spec §4.1).
type Keypair struct {
	PrivateKey ed25519.PrivateKey // 64 bytes: seed || public key
	PublicKey  ed25519.PublicKey  // 32 bytes
}

// Signature bundles a 64-byte Ed25519 signature with the signer's public key
// so verification is stateless (spec §3: "(64-byte sig, public_key) pairs").
type Signature struct {
	Sig       []byte `json:"sig"`
	PublicKey []byte `json:"public_key"`
}

// GenerateKeypair creates a new Ed25519 keypair from a cryptographically
// secure RNG (spec §4.1).
func GenerateKeypair() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(crand.Reader)
	if err != nil {
		return nil, WrapError(KindInvalidInput, err, "keypair generation failed")
	}
	return &Keypair{PrivateKey: priv, PublicKey: pub}, nil
}

const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
	minSaltLen    = 16
)

// DeriveKeyFromPassword derives a 32-byte key from a password and salt using
// Argon2id (spec §4.1). It rejects empty passwords and salts shorter than 16
// bytes.
func DeriveKeyFromPassword(password string, salt []byte) ([]byte, error) {
	if password == "" {
		return nil, NewError(KindInvalidInput, "password must not be empty")
	}
	if len(salt) < minSaltLen {
		return nil, NewError(KindInvalidInput, "salt must be at least %d bytes", minSaltLen)
	}
	return argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen), nil
}

// RandomSalt returns n cryptographically random bytes, suitable as an
// Argon2 salt (n should be >= 16).
func RandomSalt(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := crand.Read(b); err != nil {
		return nil, WrapError(KindInvalidInput, err, "salt generation failed")
	}
	return b, nil
}

// Sign signs message with the keypair's private key, returning a Signature
// that carries the signer's public key (spec §4.1).
func (kp *Keypair) Sign(message []byte) Signature {
	sig := ed25519.Sign(kp.PrivateKey, message)
	return Signature{Sig: sig, PublicKey: append([]byte(nil), kp.PublicKey...)}
}

// Verify reports whether sig is a valid Ed25519 signature of message under
// the public key it carries. The underlying comparison
// (ed25519.Verify) is constant-time in the signature bytes, satisfying
// spec §4.1's constant-time requirement.
func (s Signature) Verify(message []byte) bool {
	if len(s.PublicKey) != ed25519.PublicKeySize || len(s.Sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(s.PublicKey), message, s.Sig)
}

// ConstantTimeEqual compares two byte slices in constant time, used
// wherever a raw (non-ed25519.Verify) comparison of secret-derived material
// is needed.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// DeriveAddress derives a Vanta address from a public key: the first 40 hex
// characters of SHA-256(pubkey) (spec §4.1).
func DeriveAddress(pub ed25519.PublicKey) Address {
	sum := sha256.Sum256(pub)
	return Address(hex.EncodeToString(sum[:])[:40])
}

// Address returns the address derived from the keypair's public key.
func (kp *Keypair) Address() Address { return DeriveAddress(kp.PublicKey) }

// SecureZero overwrites b with zeros in place (best effort — the Go garbage
// collector may have already copied the underlying array elsewhere).
func SecureZero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// KeypairFromSeed derives a deterministic Ed25519 keypair from a 32-byte
// seed, such as the truncated output of a BIP-39 mnemonic seed (spec §4.1
// recovery path; mirrors the teacher's NewHDWalletFromSeed, minus the
// hierarchical child-key derivation this module's single-address wallets
// don't need).
func KeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, NewError(KindInvalidInput, "seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return &Keypair{PrivateKey: priv, PublicKey: pub}, nil
}

// PublicKeyFromHex decodes a hex-encoded 32-byte Ed25519 public key.
func PublicKeyFromHex(s string) (ed25519.PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("public key: invalid hex: %w", err)
	}
	if len(b) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key: expected %d bytes, got %d", ed25519.PublicKeySize, len(b))
	}
	return ed25519.PublicKey(b), nil
}

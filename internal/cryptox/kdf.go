// Package cryptox implements the vault's key derivation and envelope
// encryption. Derived keys exist only in memory; losing the master secret
// makes every stored envelope permanently unreadable, there is no
// recovery key.
package cryptox

import (
	"crypto/sha256"

	"github.com/securepass/vault/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the length of a derived AES-256 key.
	KeySize = 32

	// SaltSize is the required length of a per-user KDF salt.
	SaltSize = 32

	// kdfIterations is the PBKDF2 round count. High enough to slow
	// offline brute force; changing it changes every derived key, so it
	// is fixed for the lifetime of stored data.
	kdfIterations = 150_000
)

// DeriveKey stretches a master secret and a per-user salt into a 32-byte
// symmetric key using PBKDF2-SHA256. It is deterministic: identical inputs
// always produce the identical key, and different salts produce unlinkable
// keys even under a shared master secret.
//
// The only failure mode is a salt of the wrong length; input content is
// never rejected.
func DeriveKey(masterSecret []byte, salt []byte) ([]byte, error) {
	if len(salt) != SaltSize {
		return nil, common.ErrInvalidSaltLength
	}
	return pbkdf2.Key(masterSecret, salt, kdfIterations, KeySize, sha256.New), nil
}

// NewSalt returns a fresh random KDF salt.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

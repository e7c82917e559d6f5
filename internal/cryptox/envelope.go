package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"

	"github.com/securepass/vault/internal/common"
)

// Encrypt seals plaintext under key with AES-256-GCM and returns an opaque
// text envelope: base64(nonce || ciphertext+tag).
//
// A fresh random nonce is generated on every call, so encrypting the same
// plaintext twice yields different envelopes. The nonce is never derived
// from a counter, which keeps it safe across process restarts.
func Encrypt(key []byte, plaintext []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := aesgcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens an envelope produced by Encrypt. Any failure to decode,
// split, or authenticate the envelope surfaces as
// common.ErrAuthenticationFailed: wrong key, corruption, and tampering are
// indistinguishable by design, and altered plaintext is never returned.
func Decrypt(key []byte, envelope string) ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return nil, common.ErrAuthenticationFailed
	}

	// A key of the wrong length fails like any other bad-key decrypt;
	// callers never see raw cipher setup errors.
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, common.ErrAuthenticationFailed
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, common.ErrAuthenticationFailed
	}

	if len(sealed) < aesgcm.NonceSize() {
		return nil, common.ErrAuthenticationFailed
	}
	nonce, ciphertext := sealed[:aesgcm.NonceSize()], sealed[aesgcm.NonceSize():]

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, common.ErrAuthenticationFailed
	}
	return plaintext, nil
}

package common

import (
	"crypto/rand"
	"encoding/hex"
)

// AuthHeaderName is the HTTP header carrying the bearer session token.
const AuthHeaderName = "Authorization"

// GenerateRandByteArray returns size cryptographically random bytes.
// It panics if the system RNG is unavailable, since nothing in the vault
// can proceed securely without randomness.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// MakeRandHexString generates a random hexadecimal string of the given size.
// The size parameter is the number of random bytes, so the resulting string
// is twice as long. It returns an error if the random number generator fails.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray overwrites the contents of the provided byte slice with
// zeros. Used to drop master secrets and derived keys from memory as soon
// as they are no longer needed. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}

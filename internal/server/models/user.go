// Package models contains the persistent record types shared by
// repositories and services.
package models

import "time"

// User is an identity record. PasswordHash is a one-way bcrypt hash of the
// master secret used only to authenticate logins; KdfSalt is the separate
// per-user salt clients use to derive the encryption key. The two are
// cryptographically unrelated.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	KdfSalt      []byte
	CreatedAt    time.Time
}

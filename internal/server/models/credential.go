package models

import "time"

// Credential is a stored login for a domain, owned exclusively by UserID.
// Secret is an opaque envelope produced by cryptox.Encrypt; plaintext never
// reaches this layer. A (UserID, Domain) pair is not unique, lookups favor
// the most recently updated row.
type Credential struct {
	ID        string
	UserID    string
	Domain    string
	Username  string
	Secret    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

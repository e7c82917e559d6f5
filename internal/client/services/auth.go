// Package services contains application services for the vault client:
// authentication with client-side key derivation, and vault operations
// that encrypt and decrypt locally so plaintext never leaves the machine.
package services

import (
	"context"

	"github.com/securepass/vault/internal/client/api"
	"github.com/securepass/vault/internal/cryptox"
)

// apiClient is the server surface the client services need. *api.Client
// satisfies it; tests substitute a fake.
type apiClient interface {
	Register(ctx context.Context, name, email string, password []byte) (*api.AuthResult, error)
	Login(ctx context.Context, email string, password []byte) (*api.AuthResult, error)
	Logout(ctx context.Context) error
	GetSalt(ctx context.Context, email string) ([]byte, error)
	SetToken(token string)
	CreateCredential(ctx context.Context, domain, username, envelope string) (*api.Credential, error)
	ListCredentials(ctx context.Context) ([]api.Credential, error)
	GetCredential(ctx context.Context, domain string) (*api.Credential, error)
	DeleteCredential(ctx context.Context, id string) error
	PresignBackupUpload(ctx context.Context) (*api.BackupUpload, error)
	PresignBackupDownload(ctx context.Context, key string) (string, error)
}

// AuthService defines authentication operations for the CLI.
//
// Register and Login return the master key derived from the password and
// the server-held salt. The key lives only in client memory; callers wipe
// it on logout.
type AuthService interface {
	Register(ctx context.Context, name, email string, password []byte) ([]byte, error)
	Login(ctx context.Context, email string, password []byte) ([]byte, error)
	Logout(ctx context.Context) error
}

type authService struct {
	client apiClient
}

// NewAuthService constructs an AuthService bound to the given API client.
func NewAuthService(client apiClient) AuthService {
	return &authService{client: client}
}

// Register creates the account, stores the session token on the API
// client, and derives the master key from the freshly assigned salt.
func (a *authService) Register(ctx context.Context, name, email string, password []byte) ([]byte, error) {
	result, err := a.client.Register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	a.client.SetToken(result.Token)

	salt, err := a.client.GetSalt(ctx, email)
	if err != nil {
		return nil, err
	}

	return cryptox.DeriveKey(password, salt)
}

// Login fetches the account's salt, derives the master key, and
// authenticates. The salt round trip happens before login so a wrong
// password costs the server only one bcrypt comparison.
func (a *authService) Login(ctx context.Context, email string, password []byte) ([]byte, error) {
	salt, err := a.client.GetSalt(ctx, email)
	if err != nil {
		return nil, err
	}

	key, err := cryptox.DeriveKey(password, salt)
	if err != nil {
		return nil, err
	}

	result, err := a.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	a.client.SetToken(result.Token)

	return key, nil
}

// Logout revokes the server session and clears the stored token.
func (a *authService) Logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil {
		return err
	}
	a.client.SetToken("")
	return nil
}

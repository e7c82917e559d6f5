package services

import (
	"context"
	"sync"

	"github.com/securepass/vault/internal/client/api"
	"github.com/securepass/vault/internal/common"
)

// fakeAPI is an in-memory stand-in for the server API.
type fakeAPI struct {
	mu    sync.Mutex
	token string
	salt  []byte

	registerResult *api.AuthResult
	registerErr    error
	loginResult    *api.AuthResult
	loginErr       error
	logoutErr      error
	saltErr        error

	creds map[string]api.Credential
	seq   int

	uploadKey   string
	uploadURL   string
	downloadURL string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{creds: make(map[string]api.Credential)}
}

func (f *fakeAPI) Register(ctx context.Context, name, email string, password []byte) (*api.AuthResult, error) {
	return f.registerResult, f.registerErr
}

func (f *fakeAPI) Login(ctx context.Context, email string, password []byte) (*api.AuthResult, error) {
	return f.loginResult, f.loginErr
}

func (f *fakeAPI) Logout(ctx context.Context) error { return f.logoutErr }

func (f *fakeAPI) GetSalt(ctx context.Context, email string) ([]byte, error) {
	return f.salt, f.saltErr
}

func (f *fakeAPI) SetToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *fakeAPI) CreateCredential(ctx context.Context, domain, username, envelope string) (*api.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	cred := api.Credential{ID: "c-" + domain, Domain: domain, Username: username, Secret: envelope}
	f.creds[cred.ID] = cred
	return &cred, nil
}

func (f *fakeAPI) ListCredentials(ctx context.Context) ([]api.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]api.Credential, 0, len(f.creds))
	for _, c := range f.creds {
		result = append(result, c)
	}
	return result, nil
}

func (f *fakeAPI) GetCredential(ctx context.Context, domain string) (*api.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.creds {
		if c.Domain == domain {
			return &c, nil
		}
	}
	return nil, api.ErrNotFound
}

func (f *fakeAPI) DeleteCredential(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.creds[id]; !ok {
		return api.ErrNotFound
	}
	delete(f.creds, id)
	return nil
}

func (f *fakeAPI) PresignBackupUpload(ctx context.Context) (*api.BackupUpload, error) {
	return &api.BackupUpload{Key: f.uploadKey, URL: f.uploadURL}, nil
}

func (f *fakeAPI) PresignBackupDownload(ctx context.Context, key string) (string, error) {
	if key != f.uploadKey {
		return "", common.ErrorNotFound
	}
	return f.downloadURL, nil
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/securepass/vault/internal/client/api"
	"github.com/securepass/vault/internal/cryptox"
	"github.com/securepass/vault/internal/filex"
	"github.com/securepass/vault/internal/netx"
)

// Item is a decrypted credential as shown to the user.
type Item struct {
	ID       string
	Domain   string
	Username string
	Secret   []byte
}

// VaultService defines credential operations for the CLI. Secrets are
// sealed with the master key before they leave the process and opened
// only after they come back.
type VaultService interface {
	Add(ctx context.Context, masterKey []byte, domain, username string, secret []byte) error
	Get(ctx context.Context, masterKey []byte, domain string) (*Item, error)
	List(ctx context.Context) ([]api.Credential, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, masterKey []byte, dirName string) (string, error)
	Backup(ctx context.Context, masterKey []byte) (string, error)
	Restore(ctx context.Context, masterKey []byte, key string) ([]Item, error)
}

type vaultService struct {
	client apiClient
}

// NewVaultService constructs a VaultService bound to the given API client.
func NewVaultService(client apiClient) VaultService {
	return &vaultService{client: client}
}

func (v *vaultService) Add(ctx context.Context, masterKey []byte, domain, username string, secret []byte) error {
	envelope, err := cryptox.Encrypt(masterKey, secret)
	if err != nil {
		return err
	}

	_, err = v.client.CreateCredential(ctx, domain, username, envelope)
	return err
}

func (v *vaultService) Get(ctx context.Context, masterKey []byte, domain string) (*Item, error) {
	cred, err := v.client.GetCredential(ctx, domain)
	if err != nil {
		return nil, err
	}

	secret, err := cryptox.Decrypt(masterKey, cred.Secret)
	if err != nil {
		return nil, err
	}

	return &Item{ID: cred.ID, Domain: cred.Domain, Username: cred.Username, Secret: secret}, nil
}

// List returns credential metadata with secrets still enveloped.
func (v *vaultService) List(ctx context.Context) ([]api.Credential, error) {
	return v.client.ListCredentials(ctx)
}

func (v *vaultService) Delete(ctx context.Context, id string) error {
	return v.client.DeleteCredential(ctx, id)
}

// exportBlob builds the encrypted vault snapshot used by Export and
// Backup. The per-credential envelopes stay sealed inside it, so the
// snapshot is double-encrypted.
func (v *vaultService) exportBlob(ctx context.Context, masterKey []byte) ([]byte, error) {
	creds, err := v.client.ListCredentials(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return nil, err
	}

	envelope, err := cryptox.Encrypt(masterKey, data)
	if err != nil {
		return nil, err
	}

	return []byte(envelope), nil
}

// Export writes an encrypted vault snapshot into dirName under the
// current directory and returns the file path.
func (v *vaultService) Export(ctx context.Context, masterKey []byte, dirName string) (string, error) {
	blob, err := v.exportBlob(ctx, masterKey)
	if err != nil {
		return "", err
	}

	dir, err := filex.EnsureSubDir(dirName)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, fmt.Sprintf("vault-%s.enc", time.Now().Format("20060102-150405")))
	if err := os.WriteFile(path, blob, 0o600); err != nil {
		return "", err
	}

	return path, nil
}

// Backup uploads an encrypted vault snapshot to object storage through a
// presigned URL and returns the storage key needed to restore it.
func (v *vaultService) Backup(ctx context.Context, masterKey []byte) (string, error) {
	blob, err := v.exportBlob(ctx, masterKey)
	if err != nil {
		return "", err
	}

	upload, err := v.client.PresignBackupUpload(ctx)
	if err != nil {
		return "", err
	}

	if err := netx.UploadToS3PresignedURL(upload.URL, blob); err != nil {
		return "", err
	}

	return upload.Key, nil
}

// Restore downloads the backup stored under key, opens the snapshot, and
// decrypts every credential in it.
func (v *vaultService) Restore(ctx context.Context, masterKey []byte, key string) ([]Item, error) {
	url, err := v.client.PresignBackupDownload(ctx, key)
	if err != nil {
		return nil, err
	}

	blob, err := netx.DownloadFromS3PresignedURL(url)
	if err != nil {
		return nil, err
	}

	data, err := cryptox.Decrypt(masterKey, string(blob))
	if err != nil {
		return nil, err
	}

	var creds []api.Credential
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(creds))
	for _, c := range creds {
		secret, err := cryptox.Decrypt(masterKey, c.Secret)
		if err != nil {
			return nil, err
		}
		items = append(items, Item{ID: c.ID, Domain: c.Domain, Username: c.Username, Secret: secret})
	}

	return items, nil
}

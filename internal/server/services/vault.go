package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/securepass/vault/internal/common"
	"github.com/securepass/vault/internal/server/models"
	"github.com/securepass/vault/internal/server/repositories/repomanager"
)

// VaultService is the credential store. Every operation is scoped to the
// calling user's resolved identity; secrets cross this boundary only as
// opaque envelopes, never as plaintext.
type VaultService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewVaultService constructs a VaultService using repositories.
func NewVaultService(db *sql.DB, m repomanager.RepositoryManager) *VaultService {
	return &VaultService{db: db, repomanager: m}
}

// Put stores a new credential for userID. Duplicate (userID, domain)
// pairs are allowed; reads favor the most recently updated row.
func (s *VaultService) Put(ctx context.Context, userID, domain, username, envelope string) (*models.Credential, error) {
	cred := &models.Credential{
		UserID:   userID,
		Domain:   domain,
		Username: username,
		Secret:   envelope,
	}

	repo := s.repomanager.Credentials(s.db)
	cred, err := repo.Create(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("error creating credential: %w", err)
	}

	return cred, nil
}

// Get returns the most recently updated credential for (userID, domain).
// Returns common.ErrorNotFound when the user has none for that domain.
func (s *VaultService) Get(ctx context.Context, userID, domain string) (*models.Credential, error) {
	repo := s.repomanager.Credentials(s.db)

	cred, err := repo.GetLatestByDomain(ctx, userID, domain)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return cred, nil
}

// GetByID returns a credential by primary key, but only to its owner:
// another user's valid ID yields common.ErrForbidden.
func (s *VaultService) GetByID(ctx context.Context, userID, id string) (*models.Credential, error) {
	return s.ownedByID(ctx, userID, id)
}

// List returns all credentials owned by userID, most recently updated
// first.
func (s *VaultService) List(ctx context.Context, userID string) ([]*models.Credential, error) {
	repo := s.repomanager.Credentials(s.db)

	creds, err := repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return creds, nil
}

// Update rewrites the credential with the given ID. The record's owner is
// checked against userID before anything is mutated; a mismatch fails
// with common.ErrForbidden, a missing record with common.ErrorNotFound.
func (s *VaultService) Update(ctx context.Context, userID, id, domain, username, envelope string) (*models.Credential, error) {
	cred, err := s.ownedByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	cred.Domain = domain
	cred.Username = username
	cred.Secret = envelope

	repo := s.repomanager.Credentials(s.db)
	if err := repo.Update(ctx, cred); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	return cred, nil
}

// Delete removes the credential with the given ID after the same
// ownership check as Update.
func (s *VaultService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.ownedByID(ctx, userID, id); err != nil {
		return err
	}

	repo := s.repomanager.Credentials(s.db)
	if err := repo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	return nil
}

// ownedByID loads a credential and enforces that userID owns it.
func (s *VaultService) ownedByID(ctx context.Context, userID, id string) (*models.Credential, error) {
	repo := s.repomanager.Credentials(s.db)

	cred, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	if cred.UserID != userID {
		return nil, common.ErrForbidden
	}

	return cred, nil
}

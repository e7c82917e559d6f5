// Package credentials declares the server-side repository contract for
// encrypted credential records.
package credentials

import (
	"context"

	"github.com/securepass/vault/internal/server/models"
)

// Repository defines storage operations for credential records. Records
// hold only envelopes; ownership checks against the calling user are the
// service layer's job, which is why GetByID is unscoped.
type Repository interface {
	// Create inserts a new record and fills in its generated ID and
	// timestamps.
	Create(ctx context.Context, cred *models.Credential) (*models.Credential, error)

	// GetByID returns a record by primary key regardless of owner.
	// Returns common.ErrorNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.Credential, error)

	// GetLatestByDomain returns the most recently updated record for
	// (userID, domain). Returns common.ErrorNotFound when absent.
	GetLatestByDomain(ctx context.Context, userID string, domain string) (*models.Credential, error)

	// ListByUserID returns all records owned by userID, most recently
	// updated first.
	ListByUserID(ctx context.Context, userID string) ([]*models.Credential, error)

	// Update rewrites domain, username, and secret of the record with
	// cred.ID and bumps updated_at.
	Update(ctx context.Context, cred *models.Credential) error

	// Delete removes a record by primary key.
	Delete(ctx context.Context, id string) error
}

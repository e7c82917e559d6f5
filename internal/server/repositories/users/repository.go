// Package users declares the server-side repository contract for identity
// records.
package users

import (
	"context"

	"github.com/securepass/vault/internal/server/models"
)

// Repository defines storage operations for user identities.
type Repository interface {
	// Create inserts a new identity. It returns common.ErrDuplicateEmail
	// when the email is already registered.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail looks an identity up by its unique email.
	// Returns common.ErrorNotFound when absent.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID looks an identity up by its primary key.
	// Returns common.ErrorNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// Delete removes an identity. Sessions and credentials owned by it are
	// removed by the schema's cascade rules.
	Delete(ctx context.Context, id string) error
}

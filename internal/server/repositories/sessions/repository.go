// Package sessions declares the server-side repository contract for
// session rows backing bearer tokens.
package sessions

import (
	"context"
	"time"

	"github.com/securepass/vault/internal/server/models"
)

// Repository defines operations for issuing, resolving, and revoking
// sessions. The session row is the source of truth for validity: a signed
// token whose row has been deleted must not verify.
type Repository interface {
	// Create inserts a new session. The caller assigns the ID so the
	// signed token can reference it.
	Create(ctx context.Context, session *models.Session) error

	// GetByID returns the session row for the given ID.
	// Returns common.ErrorNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.Session, error)

	// DeleteByUserID removes every session owned by userID and reports
	// how many rows were deleted.
	DeleteByUserID(ctx context.Context, userID string) (int64, error)

	// DeleteExpired removes sessions whose expiry is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

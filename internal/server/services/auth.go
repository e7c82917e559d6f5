package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/securepass/vault/internal/common"
	"github.com/securepass/vault/internal/dbx"
	"github.com/securepass/vault/internal/server/models"
)

// AuthService is the façade external collaborators call. It composes the
// identity ledger and the session manager into four operations: signup,
// login, logout, and verify. It is the only entry point that ever sees a
// master secret, and only transiently.
type AuthService struct {
	db       *sql.DB
	users    *UserService
	sessions *SessionService
}

// NewAuthService constructs the façade over the given services.
func NewAuthService(db *sql.DB, users *UserService, sessions *SessionService) *AuthService {
	return &AuthService{db: db, users: users, sessions: sessions}
}

// Signup registers a new identity and issues its first session in a
// single transaction, so a half-created account can never hold a live
// token. Fails with common.ErrDuplicateEmail.
func (a *AuthService) Signup(ctx context.Context, name, email string, masterSecret []byte) (*models.User, *models.Session, error) {
	var (
		user    *models.User
		session *models.Session
	)

	err := dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		user, err = a.users.createUser(ctx, tx, name, email, masterSecret)
		if err != nil {
			return err
		}
		session, err = a.sessions.IssueTx(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, nil, common.ErrDuplicateEmail
		}
		return nil, nil, common.ErrorInternal
	}

	return user, session, nil
}

// Login verifies a master-secret proof and issues a fresh session. Fails
// with common.ErrInvalidCredentials, never distinguishing unknown emails
// from wrong secrets.
func (a *AuthService) Login(ctx context.Context, email string, masterSecret []byte) (*models.User, *models.Session, error) {
	user, err := a.users.VerifyUser(ctx, email, masterSecret)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			return nil, nil, common.ErrInvalidCredentials
		}
		return nil, nil, common.ErrorInternal
	}

	session, err := a.sessions.Issue(ctx, user.ID)
	if err != nil {
		return nil, nil, common.ErrorInternal
	}

	return user, session, nil
}

// Logout resolves the token and revokes every session of its owner. One
// logical logout invalidates all outstanding device sessions.
func (a *AuthService) Logout(ctx context.Context, token string) error {
	userID, err := a.sessions.Verify(ctx, token)
	if err != nil {
		return err
	}
	return a.sessions.Revoke(ctx, userID)
}

// Verify resolves the token to its owning identity. Fails with
// common.ErrUnauthenticated or common.ErrSessionExpired.
func (a *AuthService) Verify(ctx context.Context, token string) (*models.User, error) {
	userID, err := a.sessions.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Identity deleted while the session row somehow survived.
			return nil, common.ErrUnauthenticated
		}
		return nil, common.ErrorInternal
	}

	return user, nil
}

// GetSalt exposes the ledger's salt lookup to the transport layer.
func (a *AuthService) GetSalt(ctx context.Context, email string) ([]byte, error) {
	return a.users.GetSalt(ctx, email)
}

// DeleteAccount revokes the owner's sessions and removes the identity;
// the schema cascades to all stored credentials.
func (a *AuthService) DeleteAccount(ctx context.Context, token string) error {
	userID, err := a.sessions.Verify(ctx, token)
	if err != nil {
		return err
	}
	if err := a.sessions.Revoke(ctx, userID); err != nil {
		return err
	}
	return a.users.DeleteUser(ctx, userID)
}

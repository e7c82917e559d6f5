// Package services contains server-side business logic: the identity
// ledger, the session manager, the credential vault, and the auth façade
// that composes them.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/securepass/vault/internal/common"
	"github.com/securepass/vault/internal/cryptox"
	"github.com/securepass/vault/internal/dbx"
	"github.com/securepass/vault/internal/server/models"
	"github.com/securepass/vault/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when an email is unknown so that login
// latency does not reveal whether the account exists.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("securepass-dummy"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}()

// UserService is the identity ledger. It stores a one-way bcrypt hash of
// the master secret for login proofs and a separate random KDF salt for
// client-side key derivation; the raw secret is never persisted and the
// two values are cryptographically unrelated.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewUserService constructs a UserService using repositories.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager) *UserService {
	return &UserService{db: db, repomanager: m}
}

// CreateUser registers a new identity. The master secret is hashed with
// bcrypt and a fresh KDF salt is generated. Returns
// common.ErrDuplicateEmail when the email is taken.
func (s *UserService) CreateUser(ctx context.Context, name, email string, masterSecret []byte) (*models.User, error) {
	return s.createUser(ctx, s.db, name, email, masterSecret)
}

// createUser is the DBTX-bound variant used inside transactions.
func (s *UserService) createUser(ctx context.Context, tx dbx.DBTX, name, email string, masterSecret []byte) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword(masterSecret, bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing master secret: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		KdfSalt:      cryptox.NewSalt(),
	}

	repo := s.repomanager.Users(tx)
	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// VerifyUser checks a login proof. Unknown emails and wrong secrets both
// yield common.ErrInvalidCredentials so the error cannot be used to
// enumerate accounts; a dummy bcrypt comparison keeps the two paths at
// comparable cost.
func (s *UserService) VerifyUser(ctx context.Context, email string, masterSecret []byte) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, masterSecret)
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), masterSecret); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID resolves an identity by primary key.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// GetSalt returns the user's stored KDF salt or a random salt if the user
// is absent, to avoid leaking existence.
func (s *UserService) GetSalt(ctx context.Context, email string) ([]byte, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return cryptox.NewSalt(), nil
		}
		return nil, common.ErrorInternal
	}

	return user.KdfSalt, nil
}

// DeleteUser removes an identity; the schema cascades the delete to every
// session and credential the identity owns.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	repo := s.repomanager.Users(s.db)
	if err := repo.Delete(ctx, id); err != nil {
		return common.ErrorInternal
	}
	return nil
}

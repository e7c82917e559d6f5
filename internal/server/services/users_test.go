package services

import (
	"context"
	"errors"
	"testing"

	"github.com/securepass/vault/internal/common"
	"github.com/securepass/vault/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(t *testing.T) (*UserService, *fakeRepoManager) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	t.Cleanup(func() { db.Close() })
	m := newFakeRepoManager()
	return NewUserService(db, m), m
}

func TestCreateUser_HashesAndSalts(t *testing.T) {
	svc, _ := newUserService(t)

	secret := []byte("Sup3r$ecret1")
	user, err := svc.CreateUser(context.Background(), "Ann", "ann@x.com", secret)
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ann@x.com", user.Email)

	// Stored hash verifies the secret but is not the secret.
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), secret))
	assert.NotEqual(t, string(secret), user.PasswordHash)

	// KDF salt is usable for key derivation and unrelated to the hash.
	assert.Len(t, user.KdfSalt, cryptox.SaltSize)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	svc, _ := newUserService(t)

	_, err := svc.CreateUser(context.Background(), "Ann", "ann@x.com", []byte("s1"))
	require.NoError(t, err)

	_, err = svc.CreateUser(context.Background(), "Other Ann", "ann@x.com", []byte("s2"))
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)
}

func TestCreateUser_DistinctSaltsPerUser(t *testing.T) {
	svc, _ := newUserService(t)

	u1, err := svc.CreateUser(context.Background(), "Ann", "ann@x.com", []byte("same-secret"))
	require.NoError(t, err)
	u2, err := svc.CreateUser(context.Background(), "Bob", "bob@x.com", []byte("same-secret"))
	require.NoError(t, err)

	assert.NotEqual(t, u1.KdfSalt, u2.KdfSalt)
}

func TestVerifyUser_Success(t *testing.T) {
	svc, _ := newUserService(t)

	created, err := svc.CreateUser(context.Background(), "Ann", "ann@x.com", []byte("Sup3r$ecret1"))
	require.NoError(t, err)

	got, err := svc.VerifyUser(context.Background(), "ann@x.com", []byte("Sup3r$ecret1"))
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestVerifyUser_NoEnumeration(t *testing.T) {
	svc, _ := newUserService(t)

	_, err := svc.CreateUser(context.Background(), "Ann", "ann@x.com", []byte("Sup3r$ecret1"))
	require.NoError(t, err)

	// Unknown email and wrong secret must be indistinguishable.
	_, errUnknown := svc.VerifyUser(context.Background(), "nonexistent@x.com", []byte("anything"))
	_, errWrong := svc.VerifyUser(context.Background(), "ann@x.com", []byte("wrongsecret"))

	assert.ErrorIs(t, errUnknown, common.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, common.ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errWrong)
}

func TestVerifyUser_RepoError(t *testing.T) {
	svc, m := newUserService(t)
	m.u.getErr = errors.New("db down")

	_, err := svc.VerifyUser(context.Background(), "ann@x.com", []byte("x"))
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestGetSalt_KnownUser(t *testing.T) {
	svc, _ := newUserService(t)

	user, err := svc.CreateUser(context.Background(), "Ann", "ann@x.com", []byte("s"))
	require.NoError(t, err)

	salt, err := svc.GetSalt(context.Background(), "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.KdfSalt, salt)
}

func TestGetSalt_UnknownUserGetsRandomSalt(t *testing.T) {
	svc, _ := newUserService(t)

	// A well-formed salt comes back even for absent users, so the
	// endpoint cannot confirm account existence.
	salt1, err := svc.GetSalt(context.Background(), "ghost@x.com")
	require.NoError(t, err)
	assert.Len(t, salt1, cryptox.SaltSize)

	salt2, err := svc.GetSalt(context.Background(), "ghost@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, salt1, salt2)
}

func TestDeleteUser_RemovesIdentity(t *testing.T) {
	svc, _ := newUserService(t)

	user, err := svc.CreateUser(context.Background(), "Ann", "ann@x.com", []byte("s"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(context.Background(), user.ID))

	_, err = svc.GetByID(context.Background(), user.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/securepass/vault/internal/common"
	"github.com/securepass/vault/internal/dbx"
	"github.com/securepass/vault/internal/server/config"
	"github.com/securepass/vault/internal/server/models"
	"github.com/securepass/vault/internal/server/repositories/credentials"
	"github.com/securepass/vault/internal/server/repositories/sessions"
	"github.com/securepass/vault/internal/server/repositories/users"
)

// -------- in-memory fakes --------

type fakeUsersRepo struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	byEmail map[string]*models.User

	createErr error
	getErr    error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

func (f *fakeUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[user.Email]; ok {
		return nil, common.ErrDuplicateEmail
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user
	return user, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil
	}
	delete(f.byEmail, u.Email)
	delete(f.byID, id)
	return nil
}

type fakeSessionsRepo struct {
	mu       sync.Mutex
	byID     map[string]*models.Session
	getCalls int
}

func newFakeSessionsRepo() *fakeSessionsRepo {
	return &fakeSessionsRepo{byID: make(map[string]*models.Session)}
}

func (f *fakeSessionsRepo) Create(ctx context.Context, session *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *session
	f.byID[session.ID] = &copied
	return nil
}

func (f *fakeSessionsRepo) GetByID(ctx context.Context, id string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	s, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionsRepo) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, s := range f.byID {
		if s.UserID == userID {
			delete(f.byID, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeSessionsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, s := range f.byID {
		if !s.ExpiresAt.After(now) {
			delete(f.byID, id)
			n++
		}
	}
	return n, nil
}

// expire force-expires a stored session row without touching its token.
func (f *fakeSessionsRepo) expire(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.byID[id]; ok {
		s.ExpiresAt = time.Now().Add(-time.Minute)
	}
}

type fakeCredentialsRepo struct {
	mu   sync.Mutex
	byID map[string]*models.Credential
	seq  int
}

func newFakeCredentialsRepo() *fakeCredentialsRepo {
	return &fakeCredentialsRepo{byID: make(map[string]*models.Credential)}
}

func (f *fakeCredentialsRepo) Create(ctx context.Context, cred *models.Credential) (*models.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	cred.ID = uuid.NewString()
	cred.CreatedAt = time.Now()
	// Strictly increasing so "latest" ordering is deterministic.
	cred.UpdatedAt = time.Now().Add(time.Duration(f.seq) * time.Millisecond)
	copied := *cred
	f.byID[cred.ID] = &copied
	return cred, nil
}

func (f *fakeCredentialsRepo) GetByID(ctx context.Context, id string) (*models.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCredentialsRepo) GetLatestByDomain(ctx context.Context, userID string, domain string) (*models.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *models.Credential
	for _, c := range f.byID {
		if c.UserID != userID || c.Domain != domain {
			continue
		}
		if latest == nil || c.UpdatedAt.After(latest.UpdatedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, common.ErrorNotFound
	}
	copied := *latest
	return &copied, nil
}

func (f *fakeCredentialsRepo) ListByUserID(ctx context.Context, userID string) ([]*models.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*models.Credential
	for _, c := range f.byID {
		if c.UserID == userID {
			copied := *c
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

func (f *fakeCredentialsRepo) Update(ctx context.Context, cred *models.Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[cred.ID]
	if !ok {
		return common.ErrorNotFound
	}
	f.seq++
	stored.Domain = cred.Domain
	stored.Username = cred.Username
	stored.Secret = cred.Secret
	stored.UpdatedAt = time.Now().Add(time.Duration(f.seq) * time.Millisecond)
	return nil
}

func (f *fakeCredentialsRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	s *fakeSessionsRepo
	c *fakeCredentialsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u: newFakeUsersRepo(),
		s: newFakeSessionsRepo(),
		c: newFakeCredentialsRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository                  { return m.u }
func (m *fakeRepoManager) Sessions(db dbx.DBTX) sessions.Repository            { return m.s }
func (m *fakeRepoManager) Credentials(db dbx.DBTX) credentials.Repository      { return m.c }

// -------- helpers --------

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:      "test-secret",
		SessionTTL:     time.Hour,
		VerifyCacheTTL: time.Minute,
	}
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/securepass/vault/internal/common"
	"github.com/securepass/vault/internal/dbx"
	"github.com/securepass/vault/internal/server/auth"
	"github.com/securepass/vault/internal/server/config"
	"github.com/securepass/vault/internal/server/models"
	"github.com/securepass/vault/internal/server/repositories/repomanager"
)

// timeNow is a seam for tests.
var timeNow = time.Now

// cacheEntry records a successful verification. An entry may satisfy
// repeat verifications for up to the cache TTL without re-reading the
// session row; Revoke removes the owner's entries synchronously, so the
// staleness window never survives an explicit logout.
type cacheEntry struct {
	sessionID string
	userID    string
	expiresAt time.Time
	cachedAt  time.Time
}

// verifyCache is the short-lived session verification cache, keyed by
// token. Safe for concurrent use.
type verifyCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

func newVerifyCache() *verifyCache {
	return &verifyCache{entries: make(map[string]cacheEntry)}
}

func (c *verifyCache) get(token string) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[token]
	return e, ok
}

func (c *verifyCache) put(token string, e cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[token] = e
}

func (c *verifyCache) drop(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, token)
}

// purgeStale removes entries that can no longer satisfy a verification:
// the cache window has lapsed or the session itself has expired. Without
// this, tokens verified once and never presented again would sit in the
// map until process exit.
func (c *verifyCache) purgeStale(now time.Time, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for token, e := range c.entries {
		if now.Sub(e.cachedAt) >= ttl || !now.Before(e.expiresAt) {
			delete(c.entries, token)
		}
	}
}

// purgeUser removes every cached entry owned by userID.
func (c *verifyCache) purgeUser(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for token, e := range c.entries {
		if e.userID == userID {
			delete(c.entries, token)
		}
	}
}

// SessionService manages the session lifecycle: issue on login, verify on
// every vault call, revoke on logout. The session row in the database is
// the source of truth; the JWT signature alone never grants access.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	jwtSecret   []byte
	sessionTTL  time.Duration
	cacheTTL    time.Duration
	cache       *verifyCache
}

// NewSessionService constructs a SessionService from repositories and
// server config.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *SessionService {
	return &SessionService{
		db:          db,
		repomanager: m,
		jwtSecret:   []byte(cfg.SecretKey),
		sessionTTL:  cfg.SessionTTL,
		cacheTTL:    cfg.VerifyCacheTTL,
		cache:       newVerifyCache(),
	}
}

// Issue creates a new session for userID and returns it with its signed
// token. Each login gets its own session; concurrent sessions from
// multiple logins are allowed until an explicit revoke.
func (s *SessionService) Issue(ctx context.Context, userID string) (*models.Session, error) {
	return s.IssueTx(ctx, s.db, userID)
}

// IssueTx is the DBTX-bound variant of Issue, used when session creation
// must join a larger transaction (e.g. signup).
func (s *SessionService) IssueTx(ctx context.Context, tx dbx.DBTX, userID string) (*models.Session, error) {
	now := timeNow()

	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	token, err := auth.GenerateToken(session.ID, userID, s.jwtSecret, s.sessionTTL)
	if err != nil {
		return nil, common.ErrorInternal
	}
	session.Token = token

	repo := s.repomanager.Sessions(tx)
	if err := repo.Create(ctx, session); err != nil {
		return nil, common.ErrorInternal
	}

	return session, nil
}

// Verify resolves a bearer token to the owning userID.
//
// The token signature and expiry are checked first, then the backing
// session row is loaded: a revoked (deleted) row fails verification even
// though the signature is still valid. A successful check is cached for
// the configured grace window to spare the database on hot paths.
//
// Failures map to common.ErrSessionExpired for expired sessions and
// common.ErrUnauthenticated for everything else.
func (s *SessionService) Verify(ctx context.Context, token string) (string, error) {
	now := timeNow()

	if e, ok := s.cache.get(token); ok {
		if now.Sub(e.cachedAt) < s.cacheTTL {
			if !now.Before(e.expiresAt) {
				s.cache.drop(token)
				return "", common.ErrSessionExpired
			}
			return e.userID, nil
		}
		s.cache.drop(token)
	}

	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrSessionExpired) {
			return "", common.ErrSessionExpired
		}
		return "", common.ErrUnauthenticated
	}

	repo := s.repomanager.Sessions(s.db)
	session, err := repo.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Row gone: revoked or swept.
			return "", common.ErrUnauthenticated
		}
		return "", common.ErrorInternal
	}

	if session.UserID != claims.UserID {
		return "", common.ErrUnauthenticated
	}
	if !session.Valid(now) {
		return "", common.ErrSessionExpired
	}

	s.cache.put(token, cacheEntry{
		sessionID: session.ID,
		userID:    session.UserID,
		expiresAt: session.ExpiresAt,
		cachedAt:  now,
	})

	return session.UserID, nil
}

// Revoke deletes every session owned by userID and synchronously purges
// the verification cache, so no grace window survives a logout.
func (s *SessionService) Revoke(ctx context.Context, userID string) error {
	repo := s.repomanager.Sessions(s.db)
	if _, err := repo.DeleteByUserID(ctx, userID); err != nil {
		return common.ErrorInternal
	}
	s.cache.purgeUser(userID)
	return nil
}

// PurgeExpired removes expired session rows and sweeps stale entries out
// of the verification cache. Run periodically; expired sessions already
// fail verification, this just keeps the table and the cache small.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	now := timeNow()
	s.cache.purgeStale(now, s.cacheTTL)
	repo := s.repomanager.Sessions(s.db)
	return repo.DeleteExpired(ctx, now)
}

// Package httpapi exposes the vault over a JSON HTTP API: auth endpoints
// for signup, login, logout and salt retrieval, credential CRUD scoped to
// the authenticated user, and presigned backup URLs.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/securepass/vault/internal/logging"
	"github.com/securepass/vault/internal/server/models"
)

type authSvc interface {
	Signup(ctx context.Context, name, email string, masterSecret []byte) (*models.User, *models.Session, error)
	Login(ctx context.Context, email string, masterSecret []byte) (*models.User, *models.Session, error)
	Logout(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) (*models.User, error)
	GetSalt(ctx context.Context, email string) ([]byte, error)
	DeleteAccount(ctx context.Context, token string) error
}

type vaultSvc interface {
	Put(ctx context.Context, userID, domain, username, envelope string) (*models.Credential, error)
	Get(ctx context.Context, userID, domain string) (*models.Credential, error)
	List(ctx context.Context, userID string) ([]*models.Credential, error)
	Update(ctx context.Context, userID, id, domain, username, envelope string) (*models.Credential, error)
	Delete(ctx context.Context, userID, id string) error
}

type backupSvc interface {
	PresignUpload(ctx context.Context, userID string) (string, string, error)
	PresignDownload(ctx context.Context, userID, key string) (string, error)
}

type Server struct {
	address string
	logger  logging.Logger
	auth    authSvc
	vault   vaultSvc
	backup  backupSvc
}

func NewServer(a string, l logging.Logger, as authSvc, vs vaultSvc, bs backupSvc) *Server {
	return &Server{
		address: a,
		logger:  l.With("module", "http_server"),
		auth:    as,
		vault:   vs,
		backup:  bs,
	}
}

// routes wires every endpoint. Method-qualified patterns keep the mux
// returning 405 for wrong verbs without extra plumbing.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("GET /api/salt", s.handleGetSalt)

	mux.Handle("POST /api/logout", s.requireAuth(s.handleLogout))
	mux.Handle("GET /api/verify", s.requireAuth(s.handleVerify))
	mux.Handle("DELETE /api/account", s.requireAuth(s.handleDeleteAccount))

	mux.Handle("POST /api/passwords", s.requireAuth(s.handleCreateCredential))
	mux.Handle("GET /api/passwords", s.requireAuth(s.handleListCredentials))
	mux.Handle("GET /api/passwords/{domain}", s.requireAuth(s.handleGetCredential))
	mux.Handle("PUT /api/passwords/id/{id}", s.requireAuth(s.handleUpdateCredential))
	mux.Handle("DELETE /api/passwords/id/{id}", s.requireAuth(s.handleDeleteCredential))

	mux.Handle("POST /api/backups", s.requireAuth(s.handleBackupUpload))
	mux.Handle("GET /api/backups/{key...}", s.requireAuth(s.handleBackupDownload))

	return mux
}

func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

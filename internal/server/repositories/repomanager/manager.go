package repomanager

import (
	"context"
	"database/sql"

	"github.com/securepass/vault/internal/dbx"
	"github.com/securepass/vault/internal/server/repositories/credentials"
	"github.com/securepass/vault/internal/server/repositories/sessions"
	"github.com/securepass/vault/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Credentials(db dbx.DBTX) credentials.Repository
}

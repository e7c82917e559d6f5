package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/securepass/vault/internal/common"
	"github.com/securepass/vault/internal/dbx"
	"github.com/securepass/vault/internal/server/models"
)

// PostgresRepository implements credential storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, cred *models.Credential) (*models.Credential, error) {
	query := `
		INSERT INTO credentials (user_id, domain, username, secret)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		cred.UserID, cred.Domain, cred.Username, cred.Secret).
		Scan(&cred.ID, &cred.CreatedAt, &cred.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return cred, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Credential, error) {
	query := `
		SELECT id, user_id, domain, username, secret, created_at, updated_at FROM credentials
		WHERE id = $1
	`
	cred := &models.Credential{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&cred.ID, &cred.UserID, &cred.Domain, &cred.Username, &cred.Secret,
		&cred.CreatedAt, &cred.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return cred, nil
}

func (r *PostgresRepository) GetLatestByDomain(ctx context.Context, userID string, domain string) (*models.Credential, error) {
	query := `
		SELECT id, user_id, domain, username, secret, created_at, updated_at FROM credentials
		WHERE user_id = $1 AND domain = $2
		ORDER BY updated_at DESC
		LIMIT 1
	`
	cred := &models.Credential{}
	err := r.db.QueryRowContext(ctx, query, userID, domain).Scan(
		&cred.ID, &cred.UserID, &cred.Domain, &cred.Username, &cred.Secret,
		&cred.CreatedAt, &cred.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return cred, nil
}

func (r *PostgresRepository) ListByUserID(ctx context.Context, userID string) ([]*models.Credential, error) {
	query := `
		SELECT id, user_id, domain, username, secret, created_at, updated_at FROM credentials
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Credential
	for rows.Next() {
		var item models.Credential
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Domain, &item.Username, &item.Secret,
			&item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, cred *models.Credential) error {
	query := `
		UPDATE credentials
		SET domain = $2, username = $3, secret = $4, updated_at = now()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, cred.ID, cred.Domain, cred.Username, cred.Secret)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM credentials
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

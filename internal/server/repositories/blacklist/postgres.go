package blacklist

import (
	"context"
	"fmt"
	"time"

	"github.com/lifecourse/lifecourse/internal/dbx"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx). Duplicate inserts are serialized by the
// unique constraint on token_hash; no application-level lock is taken.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Add(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO token_blacklist (token_hash, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (token_hash) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, tokenHash, expiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Exists(ctx context.Context, tokenHash string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE token_hash = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) CleanupExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM token_blacklist WHERE expires_at < $1`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return deleted, nil
}

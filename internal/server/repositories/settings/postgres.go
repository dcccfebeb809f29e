// Package settings provides a PostgreSQL-backed repository for application
// settings with field-level encryption of sensitive values.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lifecourse/lifecourse/internal/common"
	"github.com/lifecourse/lifecourse/internal/cryptox"
	"github.com/lifecourse/lifecourse/internal/dbx"
)

// PostgresRepository implements Repository over dbx.DBTX with a FieldCipher
// for sensitive values.
type PostgresRepository struct {
	db     dbx.DBTX
	cipher *cryptox.FieldCipher
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX, cipher *cryptox.FieldCipher) *PostgresRepository {
	return &PostgresRepository{db: db, cipher: cipher}
}

func (r *PostgresRepository) Set(ctx context.Context, key, value string, sensitive bool) error {
	stored := value
	if sensitive {
		sealed, err := r.cipher.Encrypt(value)
		if err != nil {
			return fmt.Errorf("encrypting setting %s: %w", key, err)
		}
		stored = sealed
	}

	query := `
		INSERT INTO app_settings (key, value, encrypted, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (key) DO UPDATE SET value = $2, encrypted = $3, updated_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, key, stored, sensitive); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, key string) (string, error) {
	query := `SELECT value, encrypted FROM app_settings WHERE key = $1`

	var value string
	var encrypted bool
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&value, &encrypted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}

	// Rows written before the encrypted column existed carry encrypted=false
	// even when the value is an envelope, hence the format fallback.
	if encrypted || r.cipher.IsEncrypted(value) {
		plain, err := r.cipher.Decrypt(value)
		if err != nil {
			return "", fmt.Errorf("decrypting setting %s: %w", key, err)
		}
		return plain, nil
	}
	return value, nil
}

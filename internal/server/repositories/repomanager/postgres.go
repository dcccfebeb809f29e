package repomanager

import (
	"context"
	"database/sql"

	"github.com/lifecourse/lifecourse/internal/cryptox"
	"github.com/lifecourse/lifecourse/internal/dbx"
	"github.com/lifecourse/lifecourse/internal/server/migrations"
	"github.com/lifecourse/lifecourse/internal/server/repositories/blacklist"
	"github.com/lifecourse/lifecourse/internal/server/repositories/settings"
	"github.com/lifecourse/lifecourse/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager builds the Postgres repository set. The field
// cipher is injected here so the settings repository can seal sensitive
// values without consumers knowing about encryption.
type PostgresRepositoryManager struct {
	cipher *cryptox.FieldCipher
}

func NewPostgresRepositoryManager(cipher *cryptox.FieldCipher) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{cipher: cipher}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Blacklist(db dbx.DBTX) blacklist.Repository {
	return blacklist.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Settings(db dbx.DBTX) settings.Repository {
	return settings.NewPostgresRepository(db, m.cipher)
}

// RunMigrations applies the embedded goose migrations. Migrations are
// idempotent (CREATE ... IF NOT EXISTS), so running at every startup is safe.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// Package repomanager wires concrete repositories to database handles and
// owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/lifecourse/lifecourse/internal/dbx"
	"github.com/lifecourse/lifecourse/internal/server/repositories/blacklist"
	"github.com/lifecourse/lifecourse/internal/server/repositories/settings"
	"github.com/lifecourse/lifecourse/internal/server/repositories/users"
)

// RepositoryManager creates repositories bound to a DBTX, so services can
// use the same repository code inside and outside transactions.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Blacklist(db dbx.DBTX) blacklist.Repository
	Settings(db dbx.DBTX) settings.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}

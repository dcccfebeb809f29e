package blacklist

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestHashToken(t *testing.T) {
	h := HashToken("some.jwt.token")
	if len(h) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(h))
	}
	if h != HashToken("some.jwt.token") {
		t.Fatalf("hash is not deterministic")
	}
	if h == HashToken("other.jwt.token") {
		t.Fatalf("distinct tokens collided")
	}
	if h == "some.jwt.token" {
		t.Fatalf("hash equals input")
	}
}

func TestAdd_UsesConflictTolerantInsert(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	expires := time.Now().Add(time.Hour)
	q := `(?s)^\s*INSERT\s+INTO\s+token_blacklist\s*\(token_hash,\s*expires_at\)\s*VALUES\s*\(\$1,\s*\$2\)\s*ON\s+CONFLICT\s*\(token_hash\)\s*DO\s+NOTHING`

	mock.ExpectExec(q).
		WithArgs("abc123", expires).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Add(context.Background(), "abc123", expires); err != nil {
		t.Fatalf("Add error: %v", err)
	}
}

func TestAdd_DuplicateIsNoOp(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	expires := time.Now().Add(time.Hour)

	// Second insert hits the conflict clause: zero rows affected, no error.
	mock.ExpectExec(`INSERT\s+INTO\s+token_blacklist`).
		WithArgs("abc123", expires).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT\s+INTO\s+token_blacklist`).
		WithArgs("abc123", expires).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Add(context.Background(), "abc123", expires); err != nil {
		t.Fatalf("first Add error: %v", err)
	}
	if err := repo.Add(context.Background(), "abc123", expires); err != nil {
		t.Fatalf("second Add error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAdd_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+token_blacklist`).
		WillReturnError(errors.New("db down"))

	err := repo.Add(context.Background(), "abc123", time.Now())
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestExists(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+token_blacklist\s+WHERE\s+token_hash\s*=\s*\$1\)`

	mock.ExpectQuery(q).
		WithArgs("present").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(q).
		WithArgs("absent").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	got, err := repo.Exists(context.Background(), "present")
	if err != nil || !got {
		t.Fatalf("Exists(present) = %v, %v", got, err)
	}
	got, err = repo.Exists(context.Background(), "absent")
	if err != nil || got {
		t.Fatalf("Exists(absent) = %v, %v", got, err)
	}
}

func TestExists_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+EXISTS`).
		WillReturnError(errors.New("timeout"))

	_, err := repo.Exists(context.Background(), "x")
	if err == nil {
		t.Fatalf("expected error to propagate for the service to apply fail-open/fail-closed policy")
	}
}

func TestCleanupExpired(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec(`DELETE\s+FROM\s+token_blacklist\s+WHERE\s+expires_at\s*<\s*\$1`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 17))

	deleted, err := repo.CleanupExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("CleanupExpired error: %v", err)
	}
	if deleted != 17 {
		t.Fatalf("expected 17 deleted, got %d", deleted)
	}
}

func TestCleanupExpired_RowsAffectedError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+token_blacklist`).
		WillReturnResult(sqlmock.NewErrorResult(errors.New("driver glitch")))

	_, err := repo.CleanupExpired(context.Background(), time.Now())
	if err == nil || !regexp.MustCompile(`db error: .*driver glitch`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

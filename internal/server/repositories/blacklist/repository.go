// Package blacklist persists one-way hashes of explicitly invalidated
// tokens so a logged-out token is rejected before its natural expiry.
package blacklist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// HashToken returns the hex SHA-256 digest of a token string. Only this
// digest is ever stored; the raw token would be a replayable secret.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

type Repository interface {
	// Add inserts a blacklist row. Inserting an already-blacklisted hash is
	// a no-op, not an error.
	Add(ctx context.Context, tokenHash string, expiresAt time.Time) error

	// Exists reports whether the hash is currently blacklisted.
	Exists(ctx context.Context, tokenHash string) (bool, error)

	// CleanupExpired removes rows whose expiry has passed and returns the
	// number deleted.
	CleanupExpired(ctx context.Context, now time.Time) (int64, error)
}

package models

import "time"

// BlacklistEntry records an explicitly invalidated token. Only a one-way
// hash of the token is stored, never the token itself.
type BlacklistEntry struct {
	ID        int64
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

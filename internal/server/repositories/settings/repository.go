package settings

import "context"

// Repository stores application settings. Sensitive values are encrypted at
// this boundary: sealed on write, opened on read, so callers only ever see
// plaintext and the cryptographic work happens at an explicit, visible point.
type Repository interface {
	Set(ctx context.Context, key, value string, sensitive bool) error
	Get(ctx context.Context, key string) (string, error)
}

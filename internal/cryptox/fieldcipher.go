// Package cryptox implements authenticated field-level encryption for
// sensitive database columns. Values are sealed with AES-256-GCM and stored
// as a delimited envelope of hex-encoded nonce, auth tag and ciphertext.
package cryptox

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/lifecourse/lifecourse/internal/common"
	"github.com/lifecourse/lifecourse/internal/logging"
	"golang.org/x/crypto/argon2"
)

const (
	envelopeSep = ":"
	nonceSize   = 12
	tagSize     = 16
	keySize     = 32

	// auditEvery controls how often cumulative op counts are logged.
	auditEvery = 1000
)

// kdfSalt is fixed: the KDF here only stretches an operator-supplied
// passphrase into a full-length key, it does not protect stored hashes.
var kdfSalt = []byte("lifecourse-field-cipher-v1")

// devFallbackSecret is used when no DB_ENCRYPTION_KEY is configured.
// Data encrypted with it is recoverable by anyone with the source code.
const devFallbackSecret = "lifecourse-dev-only-encryption-key"

// FieldCipher encrypts and decrypts individual string values. Construct one
// at startup and inject it into consumers; it is safe for concurrent use.
type FieldCipher struct {
	aead       cipher.AEAD
	logger     logging.Logger
	encryptOps atomic.Uint64
	decryptOps atomic.Uint64
}

// New builds a FieldCipher from a 32-byte key. See KeyFromSecret for turning
// operator configuration into a key.
func New(key []byte, logger logging.Logger) (*FieldCipher, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("field cipher key must be %d bytes, got %d", keySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return &FieldCipher{aead: aead, logger: logger.With("module", "field_cipher")}, nil
}

// KeyFromSecret derives the process-wide encryption key from operator
// configuration. A 64-character hex secret is decoded directly; any other
// non-empty secret is treated as a passphrase and stretched with argon2id.
// An empty secret falls back to a key derived from a compiled-in string,
// which is loudly logged and must never be used in production.
func KeyFromSecret(ctx context.Context, secret string, logger logging.Logger) []byte {
	if secret == "" {
		logger.Warn(ctx, "DB_ENCRYPTION_KEY is not set, using insecure built-in fallback key; do not run this in production")
		secret = devFallbackSecret
	} else if len(secret) == 2*keySize {
		if key, err := hex.DecodeString(secret); err == nil {
			return key
		}
		// Not valid hex despite the length: treat as a passphrase.
	}

	pass := []byte(secret)
	key := argon2.IDKey(pass, kdfSalt, 1, 64*1024, 4, keySize)
	common.WipeByteArray(pass)
	return key
}

// Encrypt seals plaintext with a fresh random nonce and returns the
// hex(nonce):hex(tag):hex(ciphertext) envelope. Nonces are 12 random bytes
// per call; reusing one under the same key would break confidentiality.
func (f *FieldCipher) Encrypt(plaintext string) (string, error) {
	nonce := common.GenerateRandByteArray(nonceSize)

	sealed := f.aead.Seal(nil, nonce, []byte(plaintext), nil)
	// Seal appends the tag after the ciphertext.
	body := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	f.countOp(&f.encryptOps, "encrypt")

	return hex.EncodeToString(nonce) + envelopeSep +
		hex.EncodeToString(tag) + envelopeSep +
		hex.EncodeToString(body), nil
}

// Decrypt parses an envelope, verifies the auth tag and returns plaintext.
// Any parse or tag failure returns an error; corrupted data is never
// released.
func (f *FieldCipher) Decrypt(envelope string) (string, error) {
	nonce, tag, body, err := splitEnvelope(envelope)
	if err != nil {
		return "", err
	}

	plaintext, err := f.aead.Open(nil, nonce, append(body, tag...), nil)
	if err != nil {
		return "", fmt.Errorf("decrypting field: %w", err)
	}

	f.countOp(&f.decryptOps, "decrypt")

	return string(plaintext), nil
}

// IsEncrypted reports whether value looks like an envelope produced by
// Encrypt. This is a format heuristic, not a guarantee: a plaintext that
// happens to match the shape would be misclassified. New writes should track
// encryption state explicitly instead of relying on this.
func (f *FieldCipher) IsEncrypted(value string) bool {
	nonce, tag, _, err := splitEnvelope(value)
	if err != nil {
		return false
	}
	return len(nonce) == nonceSize && len(tag) == tagSize
}

// Stats returns cumulative encrypt/decrypt call counts.
func (f *FieldCipher) Stats() (encrypts, decrypts uint64) {
	return f.encryptOps.Load(), f.decryptOps.Load()
}

func (f *FieldCipher) countOp(counter *atomic.Uint64, op string) {
	n := counter.Add(1)
	if n%auditEvery == 0 {
		enc, dec := f.Stats()
		f.logger.Debug(context.Background(), "field cipher audit", "op", op, "encrypts", enc, "decrypts", dec)
	}
}

func splitEnvelope(envelope string) (nonce, tag, body []byte, err error) {
	parts := strings.Split(envelope, envelopeSep)
	if len(parts) != 3 {
		return nil, nil, nil, fmt.Errorf("%w: expected 3 segments, got %d", common.ErrMalformedEnvelope, len(parts))
	}
	if nonce, err = hex.DecodeString(parts[0]); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: bad nonce segment", common.ErrMalformedEnvelope)
	}
	if tag, err = hex.DecodeString(parts[1]); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: bad tag segment", common.ErrMalformedEnvelope)
	}
	if body, err = hex.DecodeString(parts[2]); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: bad ciphertext segment", common.ErrMalformedEnvelope)
	}
	if len(nonce) == 0 || len(tag) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: empty segment", common.ErrMalformedEnvelope)
	}
	return nonce, tag, body, nil
}

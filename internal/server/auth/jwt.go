package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lifecourse/lifecourse/internal/common"
)

// Class selects which secret and lifetime apply to a token.
type Class int

const (
	ClassAccess Class = iota
	ClassRefresh
)

func (c Class) String() string {
	if c == ClassRefresh {
		return "refresh"
	}
	return "access"
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Issuer mints and verifies HS256 tokens. Issuance is stateless: expiry lives
// inside the signed payload and nothing is persisted server-side.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// IssuerOption configures an Issuer.
type IssuerOption func(*Issuer)

// WithNowTime sets the clock function (primarily for testing).
func WithNowTime(now func() time.Time) IssuerOption {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer validates the secret pair and returns an Issuer. The two secrets
// must be non-empty and distinct; sharing one would let a refresh token pass
// as an access token.
func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, opts ...IssuerOption) (*Issuer, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("token secrets must not be empty")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("access and refresh token secrets must differ")
	}
	i := &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Issue mints an access/refresh pair carrying the given claims. A fresh
// session ID is assigned when the claims don't carry one, so both tokens of
// a pair share it.
func (i *Issuer) Issue(claims Claims) (*TokenPair, error) {
	if claims.SessionID == "" {
		claims.SessionID = uuid.NewString()
	}

	access, err := i.sign(claims, ClassAccess)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}
	refresh, err := i.sign(claims, ClassRefresh)
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Verify validates tokenString against the secret for the given class and
// returns the decoded claims. Signature mismatch, malformation and expiry
// all collapse into common.ErrInvalidToken; the wrapped cause is for
// server-side logs only and must not be surfaced to callers.
func (i *Issuer) Verify(tokenString string, class Class) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return i.secretFor(class), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w (%s): %s", common.ErrInvalidToken, class, err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// RefreshTTL returns the configured refresh-token lifetime (used for cookie
// max-age).
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

func (i *Issuer) sign(claims Claims, class Class) (string, error) {
	ttl := i.accessTTL
	if class == ClassRefresh {
		ttl = i.refreshTTL
	}
	now := i.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secretFor(class))
}

func (i *Issuer) secretFor(class Class) []byte {
	if class == ClassRefresh {
		return i.refreshSecret
	}
	return i.accessSecret
}

// ExtractBearer pulls the token out of an "Authorization: Bearer <token>"
// header value. It fails softly: ok is false for an absent or malformed
// header, and the caller decides whether anonymous access is allowed.
func ExtractBearer(header string) (token string, ok bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(parts[1])
	return token, token != ""
}

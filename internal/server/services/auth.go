// Package services contains server-side business logic. This file implements
// AuthService, which handles credential verification, issuing/refreshing
// JWT pairs, and logout blacklisting.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lifecourse/lifecourse/internal/common"
	"github.com/lifecourse/lifecourse/internal/dbx"
	"github.com/lifecourse/lifecourse/internal/logging"
	"github.com/lifecourse/lifecourse/internal/server/auth"
	"github.com/lifecourse/lifecourse/internal/server/models"
	"github.com/lifecourse/lifecourse/internal/server/repositories/blacklist"
	"github.com/lifecourse/lifecourse/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// dummyPasswordHash is compared against when the username does not exist, so
// the unknown-user and wrong-password paths cost the same bcrypt work.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// LoginResult bundles the minted token pair with the authenticated user row.
type LoginResult struct {
	Pair *auth.TokenPair
	User *models.User
}

// AuthService provides authentication operations:
//   - Login: verify credentials and mint a token pair
//   - Refresh: rotate a refresh token into a fresh pair
//   - Logout: blacklist presented tokens
//   - RevokeAllSessions: invalidate every outstanding refresh token of a user
type AuthService struct {
	db         *sql.DB
	repos      repomanager.RepositoryManager
	issuer     *auth.Issuer
	logger     logging.Logger
	failClosed bool
	now        func() time.Time
}

// AuthServiceOption configures an AuthService.
type AuthServiceOption func(*AuthService)

// WithNowTime sets the clock function (primarily for testing).
func WithNowTime(now func() time.Time) AuthServiceOption {
	return func(s *AuthService) { s.now = now }
}

// WithFailClosedBlacklist makes a failing blacklist lookup reject the token
// instead of letting it pass. Default is fail-open: a storage hiccup must
// not lock out every user.
func WithFailClosedBlacklist(failClosed bool) AuthServiceOption {
	return func(s *AuthService) { s.failClosed = failClosed }
}

// NewAuthService constructs an AuthService using repositories, the token
// issuer, and a logger.
func NewAuthService(db *sql.DB, repos repomanager.RepositoryManager, issuer *auth.Issuer, logger logging.Logger, opts ...AuthServiceOption) *AuthService {
	s := &AuthService{
		db:     db,
		repos:  repos,
		issuer: issuer,
		logger: logger.With("module", "auth_service"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login verifies the username/password pair and mints a token pair. Unknown
// usernames, wrong passwords and deactivated accounts all collapse into
// common.ErrorUnauthorized; the distinction exists only in server-side logs.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	repo := s.repos.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Burn the same bcrypt cost as the found path.
			_ = bcrypt.CompareHashAndPassword([]byte(dummyPasswordHash), []byte(password))
			s.logger.Info(ctx, "login rejected", "reason", "unknown username")
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "login user lookup failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info(ctx, "login rejected", "reason", "password mismatch", "user_id", user.ID)
		return nil, common.ErrorUnauthorized
	}

	if !user.IsActive {
		s.logger.Info(ctx, "login rejected", "reason", "account deactivated", "user_id", user.ID)
		return nil, common.ErrorUnauthorized
	}

	pair, err := s.issuer.Issue(s.claimsFor(user))
	if err != nil {
		s.logger.Error(ctx, "token issuance failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	// Best effort: a failed stamp never fails the login.
	if err := repo.StampLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn(ctx, "last-login stamp failed", "user_id", user.ID, "error", err.Error())
	}

	s.logger.Info(ctx, "login ok", "user_id", user.ID, "role", user.Role)
	return &LoginResult{Pair: pair, User: user}, nil
}

// Refresh validates a refresh token and mints an entirely new pair. The user
// row is re-read so a role change, deactivation or token-version bump takes
// effect now rather than at the next full login. Safe to invoke repeatedly:
// each call depends only on the token just validated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := s.issuer.Verify(refreshToken, auth.ClassRefresh)
	if err != nil {
		s.logger.Info(ctx, "refresh rejected", "reason", err.Error())
		return nil, common.ErrorUnauthorized
	}

	if s.isBlacklisted(ctx, refreshToken) {
		s.logger.Info(ctx, "refresh rejected", "reason", "token blacklisted", "user_id", claims.UserID)
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repos.Users(s.db).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Info(ctx, "refresh rejected", "reason", "user gone", "user_id", claims.UserID)
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "refresh user reload failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	if !user.IsActive {
		s.logger.Info(ctx, "refresh rejected", "reason", "account deactivated", "user_id", user.ID)
		return nil, common.ErrorUnauthorized
	}
	if user.TokenVersion != claims.TokenVersion {
		s.logger.Info(ctx, "refresh rejected", "reason", "token version stale",
			"user_id", user.ID, "token_version", claims.TokenVersion, "current_version", user.TokenVersion)
		return nil, common.ErrorUnauthorized
	}

	pair, err := s.issuer.Issue(s.claimsFor(user))
	if err != nil {
		s.logger.Error(ctx, "token issuance failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	return &LoginResult{Pair: pair, User: user}, nil
}

// Logout blacklists whichever of the presented tokens still verify, in one
// transaction so a pair is revoked together or not at all. Garbage or
// already-expired tokens are skipped silently; logout never fails.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) {
	type entry struct {
		hash      string
		expiresAt time.Time
	}
	var entries []entry
	for _, t := range []struct {
		token string
		class auth.Class
	}{
		{accessToken, auth.ClassAccess},
		{refreshToken, auth.ClassRefresh},
	} {
		if t.token == "" {
			continue
		}
		claims, err := s.issuer.Verify(t.token, t.class)
		if err != nil {
			// Expired or forged: nothing worth blacklisting.
			s.logger.Debug(ctx, "skipping blacklist of unverifiable token", "class", t.class.String())
			continue
		}
		entries = append(entries, entry{blacklist.HashToken(t.token), claims.ExpiresAt.Time})
	}
	if len(entries) == 0 {
		return
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Blacklist(tx)
		for _, e := range entries {
			if err := repo.Add(ctx, e.hash, e.expiresAt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Warn(ctx, "blacklist insert failed", "error", err.Error())
	}
}

// RevokeAllSessions bumps the user's token version so every outstanding
// refresh token stops rotating. Access tokens already in flight age out
// within their short lifetime.
func (s *AuthService) RevokeAllSessions(ctx context.Context, userID int64) error {
	version, err := s.repos.Users(s.db).IncrementTokenVersion(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "token version bump failed", "user_id", userID, "error", err.Error())
		return common.ErrorInternal
	}
	s.logger.Info(ctx, "all sessions revoked", "user_id", userID, "token_version", version)
	return nil
}

// VerifyAccess validates a bearer access token for the request middleware:
// signature/expiry first, then the defensive blacklist lookup.
func (s *AuthService) VerifyAccess(ctx context.Context, accessToken string) (*auth.Claims, error) {
	claims, err := s.issuer.Verify(accessToken, auth.ClassAccess)
	if err != nil {
		s.logger.Debug(ctx, "access token rejected", "reason", err.Error())
		return nil, common.ErrInvalidToken
	}
	if s.isBlacklisted(ctx, accessToken) {
		s.logger.Info(ctx, "access token rejected", "reason", "token blacklisted", "user_id", claims.UserID)
		return nil, common.ErrTokenBlacklisted
	}
	return claims, nil
}

// CleanupBlacklist removes expired blacklist rows. Failures are logged and
// swallowed: an expired token already fails normal verification, stale rows
// only cost storage.
func (s *AuthService) CleanupBlacklist(ctx context.Context) {
	deleted, err := s.repos.Blacklist(s.db).CleanupExpired(ctx, s.now())
	if err != nil {
		s.logger.Warn(ctx, "blacklist cleanup failed", "error", err.Error())
		return
	}
	if deleted > 0 {
		s.logger.Info(ctx, "blacklist cleanup", "deleted", deleted)
	}
}

func (s *AuthService) claimsFor(user *models.User) auth.Claims {
	c := auth.Claims{
		UserID:       user.ID,
		Username:     user.Username,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
	}
	if user.OrganizationID != nil {
		c.OrganizationID = user.OrganizationID
	}
	if user.OrganizationName != nil {
		c.OrganizationName = *user.OrganizationName
	}
	return c
}

// isBlacklisted applies the configured degradation policy: when the lookup
// itself fails, fail-open treats the token as clean (availability over
// strict revocation), fail-closed rejects it.
func (s *AuthService) isBlacklisted(ctx context.Context, token string) bool {
	exists, err := s.repos.Blacklist(s.db).Exists(ctx, blacklist.HashToken(token))
	if err != nil {
		s.logger.Warn(ctx, "blacklist lookup failed", "fail_closed", s.failClosed, "error", err.Error())
		return s.failClosed
	}
	return exists
}

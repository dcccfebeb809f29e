package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lifecourse/lifecourse/internal/common"
	"github.com/lifecourse/lifecourse/internal/server/auth"
)

// Context keys for values stored in gin.Context.
const (
	keyClaims = "auth_claims"
	keyUserID = "auth_user_id"
	keyRole   = "auth_role"
)

// claimsFrom returns the verified claims placed by requireAuth, or nil when
// the request is unauthenticated.
func claimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(keyClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

// requireAuth verifies the bearer access token and stores the claims in the
// context. A missing/malformed header and a failing token produce distinct
// error codes but equally coarse messages.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.ExtractBearer(c.GetHeader(common.AuthorizationHeaderName))
		if !ok {
			s.respondError(c, http.StatusUnauthorized, CodeTokenMissing, "authorization required", "")
			return
		}

		claims, err := s.auth.VerifyAccess(c.Request.Context(), token)
		if err != nil {
			s.respondError(c, http.StatusUnauthorized, CodeTokenInvalid, "invalid token", "")
			return
		}

		c.Set(keyClaims, claims)
		c.Set(keyUserID, claims.UserID)
		c.Set(keyRole, claims.Role)
		c.Next()
	}
}

// requireRole gates a route to the given roles. Must run after requireAuth.
func (s *Server) requireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			s.respondError(c, http.StatusUnauthorized, CodeTokenMissing, "authorization required", "")
			return
		}
		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}
		s.respondError(c, http.StatusForbidden, CodeForbidden, "forbidden", "")
	}
}

// requestLogger emits one structured line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

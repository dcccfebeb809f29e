package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lifecourse/lifecourse/internal/common"
)

// Stable error codes returned to clients. The SPA switches on these, so they
// are part of the API contract.
const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeTokenMissing       = "AUTH_TOKEN_MISSING"
	CodeTokenInvalid       = "AUTH_TOKEN_INVALID"
	CodeRefreshMissing     = "AUTH_REFRESH_MISSING"
	CodeRefreshInvalid     = "AUTH_REFRESH_INVALID"
	CodeForbidden          = "AUTH_FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeInternal           = "INTERNAL_ERROR"
)

// respondError writes the uniform error shape. detail is only included in
// development; production responses carry the coarse message alone.
func (s *Server) respondError(c *gin.Context, status int, code, message, detail string) {
	body := gin.H{"code": code, "message": message}
	if detail != "" && !s.production {
		body["detail"] = detail
	}
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

// mapServiceError converts service sentinels into HTTP responses. Every
// authentication failure carries the same coarse message regardless of root
// cause; the cause lives in server-side logs only.
func (s *Server) mapServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		s.respondError(c, http.StatusUnauthorized, CodeInvalidCredentials, "invalid credentials", "")
	case errors.Is(err, common.ErrorForbidden):
		s.respondError(c, http.StatusForbidden, CodeForbidden, "forbidden", "")
	case errors.Is(err, common.ErrorNotFound):
		s.respondError(c, http.StatusNotFound, CodeNotFound, "not found", "")
	default:
		s.respondError(c, http.StatusInternalServerError, CodeInternal, "internal error", err.Error())
	}
}

package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lifecourse/lifecourse/internal/common"
	"github.com/lifecourse/lifecourse/internal/server/auth"
	"github.com/lifecourse/lifecourse/internal/server/models"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// userView is the user shape returned to the SPA. The password hash and
// internal bookkeeping columns never leave the server.
type userView struct {
	ID               int64   `json:"id"`
	Username         string  `json:"username"`
	Role             string  `json:"role"`
	OrganizationID   *int64  `json:"organizationId,omitempty"`
	OrganizationName *string `json:"organizationName,omitempty"`
}

func viewOf(user *models.User) userView {
	return userView{
		ID:               user.ID,
		Username:         user.Username,
		Role:             user.Role,
		OrganizationID:   user.OrganizationID,
		OrganizationName: user.OrganizationName,
	}
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, CodeValidationError, "username and password are required", err.Error())
		return
	}

	res, err := s.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.mapServiceError(c, err)
		return
	}

	s.setRefreshCookie(c, res.Pair.RefreshToken)
	c.JSON(http.StatusOK, gin.H{
		"accessToken": res.Pair.AccessToken,
		"user":        viewOf(res.User),
	})
}

func (s *Server) refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(common.RefreshCookieName)
	if err != nil || refreshToken == "" {
		s.respondError(c, http.StatusUnauthorized, CodeRefreshMissing, "authentication required", "")
		return
	}

	res, err := s.auth.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		// A storage failure says nothing about the token; keep the cookie so
		// the client can retry once the database recovers.
		if errors.Is(err, common.ErrorInternal) {
			s.mapServiceError(c, err)
			return
		}
		// The stale cookie is useless now; drop it so the SPA goes back
		// to the login page instead of retrying forever.
		s.clearRefreshCookie(c)
		s.respondError(c, http.StatusUnauthorized, CodeRefreshInvalid, "authentication required", "")
		return
	}

	s.setRefreshCookie(c, res.Pair.RefreshToken)
	c.JSON(http.StatusOK, gin.H{"accessToken": res.Pair.AccessToken})
}

// logout blacklists whatever tokens the client presented and clears the
// refresh cookie. Always 200: logging out twice is not an error.
func (s *Server) logout(c *gin.Context) {
	accessToken, _ := auth.ExtractBearer(c.GetHeader(common.AuthorizationHeaderName))
	refreshToken, _ := c.Cookie(common.RefreshCookieName)

	s.auth.Logout(c.Request.Context(), accessToken, refreshToken)
	s.clearRefreshCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// logoutAll revokes every session of the calling user, then blacklists the
// tokens used for this request as well.
func (s *Server) logoutAll(c *gin.Context) {
	claims := claimsFrom(c)
	if claims == nil {
		s.respondError(c, http.StatusUnauthorized, CodeTokenMissing, "authorization required", "")
		return
	}

	if err := s.auth.RevokeAllSessions(c.Request.Context(), claims.UserID); err != nil {
		s.mapServiceError(c, err)
		return
	}

	accessToken, _ := auth.ExtractBearer(c.GetHeader(common.AuthorizationHeaderName))
	refreshToken, _ := c.Cookie(common.RefreshCookieName)
	s.auth.Logout(c.Request.Context(), accessToken, refreshToken)
	s.clearRefreshCookie(c)

	c.JSON(http.StatusOK, gin.H{"message": "all sessions revoked"})
}

func (s *Server) me(c *gin.Context) {
	claims := claimsFrom(c)
	if claims == nil {
		s.respondError(c, http.StatusUnauthorized, CodeTokenMissing, "authorization required", "")
		return
	}

	view := userView{
		ID:             claims.UserID,
		Username:       claims.Username,
		Role:           claims.Role,
		OrganizationID: claims.OrganizationID,
	}
	if claims.OrganizationName != "" {
		view.OrganizationName = &claims.OrganizationName
	}
	c.JSON(http.StatusOK, gin.H{"user": view})
}

// revokeUserSessions is the admin primitive behind "invalidate all sessions
// for user X".
func (s *Server) revokeUserSessions(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, CodeValidationError, "invalid user id", err.Error())
		return
	}

	if err := s.auth.RevokeAllSessions(c.Request.Context(), userID); err != nil {
		s.mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "sessions revoked", "userId": userID})
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lifecourse/lifecourse/internal/common"
)

// setRefreshCookie attaches the refresh token as an HTTP-only, SameSite
// strict cookie scoped to the auth endpoints. Secure is set in production;
// local development runs over plain HTTP.
func (s *Server) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(common.RefreshCookieName, token,
		int(s.refreshTTL.Seconds()), common.RefreshCookiePath, "", s.production, true)
}

// clearRefreshCookie expires the refresh cookie immediately.
func (s *Server) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(common.RefreshCookieName, "", -1, common.RefreshCookiePath, "", s.production, true)
}

// Package httpapi exposes the authentication service over REST using gin.
package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lifecourse/lifecourse/internal/logging"
	"github.com/lifecourse/lifecourse/internal/server/auth"
	"github.com/lifecourse/lifecourse/internal/server/config"
	"github.com/lifecourse/lifecourse/internal/server/services"
)

type Server struct {
	address    string
	logger     logging.Logger
	auth       *services.AuthService
	db         *sql.DB
	production bool
	refreshTTL time.Duration
	engine     *gin.Engine
}

func NewServer(cfg *config.Config, logger logging.Logger, authSvc *services.AuthService, db *sql.DB, refreshTTL time.Duration) *Server {
	production := cfg.IsProduction()
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		address:    cfg.Address,
		logger:     logger.With("module", "http_server"),
		auth:       authSvc,
		db:         db,
		production: production,
		refreshTTL: refreshTTL,
	}
	s.engine = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/api/health", s.health)

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/login", s.login)
		authGroup.POST("/refresh", s.refresh)
		authGroup.POST("/logout", s.logout)
		authGroup.GET("/me", s.requireAuth(), s.me)
		authGroup.POST("/logout-all", s.requireAuth(), s.logoutAll)
	}

	admin := r.Group("/api/admin", s.requireAuth(), s.requireRole(auth.RoleAdmin))
	{
		admin.POST("/users/:id/revoke-sessions", s.revokeUserSessions)
	}

	return r
}

// Handler returns the configured router. Exposed for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Package http provides the operator API server, metrics server, and
// middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	authHTTP "github.com/openaccel/beamauth/internal/authorization/http"
	"github.com/openaccel/beamauth/internal/notification"
	verificationHTTP "github.com/openaccel/beamauth/internal/verification/http"
)

// ExpirationChecker runs one expiration check on demand.
type ExpirationChecker interface {
	PerformExpirationCheck(
		ctx context.Context,
		includeUpcoming bool,
	) (*notification.ExpirationReport, error)
}

// RouterConfig carries the handlers and optional middleware wired into the
// API router.
type RouterConfig struct {
	VerificationHandler  *verificationHTTP.VerificationHandler
	AuthorizationHandler *authHTTP.AuthorizationHandler
	// ExpirationChecker enables the on-demand scan endpoint when non-nil.
	ExpirationChecker ExpirationChecker
	// ScanIncludeUpcoming controls whether on-demand scans report upcoming
	// expirations in addition to expired ones.
	ScanIncludeUpcoming bool
	// Middlewares are applied to every route (metrics).
	Middlewares []gin.HandlerFunc
	// RateLimit is applied to mutating routes only.
	RateLimit gin.HandlerFunc
	// CORSEnabled and CORSAllowOrigins configure the CORS middleware.
	CORSEnabled      bool
	CORSAllowOrigins string
}

// Server represents the operator API HTTP server.
type Server struct {
	server   *http.Server
	db       *sql.DB
	checker  ExpirationChecker
	upcoming bool
	logger   *slog.Logger
}

// NewServer creates a new API server with all routes registered.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
	routerConfig RouterConfig,
) *Server {
	s := &Server{
		db:       db,
		checker:  routerConfig.ExpirationChecker,
		upcoming: routerConfig.ScanIncludeUpcoming,
		logger:   logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(CustomLoggerMiddleware(logger))

	for _, middleware := range routerConfig.Middlewares {
		if middleware != nil {
			router.Use(middleware)
		}
	}

	corsMiddleware := createCORSMiddleware(
		routerConfig.CORSEnabled,
		routerConfig.CORSAllowOrigins,
		logger,
	)
	if corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	if routerConfig.AuthorizationHandler != nil {
		v1.GET("/destinations", routerConfig.AuthorizationHandler.ListDestinationsHandler)
		v1.GET("/authorizations/current", routerConfig.AuthorizationHandler.CurrentHandler)
	}

	if routerConfig.VerificationHandler != nil {
		v1.GET(
			"/destinations/:id/verifications",
			routerConfig.VerificationHandler.ListByDestinationHandler,
		)
		v1.GET("/verifications", routerConfig.VerificationHandler.FindHandler)
		v1.GET("/verifications/expired", routerConfig.VerificationHandler.ListExpiredHandler)
		v1.GET("/verifications/:id/history", routerConfig.VerificationHandler.HistoryHandler)
		v1.GET("/controls", routerConfig.VerificationHandler.ListControlsHandler)
	}

	mutating := v1.Group("")
	if routerConfig.RateLimit != nil {
		mutating.Use(routerConfig.RateLimit)
	}

	if routerConfig.VerificationHandler != nil {
		mutating.POST("/verifications/toggle", routerConfig.VerificationHandler.ToggleHandler)
		mutating.PUT("/verifications", routerConfig.VerificationHandler.EditHandler)
	}

	if routerConfig.ExpirationChecker != nil {
		mutating.POST("/expiration-checks", s.expirationCheckHandler)
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the API HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can reach its dependencies.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("readiness database ping failed", slog.Any("error", err))
			components["database"] = "error"
			ready = false
		} else {
			components["database"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// expirationCheckHandler runs one expiration check and reports what it found.
// POST /v1/expiration-checks
func (s *Server) expirationCheckHandler(c *gin.Context) {
	report, err := s.checker.PerformExpirationCheck(c.Request.Context(), s.upcoming)
	if err != nil {
		s.logger.Error("on-demand expiration check failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "expiration check failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"expired_authorizations":             len(report.ExpiredAuthorizations),
		"expired_verifications":              len(report.ExpiredVerifications),
		"upcoming_authorization_expirations": len(report.UpcomingAuthorizationExpirations),
		"upcoming_verification_expirations":  len(report.UpcomingVerificationExpirations),
	})
}

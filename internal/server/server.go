// Package server is the console server: it hosts the built SPA bundle,
// proxies /api to the paper push backend and guards console pages
// with the same route table the CLI uses.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/biopaper/paperpush/internal/config"
)

// Server represents the HTTP server
type Server struct {
	router  *gin.Engine
	config  *config.Config
	logger  zerolog.Logger
	proxy   *apiProxy
	version string
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) *Server {
	server := &Server{
		config:  cfg,
		logger:  zlog,
		proxy:   newAPIProxy(cfg.Backend.URL, cfg.Session.CookieSecure, cfg.Server.ProxyTimeout, zlog),
		version: version,
	}

	// Setup router
	server.setupRouter()

	return server
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Recovery())
	s.router.Use(s.requestIDMiddleware())
	s.router.Use(s.loggingMiddleware())

	// CORS is only needed when the SPA is served from another origin
	if len(s.config.Server.AllowOrigins) > 0 {
		s.router.Use(cors.New(cors.Config{
			AllowOrigins:     s.config.Server.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", headerRequestID},
			ExposeHeaders:    []string{"Content-Length", headerRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Built assets (js, css, images) are public
	s.router.Use(s.assetsMiddleware(static.Serve("/", newAssetFS(s.config.Static.Dir))))

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	// Backend API
	s.router.Any("/api/*path", gin.WrapH(s.proxy))

	s.router.GET("/logout", s.logout)

	// Every other path is a console page
	s.router.NoRoute(s.pageHandler)
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString(headerRequestID)).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "paperpush-console",
		"version":   s.version,
		"backend":   s.config.Backend.URL.String(),
	})
}

// Start starts the HTTP server and blocks until SIGINT/SIGTERM
func (s *Server) Start() error {
	addr := s.config.Server.ListenAddr

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
		// Proxied runs can take minutes
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      s.config.Server.ProxyTimeout + 10*time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       300 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Str("backend", s.config.Backend.URL.String()).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or listener failure
	select {
	case err := <-errChan:
		s.logger.Error().Err(err).Msg("HTTP server error")
		return err
	case <-sigChan:
	}
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}

package server

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/biopaper/paperpush/internal/routes"
	"github.com/biopaper/paperpush/internal/session"
)

const headerRequestID = "X-Request-ID"

// requestIDMiddleware tags each request with an ID that is forwarded to the backend
func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = ulid.Make().String()
			c.Request.Header.Set(headerRequestID, id)
		}
		c.Set(headerRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// assetsMiddleware serves bundle files except the entry point, which only
// goes out through pageHandler once the guard admits the navigation.
// Non-canonical paths are left to pageHandler, which redirects them.
func (s *Server) assetsMiddleware(serve gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path != routes.CleanPath(path) || isAPIPath(path) {
			c.Next()
			return
		}
		if _, isPage := routes.Default.Lookup(path); isPage {
			c.Next()
			return
		}
		serve(c)
	}
}

func (s *Server) cookieSession(c *gin.Context) *session.Session {
	return session.New(NewCookieStore(c.Request, c.Writer.Header(), s.config.Session.CookieSecure))
}

// pageHandler runs the route guard for a console page and serves the SPA
// entry point when the navigation is allowed.
func (s *Server) pageHandler(c *gin.Context) {
	if isAPIPath(c.Request.URL.Path) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
		return
	}

	// "//", "/papers/" and dot segments are redirected to the canonical page
	if clean := routes.CleanPath(c.Request.URL.Path); clean != c.Request.URL.Path {
		target := url.URL{Path: clean, RawQuery: c.Request.URL.RawQuery}
		c.Redirect(http.StatusMovedPermanently, target.String())
		return
	}

	guard := routes.NewGuard(routes.Default, s.cookieSession(c), s.logger)
	decision := guard.Check(c.Request.URL.RequestURI())
	if !decision.Allow {
		s.logger.Debug().
			Str("path", c.Request.URL.Path).
			Str("redirect", decision.Redirect.String()).
			Msg("Navigation redirected")
		c.Redirect(http.StatusFound, decision.Redirect.String())
		return
	}

	index := filepath.Join(s.config.Static.Dir, indexFile)
	if _, err := os.Stat(index); err != nil {
		s.logger.Error().Err(err).Str("static_dir", s.config.Static.Dir).Msg("Console bundle missing")
		c.String(http.StatusNotFound, "console bundle not found")
		return
	}

	c.File(index)
}

// logout forgets the browser session without calling the backend
func (s *Server) logout(c *gin.Context) {
	if err := s.cookieSession(c).Clear(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to clear session cookies")
	}
	c.Redirect(http.StatusFound, routes.PathLogin)
}

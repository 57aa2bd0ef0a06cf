// Package routes is the console's route table and the guard that admits
// or redirects a navigation based on the local session.
package routes

import (
	pathpkg "path"
	"strings"
)

// Well-known paths
const (
	PathLogin     = "/login"
	PathDashboard = "/"
	PathPapers    = "/papers"
	PathConfig    = "/config"
	PathLogs      = "/logs"
	PathAdmin     = "/admin"
)

// Meta carries the access requirements of a route.
// The zero value requires authentication but not admin.
type Meta struct {
	// Public marks a route reachable without a token
	Public        bool
	RequiresAdmin bool
}

// RequiresAuth reports whether a token is needed to enter the route
func (m Meta) RequiresAuth() bool {
	return !m.Public
}

// Route describes one console page
type Route struct {
	Path string
	Name string
	View string
	Meta Meta
}

// Table is the ordered list of console routes
type Table []Route

// Default is the console's route table
var Default = Table{
	{Path: PathLogin, Name: "Login", View: "Login", Meta: Meta{Public: true}},
	{Path: PathDashboard, Name: "Dashboard", View: "Dashboard"},
	{Path: PathPapers, Name: "Papers", View: "Papers"},
	{Path: PathConfig, Name: "Config", View: "Config"},
	{Path: PathLogs, Name: "Logs", View: "Logs"},
	{Path: PathAdmin, Name: "Admin", View: "Admin", Meta: Meta{RequiresAdmin: true}},
}

// Lookup finds the route for a path. The path is cleaned first, so
// "//", "/papers/" and "/assets/../admin" match their canonical routes.
func (t Table) Lookup(path string) (Route, bool) {
	path = CleanPath(path)
	for _, r := range t {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// ByName finds a route by its name
func (t Table) ByName(name string) (Route, bool) {
	for _, r := range t {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

// CleanPath returns the canonical, rooted form of a URL path
func CleanPath(path string) string {
	return pathpkg.Clean("/" + path)
}

// loginAPIPaths are the API endpoints where a 401 means bad credentials
// rather than an expired session.
var loginAPIPaths = []string{"/auth/login", "/auth/register"}

// IsLoginRelated reports whether path is the login page or a login API
// endpoint, with or without the /api prefix.
func IsLoginRelated(path string) bool {
	if path == PathLogin {
		return true
	}
	for _, p := range loginAPIPaths {
		if strings.HasSuffix(path, p) {
			return true
		}
	}
	return false
}

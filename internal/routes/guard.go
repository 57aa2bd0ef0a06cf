package routes

import (
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/biopaper/paperpush/internal/session"
)

// ErrorNoPermission is the error flag attached when an admin route is refused
const ErrorNoPermission = "no_permission"

// Location is a redirect target
type Location struct {
	Path  string
	Query url.Values
}

// String renders the location as a path with an encoded query.
// Slashes stay literal (/login?redirect=/admin) as the console's router writes them.
func (l Location) String() string {
	if len(l.Query) == 0 {
		return l.Path
	}
	return l.Path + "?" + strings.ReplaceAll(l.Query.Encode(), "%2F", "/")
}

// Decision is the outcome of a guard check: either Allow, or a Redirect.
type Decision struct {
	Allow    bool
	Redirect *Location
	Route    Route
}

func allow(r Route) Decision {
	return Decision{Allow: true, Route: r}
}

func redirect(r Route, loc Location) Decision {
	return Decision{Redirect: &loc, Route: r}
}

// Guard admits navigations against a route table and a session
type Guard struct {
	table   Table
	session *session.Session
	log     zerolog.Logger
}

// NewGuard creates a guard
func NewGuard(table Table, sess *session.Session, log zerolog.Logger) *Guard {
	return &Guard{table: table, session: sess, log: log}
}

// Check decides a navigation to target, a path optionally carrying a query.
// Unknown paths get the default requirements (auth, no admin).
// Rules are evaluated in order and the first match wins.
func (g *Guard) Check(target string) Decision {
	path := target
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		path = PathDashboard
	}

	route, ok := g.table.Lookup(path)
	if !ok {
		route = Route{Path: CleanPath(path)}
	}

	hasToken := g.session.HasToken()

	if route.Meta.RequiresAuth() && !hasToken {
		return redirect(route, Location{
			Path:  PathLogin,
			Query: url.Values{"redirect": []string{target}},
		})
	}

	if route.Path == PathLogin && hasToken {
		return redirect(route, Location{Path: PathDashboard})
	}

	if route.Meta.RequiresAdmin && hasToken {
		user, err := g.session.User()
		if err != nil {
			g.log.Debug().Err(err).Str("path", path).Msg("Cached user unavailable for admin route")
		}
		if err == nil && user.IsAdmin() {
			return allow(route)
		}
		return redirect(route, Location{
			Path:  PathDashboard,
			Query: url.Values{"error": []string{ErrorNoPermission}},
		})
	}

	return allow(route)
}

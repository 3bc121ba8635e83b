package access

import "strings"

// Route is the dashboard and page a path leads to. Page is empty for dashboard landing routes.
// A Prefix route also answers for every path below it, e.g. "/employees/directory"
// for "/employees/directory/17".
type Route struct {
	Dashboard string `json:"dashboard_id"`
	Page      string `json:"page_id,omitempty"`
	Prefix    bool   `json:"prefix,omitempty"`
}

// RouteCatalog maps request paths to routes.
type RouteCatalog interface {
	Route(path string) (Route, bool)
}

// RouteTable is a RouteCatalog keyed by path. A path without an exact entry maps to
// its longest registered parent path only when that parent is a Prefix route.
type RouteTable map[string]Route

// Route implements RouteCatalog.
func (t RouteTable) Route(path string) (Route, bool) {
	p := NormalizePath(path)

	if r, ok := t[p]; ok {
		return r, true
	}

	for {
		i := strings.LastIndex(p, "/")
		if i <= 0 {
			return Route{}, false
		}

		p = p[:i]

		if r, ok := t[p]; ok && r.Prefix {
			return r, true
		}
	}
}

// NormalizePath strips query and fragment, collapses duplicate slashes and the
// trailing slash, and ensures a leading slash.
func NormalizePath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	segments := strings.Split(path, "/")
	kept := segments[:0]

	for _, s := range segments {
		if s != "" {
			kept = append(kept, s)
		}
	}

	return "/" + strings.Join(kept, "/")
}

// Gate answers route navigation questions.
type Gate struct {
	resolver *Resolver
	routes   RouteCatalog
}

// NewGate returns a Gate mapping paths through routes and deciding with resolver.
func NewGate(resolver *Resolver, routes RouteCatalog) *Gate {
	return &Gate{resolver: resolver, routes: routes}
}

// CanNavigate reports whether user may open path. Unmapped paths are denied.
func (g *Gate) CanNavigate(user User, path string) bool {
	if g == nil || g.resolver == nil {
		return false
	}

	return CanNavigateRoute(user, g.resolver.Aggregate(user), g.routes, path)
}

// CanNavigateRoute is CanNavigate against an already aggregated view.
//
// A page route is decided by the page query. An explicit page override stands on its
// own; a page granted through roles also needs the dashboard.
func CanNavigateRoute(user User, view AggregatedView, routes RouteCatalog, path string) bool {
	if routes == nil {
		return false
	}

	route, ok := routes.Route(path)
	if !ok || route.Dashboard == "" {
		return false
	}

	if route.Page == "" {
		return Explain(user, view, Query{Dashboard: route.Dashboard}).Allowed
	}

	page := Explain(user, view, Query{Dashboard: route.Dashboard, Page: route.Page})
	if !page.Allowed || page.Tier != TierRole {
		return page.Allowed
	}

	return Explain(user, view, Query{Dashboard: route.Dashboard}).Allowed
}

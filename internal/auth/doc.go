// Package auth connects the permission engine to the service's data.
//
// Service loads users, the role catalog and the route catalog through the db
// controllers, caches them, and answers access questions with the access package:
//   - Check: dashboard, page, feature and CRUD queries for a user
//   - CanNavigate: route navigation through the route catalog
//   - PolicyPermission: the effective document grant of a user on a policy
//
// Every decision is counted in the access_decisions_total metric and, when enabled,
// written to the decision audit log.
//
// Fiber middleware guards routes with the same checks:
//
//	app.Get("/api/admin/roles/:name",
//	    auth.RequireDashboard(authService, auth.DashboardAdmin),
//	    handler,
//	)
//
// Writes to roles, user roles and overrides must be followed by the matching
// Invalidate call so cached inputs are dropped. Policy grants are read uncached.
package auth

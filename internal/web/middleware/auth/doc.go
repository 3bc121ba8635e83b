// Package auth provides the authentication middleware for the service.
//
// Sessions are issued by the external identity provider and stored in the shared
// session storage. The middleware reads the session cookie, loads the session and
// stores the user id for the permission guards of the auth service.
//
// Requests without a valid session are answered with 401. Paths listed as public
// (health checks, metrics) skip the middleware.
//
// Usage:
//
//	app.Use(authmiddleware.New(authmiddleware.Config{
//	    Store:      store,
//	    CookieName: cfg.Session.CookieName,
//	    Public:     []string{"/checkalive", "/metrics"},
//	}))
package auth

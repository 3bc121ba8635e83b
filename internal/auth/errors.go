package auth

import "errors"

var (
	// ErrNoUser is returned when a request reaches a guard without an authenticated user.
	ErrNoUser = errors.New("no authenticated user in request")

	// ErrServiceNil is returned when the service or its database is not initialized.
	ErrServiceNil = errors.New("auth service is not initialized")
)

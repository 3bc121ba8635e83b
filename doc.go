// Package main provides the entry point of the portal access service.
// It resolves which dashboards, pages, features, CRUD actions and policy documents
// a user of the internal portal may use, from the user's roles, per-user overrides
// and per-document grants, and serves these answers over a Fiber REST API backed
// by gorm persistence.
package main

// Package admin holds the shared path of the administration endpoints.
package admin

import "github.com/portal-access/portal-access/internal/web/handler"

// Path is the base path of all administration endpoints.
const Path = handler.APIPath + "admin"

// Package check answers access questions about the current user: single queries,
// route navigation and the dashboard switcher menu.
package check

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/portal-access/portal-access/internal/access"
	"github.com/portal-access/portal-access/internal/auth"
	"github.com/portal-access/portal-access/internal/config"
	usercontroller "github.com/portal-access/portal-access/internal/db/controller/user"
	"github.com/portal-access/portal-access/internal/web/handler"
	"github.com/portal-access/portal-access/internal/web/navigation"
)

const (
	// Path is the base path of the access endpoints.
	Path = handler.APIPath + "access"

	// MsgInvalidCapability is returned for an unknown capability parameter.
	MsgInvalidCapability = "invalid capability"
	// MsgPathRequired is returned when the path parameter is missing.
	MsgPathRequired = "path is required"
)

// Service provides the access endpoints.
type Service struct {
	handler.Service
	cfg         *config.Config
	authService *auth.Service
}

// Handler is the exported instance.
var Handler = Service{}

// Result is the answer to a single query.
type Result struct {
	access.Decision
	Query access.Query `json:"query"`
}

// NavigateResult is the answer to a navigation question.
type NavigateResult struct {
	Path    string `json:"path"`
	Allowed bool   `json:"allowed"`
}

// MenuResult is the dashboard switcher of the current user.
type MenuResult struct {
	Dashboards []string        `json:"dashboards"`
	Menu       navigation.Menu `json:"menu"`
}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil || authService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.authService = authService

	app.Get(Path+"/check", s.Check)
	app.Get(Path+"/navigate", s.Navigate)
	app.Get(Path+"/menu", s.Menu)
}

// QueryFromRequest builds an access query from the query string.
func QueryFromRequest(c *fiber.Ctx) access.Query {
	return access.Query{
		Dashboard:    c.Query("dashboard"),
		Page:         c.Query("page"),
		Feature:      c.Query("feature"),
		Action:       c.Query("action"),
		CRUDResource: c.Query("crud"),
		Department:   c.Query("department"),
		Capability:   access.Capability(c.Query("capability")),
	}
}

// Check resolves one query for the current user.
func (s *Service) Check(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return handler.Error(c, fiber.StatusUnauthorized, auth.MsgUnauthorized)
	}

	q := QueryFromRequest(c)
	if !q.Capability.Valid() {
		return handler.Error(c, fiber.StatusBadRequest, MsgInvalidCapability)
	}

	d, err := s.authService.Check(c.UserContext(), userID, q)
	if err != nil {
		return s.failure(c, userID, err)
	}

	return c.JSON(Result{Decision: d, Query: q})
}

// Navigate reports whether the current user may open the path parameter.
func (s *Service) Navigate(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return handler.Error(c, fiber.StatusUnauthorized, auth.MsgUnauthorized)
	}

	path := c.Query("path")
	if path == "" {
		return handler.Error(c, fiber.StatusBadRequest, MsgPathRequired)
	}

	allowed, err := s.authService.CanNavigate(c.UserContext(), userID, path)
	if err != nil {
		return s.failure(c, userID, err)
	}

	return c.JSON(NavigateResult{Path: access.NormalizePath(path), Allowed: allowed})
}

// Menu returns the dashboards and navigable routes of the current user.
// The optional path parameter marks the active entries.
func (s *Service) Menu(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return handler.Error(c, fiber.StatusUnauthorized, auth.MsgUnauthorized)
	}

	menu, err := s.authService.Menu(c.UserContext(), userID)
	if err != nil {
		return s.failure(c, userID, err)
	}

	dashboards := menu.Dashboards
	if dashboards == nil {
		dashboards = make([]string, 0)
	}

	return c.JSON(MenuResult{
		Dashboards: dashboards,
		Menu:       navigation.Build(menu.Routes, c.Query("path")),
	})
}

func (s *Service) failure(c *fiber.Ctx, userID uint64, err error) error {
	if errors.Is(err, usercontroller.ErrUserNotFound) {
		log.Warn().Uint64("user_id", userID).Msg("session references an unknown or inactive user")

		return handler.Error(c, fiber.StatusForbidden, auth.MsgForbidden)
	}

	log.Error().Err(err).Uint64("user_id", userID).Msg("access lookup failed")

	return handler.Error(c, fiber.StatusInternalServerError, handler.MsgInternal)
}

// Package route provides handlers for maintaining the route catalog that maps
// paths to dashboards and pages.
package route

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/portal-access/portal-access/internal/auth"
	"github.com/portal-access/portal-access/internal/config"
	routecontroller "github.com/portal-access/portal-access/internal/db/controller/route"
	"github.com/portal-access/portal-access/internal/db/models"
	"github.com/portal-access/portal-access/internal/web/handler"
	"github.com/portal-access/portal-access/internal/web/handler/admin"
)

// Path is the base path for route management.
const Path = admin.Path + "/routes"

// Service maintains the route catalog.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	validator   *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Route is the API shape of a catalog entry.
type Route struct {
	Path      string `json:"path"       validate:"required,startswith=/,max=255"`
	Dashboard string `json:"dashboard"  validate:"required,max=100"`
	Page      string `json:"page"       validate:"max=100"`
	Title     string `json:"title"      validate:"max=255"`
	Prefix    bool   `json:"prefix"`
	MenuOrder int    `json:"menu_order"`
}

func fromModel(r *models.DashboardRoute) Route {
	return Route{
		Path:      r.Path,
		Dashboard: r.Dashboard,
		Page:      r.Page,
		Title:     r.Title,
		Prefix:    r.Prefix,
		MenuOrder: r.MenuOrder,
	}
}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil || authService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService
	s.validator = validator.New()

	guard := auth.RequireDashboard(authService, auth.DashboardAdmin)

	app.Get(Path, guard, s.List)
	app.Put(Path, guard, s.Upsert)
}

// List returns the catalog in menu order.
func (s *Service) List(c *fiber.Ctx) error {
	routes, err := routecontroller.GetAll(s.db.WithContext(c.UserContext()))
	if err != nil {
		log.Error().Err(err).Msg("failed to load routes")

		return handler.Error(c, fiber.StatusInternalServerError, handler.MsgInternal)
	}

	out := make([]Route, 0, len(routes))
	for i := range routes {
		out = append(out, fromModel(&routes[i]))
	}

	return c.JSON(out)
}

// Upsert registers a path or changes where it leads.
func (s *Service) Upsert(c *fiber.Ctx) error {
	var in Route
	if err := c.BodyParser(&in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, handler.MsgInvalidBody)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, handler.MsgValidationFailed)
	}

	r, err := routecontroller.Upsert(s.db.WithContext(c.UserContext()), models.DashboardRoute{
		Path:      in.Path,
		Dashboard: in.Dashboard,
		Page:      in.Page,
		Title:     in.Title,
		Prefix:    in.Prefix,
		MenuOrder: in.MenuOrder,
	})
	if err != nil {
		if errors.Is(err, routecontroller.ErrPathEmpty) || errors.Is(err, routecontroller.ErrDashboardEmpty) {
			return handler.Error(c, fiber.StatusBadRequest, err.Error())
		}

		log.Error().Err(err).Str("path", in.Path).Msg("failed to save route")

		return handler.Error(c, fiber.StatusInternalServerError, handler.MsgInternal)
	}

	adminID, _ := auth.UserID(c)
	log.Info().Uint64("user_id", adminID).Str("path", r.Path).Str("dashboard", r.Dashboard).
		Str("page", r.Page).Bool("prefix", r.Prefix).Msg("route saved")

	handler.MarkStale(c, s.authService.InvalidateRoutes(c.UserContext()))

	return c.JSON(fromModel(r))
}

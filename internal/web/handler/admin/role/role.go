// Package role provides handlers for managing roles (CRUD) in admin area.
package role

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/portal-access/portal-access/internal/access"
	"github.com/portal-access/portal-access/internal/auth"
	"github.com/portal-access/portal-access/internal/config"
	rolecontroller "github.com/portal-access/portal-access/internal/db/controller/role"
	"github.com/portal-access/portal-access/internal/db/models"
	"github.com/portal-access/portal-access/internal/web/handler"
	"github.com/portal-access/portal-access/internal/web/handler/admin"
)

// Path is the base path for role management.
const Path = admin.Path + "/roles"

// Service provides CRUD operations for roles.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	validator   *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Role is the API shape of a role.
type Role struct {
	Name                 string                            `json:"name"                  validate:"required,max=100"`
	Description          string                            `json:"description"           validate:"max=255"`
	IsSystem             bool                              `json:"is_system"`
	FullAccess           bool                              `json:"full_access"`
	DefaultDashboards    []string                          `json:"default_dashboards"    validate:"dive,required"`
	DashboardPermissions map[string]access.Quad            `json:"dashboard_permissions"`
	PagePermissions      map[string]map[string]access.Quad `json:"page_permissions"`
	Features             map[string]map[string]bool        `json:"features"`
	CRUD                 map[string]map[string]bool        `json:"crud"`
}

func fromModel(r *models.Role) Role {
	return Role{
		Name:                 r.Name,
		Description:          r.Description,
		IsSystem:             r.IsSystem,
		FullAccess:           r.FullAccess,
		DefaultDashboards:    r.DefaultDashboards,
		DashboardPermissions: r.DashboardPermissions,
		PagePermissions:      r.PagePermissions,
		Features:             r.Features,
		CRUD:                 r.CRUD,
	}
}

func (r Role) toModel() *models.Role {
	return &models.Role{
		Name:                 r.Name,
		Description:          r.Description,
		FullAccess:           r.FullAccess,
		DefaultDashboards:    r.DefaultDashboards,
		DashboardPermissions: r.DashboardPermissions,
		PagePermissions:      r.PagePermissions,
		Features:             r.Features,
		CRUD:                 r.CRUD,
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

	// Routes
	app.Get(Path, guard, s.List)
	app.Post(Path, guard, s.Create)
	app.Get(Path+"/:name", guard, s.Show)
	app.Put(Path+"/:name", guard, s.Update)
	app.Delete(Path+"/:name", guard, s.Delete)
}

// List returns all roles.
func (s *Service) List(c *fiber.Ctx) error {
	roles, err := rolecontroller.GetAll(s.db.WithContext(c.UserContext()))
	if err != nil {
		log.Error().Err(err).Msg("failed to load roles")

		return handler.Error(c, fiber.StatusInternalServerError, handler.MsgInternal)
	}

	out := make([]Role, 0, len(roles))
	for i := range roles {
		out = append(out, fromModel(&roles[i]))
	}

	return c.JSON(out)
}

// Show returns one role.
func (s *Service) Show(c *fiber.Ctx) error {
	r, err := rolecontroller.Get(s.db.WithContext(c.UserContext()), c.Params("name"))
	if err != nil {
		return s.storageError(c, err)
	}

	return c.JSON(fromModel(r))
}

// Create adds a role.
func (s *Service) Create(c *fiber.Ctx) error {
	in, ok := s.parse(c)
	if !ok {
		return nil
	}

	r, err := rolecontroller.Create(s.db.WithContext(c.UserContext()), in.toModel())
	if err != nil {
		return s.storageError(c, err)
	}

	s.changed(c, r.Name, "role created")

	return c.Status(fiber.StatusCreated).JSON(fromModel(r))
}

// Update replaces the permission template of a role. The name in the path wins over the body.
func (s *Service) Update(c *fiber.Ctx) error {
	in, ok := s.parse(c)
	if !ok {
		return nil
	}

	r, err := rolecontroller.Update(s.db.WithContext(c.UserContext()), c.Params("name"), in.toModel())
	if err != nil {
		return s.storageError(c, err)
	}

	s.changed(c, r.Name, "role updated")

	return c.JSON(fromModel(r))
}

// Delete removes a custom role.
func (s *Service) Delete(c *fiber.Ctx) error {
	name := c.Params("name")

	if err := rolecontroller.Delete(s.db.WithContext(c.UserContext()), name); err != nil {
		return s.storageError(c, err)
	}

	s.changed(c, name, "role deleted")

	return c.SendStatus(fiber.StatusNoContent)
}

// parse reads and validates the body; on failure the response is already written.
func (s *Service) parse(c *fiber.Ctx) (Role, bool) {
	var in Role

	if err := c.BodyParser(&in); err != nil {
		_ = handler.Error(c, fiber.StatusBadRequest, handler.MsgInvalidBody)
		return in, false
	}

	if in.Name == "" {
		in.Name = c.Params("name")
	}

	if err := s.validator.Struct(in); err != nil {
		_ = handler.Error(c, fiber.StatusBadRequest, handler.MsgValidationFailed)
		return in, false
	}

	return in, true
}

// changed drops the cached catalog so the next check sees the new role set.
func (s *Service) changed(c *fiber.Ctx, name, msg string) {
	adminID, _ := auth.UserID(c)

	log.Info().Uint64("user_id", adminID).Str("role", name).Msg(msg)

	handler.MarkStale(c, s.authService.InvalidateCatalog(c.UserContext()))
}

func (s *Service) storageError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, rolecontroller.ErrRoleNotFound):
		return handler.Error(c, fiber.StatusNotFound, auth.MsgNotFound)
	case errors.Is(err, rolecontroller.ErrRoleAlreadyExists):
		return handler.Error(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, rolecontroller.ErrSystemRole), errors.Is(err, rolecontroller.ErrRoleNameEmpty):
		return handler.Error(c, fiber.StatusBadRequest, err.Error())
	}

	log.Error().Err(err).Msg("role storage failure")

	return handler.Error(c, fiber.StatusInternalServerError, handler.MsgInternal)
}

// Package user provides handlers for administering the roles, overrides and
// department of users in admin area.
package user

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
	usercontroller "github.com/portal-access/portal-access/internal/db/controller/user"
	"github.com/portal-access/portal-access/internal/db/models"
	"github.com/portal-access/portal-access/internal/web/handler"
	"github.com/portal-access/portal-access/internal/web/handler/admin"
)

const (
	// Path is the base path for user management.
	Path = admin.Path + "/users"

	// DefaultPageSize for pagination.
	DefaultPageSize = 25

	// MsgUnknownRole is returned when a role assignment names a role that does not exist.
	MsgUnknownRole = "unknown role"
)

// Service administers user access.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	validator   *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// User is the API shape of a user's access record.
type User struct {
	ID               uint64           `json:"id"`
	Username         string           `json:"username"`
	Email            string           `json:"email,omitempty"`
	PrimaryRole      string           `json:"primary_role"`
	AdditionalRoles  []string         `json:"additional_roles"`
	DepartmentID     string           `json:"department_id"`
	ExtraPermissions access.Overrides `json:"extra_permissions"`
}

// Detail is a user with the aggregated view of their roles.
type Detail struct {
	User
	// Roles lists the primary role first, then the additional roles.
	Roles        []string `json:"roles"`
	HasOverrides bool     `json:"has_overrides"`
	Dashboards   []string `json:"dashboards"`
	FullAccess   bool     `json:"full_access"`
	UnknownRoles []string `json:"unknown_roles,omitempty"`
}

type rolesInput struct {
	PrimaryRole     string   `json:"primary_role"     validate:"required,max=100"`
	AdditionalRoles []string `json:"additional_roles" validate:"dive,required,max=100"`
}

type departmentInput struct {
	DepartmentID string `json:"department_id" validate:"max=100"`
}

func fromModel(u *models.User) User {
	additional := u.AdditionalRoles
	if additional == nil {
		additional = make([]string, 0)
	}

	return User{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		PrimaryRole:      u.PrimaryRole,
		AdditionalRoles:  additional,
		DepartmentID:     u.DepartmentID,
		ExtraPermissions: u.Overrides(),
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
	app.Get(Path+"/:id", guard, s.Show)
	app.Put(Path+"/:id/roles", guard, s.SetRoles)
	app.Put(Path+"/:id/overrides", guard, s.SetOverrides)
	app.Put(Path+"/:id/department", guard, s.SetDepartment)
}

// List shows active users with simple pagination.
func (s *Service) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt("pageSize", DefaultPageSize)
	if pageSize < 1 || pageSize > 100 {
		pageSize = DefaultPageSize
	}

	var users []models.User

	err := s.db.WithContext(c.UserContext()).
		Where("active = ? AND deleted_at IS NULL", true).
		Order("id ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&users).Error
	if err != nil {
		log.Error().Err(err).Msg("query users failed")

		return handler.Error(c, fiber.StatusInternalServerError, handler.MsgInternal)
	}

	out := make([]User, 0, len(users))
	for i := range users {
		out = append(out, fromModel(&users[i]))
	}

	return c.JSON(out)
}

// Show returns a user with the aggregated view of their roles.
func (s *Service) Show(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.Error(c, fiber.StatusBadRequest, handler.MsgInvalidID)
	}

	u, err := usercontroller.Get(s.db.WithContext(c.UserContext()), id)
	if err != nil {
		return s.storageError(c, id, err)
	}

	subject := u.ToAccess()

	view, err := s.authService.View(c.UserContext(), subject)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", id).Msg("failed to aggregate roles")

		return handler.Error(c, fiber.StatusInternalServerError, handler.MsgInternal)
	}

	dashboards := view.DashboardList()
	if dashboards == nil {
		dashboards = make([]string, 0)
	}

	return c.JSON(Detail{
		User:         fromModel(u),
		Roles:        subject.RoleIDs(),
		HasOverrides: !subject.ExtraPermissions.IsEmpty(),
		Dashboards:   dashboards,
		FullAccess:   view.FullAccess,
		UnknownRoles: view.Unknown,
	})
}

// SetRoles replaces the primary and additional roles of a user.
func (s *Service) SetRoles(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.Error(c, fiber.StatusBadRequest, handler.MsgInvalidID)
	}

	var in rolesInput
	if err := c.BodyParser(&in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, handler.MsgInvalidBody)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, handler.MsgValidationFailed)
	}

	db := s.db.WithContext(c.UserContext())

	for _, name := range append([]string{in.PrimaryRole}, in.AdditionalRoles...) {
		if _, err := rolecontroller.Get(db, name); err != nil {
			if errors.Is(err, rolecontroller.ErrRoleNotFound) {
				return handler.Error(c, fiber.StatusBadRequest, MsgUnknownRole)
			}

			return s.storageError(c, id, err)
		}
	}

	u, err := usercontroller.SetRoles(db, id, in.PrimaryRole, in.AdditionalRoles)
	if err != nil {
		return s.storageError(c, id, err)
	}

	s.changed(c, id, "user roles changed")

	return c.JSON(fromModel(u))
}

// SetOverrides replaces the override document of a user. A key present in the
// document is an explicit decision; an empty document removes all overrides.
func (s *Service) SetOverrides(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.Error(c, fiber.StatusBadRequest, handler.MsgInvalidID)
	}

	var in access.Overrides
	if err := c.BodyParser(&in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, handler.MsgInvalidBody)
	}

	u, err := usercontroller.SetOverrides(s.db.WithContext(c.UserContext()), id, in)
	if err != nil {
		return s.storageError(c, id, err)
	}

	s.changed(c, id, "user overrides changed")

	return c.JSON(fromModel(u))
}

// SetDepartment changes the department of a user.
func (s *Service) SetDepartment(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.Error(c, fiber.StatusBadRequest, handler.MsgInvalidID)
	}

	var in departmentInput
	if err := c.BodyParser(&in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, handler.MsgInvalidBody)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, handler.MsgValidationFailed)
	}

	u, err := usercontroller.SetDepartment(s.db.WithContext(c.UserContext()), id, in.DepartmentID)
	if err != nil {
		return s.storageError(c, id, err)
	}

	s.changed(c, id, "user department changed")

	return c.JSON(fromModel(u))
}

// changed drops the cached record of the user so the next check sees the change.
func (s *Service) changed(c *fiber.Ctx, id uint64, msg string) {
	adminID, _ := auth.UserID(c)

	log.Info().Uint64("user_id", adminID).Uint64("target_user_id", id).Msg(msg)

	handler.MarkStale(c, s.authService.InvalidateUser(c.UserContext(), id))
}

func (s *Service) storageError(c *fiber.Ctx, id uint64, err error) error {
	switch {
	case errors.Is(err, usercontroller.ErrUserNotFound):
		return handler.Error(c, fiber.StatusNotFound, auth.MsgNotFound)
	case errors.Is(err, usercontroller.ErrPrimaryRoleEmpty):
		return handler.Error(c, fiber.StatusBadRequest, err.Error())
	}

	log.Error().Err(err).Uint64("target_user_id", id).Msg("user storage failure")

	return handler.Error(c, fiber.StatusInternalServerError, handler.MsgInternal)
}

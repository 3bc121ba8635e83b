// Package policy provides the policy document endpoints and their grant management.
package policy

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/portal-access/portal-access/internal/access"
	"github.com/portal-access/portal-access/internal/auth"
	"github.com/portal-access/portal-access/internal/config"
	policycontroller "github.com/portal-access/portal-access/internal/db/controller/policy"
	rolecontroller "github.com/portal-access/portal-access/internal/db/controller/role"
	usercontroller "github.com/portal-access/portal-access/internal/db/controller/user"
	"github.com/portal-access/portal-access/internal/db/models"
	"github.com/portal-access/portal-access/internal/db/seed"
	"github.com/portal-access/portal-access/internal/web/handler"
)

const (
	// Path is the base path of the policy endpoints.
	Path = handler.APIPath + "policies"

	// CRUDResource is the CRUD resource guarding policy creation.
	CRUDResource = "policies"

	// MsgPrincipalUnknown is returned when a grant names an unknown user or role.
	MsgPrincipalUnknown = "grant principal does not exist"
)

// Service provides the policy endpoints.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	validator   *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Document is a policy together with the caller's effective permission.
type Document struct {
	ID         uint64                     `json:"id"`
	Title      string                     `json:"title"`
	Content    string                     `json:"content,omitempty"`
	IsActive   bool                       `json:"is_active"`
	Version    int                        `json:"version"`
	Permission access.EffectivePermission `json:"permission"`
}

// Grant is a grant row as exposed by the API.
type Grant struct {
	ID         uint64  `json:"id"`
	UserID     *uint64 `json:"user_id,omitempty"`
	Role       *string `json:"role,omitempty"`
	Individual bool    `json:"individual"`
	CanRead    bool    `json:"can_read"`
	CanWrite   bool    `json:"can_write"`
	CanDelete  bool    `json:"can_delete"`
}

type contentInput struct {
	Title   string `json:"title"   validate:"required,max=255"`
	Content string `json:"content" validate:"max=1048576"`
}

type activeInput struct {
	Active *bool `json:"active" validate:"required"`
}

type grantInput struct {
	UserID    *uint64 `json:"user_id"    validate:"required_without=Role,excluded_with=Role"`
	Role      *string `json:"role"       validate:"required_without=UserID,excluded_with=UserID"`
	CanRead   *bool   `json:"can_read"`
	CanWrite  *bool   `json:"can_write"`
	CanDelete *bool   `json:"can_delete"`
}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil || authService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.authService = authService
	s.validator = validator.New()

	manage := auth.RequireFeature(authService, auth.FeaturePolicies, auth.ActionManagePermissions)

	app.Get(Path, s.List)
	app.Post(Path,
		auth.RequireCRUD(authService, CRUDResource, access.CRUDCreate),
		s.Create,
	)
	app.Get(Path+"/:id",
		auth.RequirePolicy(authService, access.CapabilityRead),
		s.Show,
	)
	app.Put(Path+"/:id",
		auth.RequirePolicy(authService, access.CapabilityWrite),
		s.Update,
	)
	app.Put(Path+"/:id/active",
		auth.RequirePolicy(authService, access.CapabilityWrite),
		s.SetActive,
	)
	app.Delete(Path+"/:id",
		auth.RequirePolicy(authService, access.CapabilityDelete),
		s.Delete,
	)
	app.Get(Path+"/:id/permission", s.Permission)
	app.Get(Path+"/:id/grants", manage, s.Grants)
	app.Put(Path+"/:id/grants", manage, s.SaveGrant)
	app.Delete(Path+"/:id/grants/:grantID", manage, s.DeleteGrant)
}

func document(p *models.Policy, perm access.EffectivePermission, withContent bool) Document {
	d := Document{
		ID:         p.ID,
		Title:      p.Title,
		IsActive:   p.IsActive,
		Version:    p.Version,
		Permission: perm,
	}

	if withContent {
		d.Content = p.Content
	}

	return d
}

func grant(g *models.PolicyPermission) Grant {
	return Grant{
		ID:         g.ID,
		UserID:     g.UserID,
		Role:       g.Role,
		Individual: g.IsIndividual(),
		CanRead:    g.CanRead,
		CanWrite:   g.CanWrite,
		CanDelete:  g.CanDelete,
	}
}

// visible reports whether a policy is shown to a holder of perm.
// Retired policies are only visible to writers.
func visible(p *models.Policy, perm access.EffectivePermission) bool {
	if !perm.CanRead {
		return false
	}

	return p.IsActive || perm.CanWrite
}

// List returns the policies the current user can read, without content.
func (s *Service) List(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return handler.Error(c, fiber.StatusUnauthorized, auth.MsgUnauthorized)
	}

	user, err := s.authService.User(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, usercontroller.ErrUserNotFound) {
			return handler.Error(c, fiber.StatusForbidden, auth.MsgForbidden)
		}

		log.Error().Err(err).Uint64("user_id", userID).Msg("failed to load user")

		return handler.Error(c, fiber.StatusInternalServerError, handler.MsgInternal)
	}

	policies, err := policycontroller.GetAll(s.db.WithContext(c.UserContext()))
	if err != nil {
		log.Error().Err(err).Msg("failed to load policies")

		return handler.Error(c, fiber.StatusInternalServerError, handler.MsgInternal)
	}

	out := make([]Document, 0, len(policies))

	for i := range policies {
		perm := access.ResolveResourcePermission(policies[i].ToAccess(), user)
		if visible(&policies[i], perm) {
			out = append(out, document(&policies[i], perm, false))
		}
	}

	return c.JSON(out)
}

// Create stores a new policy. The default grant roles and the creator receive full grants.
func (s *Service) Create(c *fiber.Ctx) error {
	userID, _ := auth.UserID(c)

	var in contentInput
	if err := c.BodyParser(&in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, handler.MsgInvalidBody)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, handler.MsgValidationFailed)
	}

	var created *models.Policy

	err := s.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		p, err := policycontroller.Create(tx, in.Title, in.Content)
		if err != nil {
			return err
		}

		if err := seed.GrantDefaults(tx, p.ID); err != nil {
			return err
		}

		yes := true
		if _, err := policycontroller.SaveGrant(tx, p.ID, policycontroller.UserPrincipal(userID),
			access.GrantUpdate{CanRead: &yes, CanWrite: &yes, CanDelete: &yes}); err != nil {
			return err
		}

		created = p

		return nil
	})
	if errors.Is(err, policycontroller.ErrTitleEmpty) {
		return handler.Error(c, fiber.StatusBadRequest, err.Error())
	}

	if err != nil {
		log.Error().Err(err).Uint64("user_id", userID).Msg("failed to create policy")

		return handler.Error(c, fiber.StatusInternalServerError, handler.MsgInternal)
	}

	log.Info().Uint64("user_id", userID).Uint64("policy_id", created.ID).Msg("policy created")

	perm := access.EffectivePermission{CanRead: true, CanWrite: true, CanDelete: true, Source: access.SourceIndividual}

	return c.Status(fiber.StatusCreated).JSON(document(created, perm, true))
}

// Show returns a policy with content.
func (s *Service) Show(c *fiber.Ctx) error {
	p, perm, ok := auth.PolicyFromContext(c)
	if !ok || !visible(p, perm) {
		return handler.Error(c, fiber.StatusNotFound, auth.MsgNotFound)
	}

	return c.JSON(document(p, perm, true))
}

// Update changes title and content, bumping the version when either changed.
func (s *Service) Update(c *fiber.Ctx) error {
	p, perm, ok := auth.PolicyFromContext(c)
	if !ok {
		return handler.Error(c, fiber.StatusNotFound, auth.MsgNotFound)
	}

	var in contentInput
	if err := c.BodyParser(&in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, handler.MsgInvalidBody)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, handler.MsgValidationFailed)
	}

	updated, err := policycontroller.UpdateContent(s.db.WithContext(c.UserContext()), p.ID, in.Title, in.Content)
	if err != nil {
		return s.storageError(c, p.ID, err)
	}

	return c.JSON(document(updated, perm, true))
}

// SetActive publishes or retires a policy.
func (s *Service) SetActive(c *fiber.Ctx) error {
	p, perm, ok := auth.PolicyFromContext(c)
	if !ok {
		return handler.Error(c, fiber.StatusNotFound, auth.MsgNotFound)
	}

	var in activeInput
	if err := c.BodyParser(&in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, handler.MsgInvalidBody)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, handler.MsgValidationFailed)
	}

	if err := policycontroller.SetActive(s.db.WithContext(c.UserContext()), p.ID, *in.Active); err != nil {
		return s.storageError(c, p.ID, err)
	}

	p.IsActive = *in.Active

	return c.JSON(document(p, perm, false))
}

// Delete removes a policy and its grants.
func (s *Service) Delete(c *fiber.Ctx) error {
	p, _, ok := auth.PolicyFromContext(c)
	if !ok {
		return handler.Error(c, fiber.StatusNotFound, auth.MsgNotFound)
	}

	if err := policycontroller.Delete(s.db.WithContext(c.UserContext()), p.ID); err != nil {
		return s.storageError(c, p.ID, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Permission returns the current user's effective permission on a policy, including
// the source badge. A user without any grant receives source none.
func (s *Service) Permission(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return handler.Error(c, fiber.StatusUnauthorized, auth.MsgUnauthorized)
	}

	policyID, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.Error(c, fiber.StatusNotFound, auth.MsgNotFound)
	}

	_, perm, err := s.authService.PolicyPermission(c.UserContext(), userID, policyID)

	switch {
	case errors.Is(err, policycontroller.ErrPolicyNotFound):
		return handler.Error(c, fiber.StatusNotFound, auth.MsgNotFound)
	case errors.Is(err, usercontroller.ErrUserNotFound):
		return handler.Error(c, fiber.StatusForbidden, auth.MsgForbidden)
	case err != nil:
		log.Error().Err(err).Uint64("user_id", userID).Uint64("policy_id", policyID).
			Msg("failed to resolve policy permission")

		return handler.Error(c, fiber.StatusInternalServerError, handler.MsgInternal)
	}

	return c.JSON(perm)
}

// Grants lists the grant rows of a policy.
func (s *Service) Grants(c *fiber.Ctx) error {
	policyID, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.Error(c, fiber.StatusNotFound, auth.MsgNotFound)
	}

	db := s.db.WithContext(c.UserContext())

	if _, err := policycontroller.Get(db, policyID); err != nil {
		return s.storageError(c, policyID, err)
	}

	rows, err := policycontroller.ListGrants(db, policyID)
	if err != nil {
		return s.storageError(c, policyID, err)
	}

	out := make([]Grant, 0, len(rows))
	for i := range rows {
		out = append(out, grant(&rows[i]))
	}

	return c.JSON(out)
}

// SaveGrant creates or changes the grant of a user or role. Enabling write or delete
// enables read; clearing read clears write and delete.
func (s *Service) SaveGrant(c *fiber.Ctx) error {
	policyID, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.Error(c, fiber.StatusNotFound, auth.MsgNotFound)
	}

	var in grantInput
	if err := c.BodyParser(&in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, handler.MsgInvalidBody)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, access.ErrAmbiguousGrant.Error())
	}

	db := s.db.WithContext(c.UserContext())

	principal, err := s.principal(db, in)
	if err != nil {
		return s.storageError(c, policyID, err)
	}

	row, err := policycontroller.SaveGrant(db, policyID, principal, access.GrantUpdate{
		CanRead:   in.CanRead,
		CanWrite:  in.CanWrite,
		CanDelete: in.CanDelete,
	})
	if err != nil {
		return s.storageError(c, policyID, err)
	}

	adminID, _ := auth.UserID(c)
	log.Info().Uint64("user_id", adminID).Uint64("policy_id", policyID).Uint64("grant_id", row.ID).
		Bool("can_read", row.CanRead).Bool("can_write", row.CanWrite).Bool("can_delete", row.CanDelete).
		Msg("policy grant saved")

	return c.JSON(grant(row))
}

// DeleteGrant removes a grant row.
func (s *Service) DeleteGrant(c *fiber.Ctx) error {
	policyID, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.Error(c, fiber.StatusNotFound, auth.MsgNotFound)
	}

	grantID, ok := handler.ParamID(c, "grantID")
	if !ok {
		return handler.Error(c, fiber.StatusNotFound, auth.MsgNotFound)
	}

	if err := policycontroller.DeleteGrant(s.db.WithContext(c.UserContext()), policyID, grantID); err != nil {
		return s.storageError(c, policyID, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// principal checks that the user or role named by in exists.
func (s *Service) principal(db *gorm.DB, in grantInput) (policycontroller.Principal, error) {
	if in.UserID != nil {
		if _, err := usercontroller.Get(db, *in.UserID); err != nil {
			return policycontroller.Principal{}, err
		}

		return policycontroller.UserPrincipal(*in.UserID), nil
	}

	role := strings.TrimSpace(*in.Role)
	if role == "" {
		return policycontroller.Principal{}, access.ErrAmbiguousGrant
	}

	if _, err := rolecontroller.Get(db, role); err != nil {
		return policycontroller.Principal{}, err
	}

	return policycontroller.RolePrincipal(role), nil
}

func (s *Service) storageError(c *fiber.Ctx, policyID uint64, err error) error {
	switch {
	case errors.Is(err, policycontroller.ErrPolicyNotFound), errors.Is(err, policycontroller.ErrGrantNotFound):
		return handler.Error(c, fiber.StatusNotFound, auth.MsgNotFound)
	case errors.Is(err, usercontroller.ErrUserNotFound), errors.Is(err, rolecontroller.ErrRoleNotFound):
		return handler.Error(c, fiber.StatusBadRequest, MsgPrincipalUnknown)
	case errors.Is(err, access.ErrGrantDependency), errors.Is(err, access.ErrAmbiguousGrant),
		errors.Is(err, policycontroller.ErrTitleEmpty):
		return handler.Error(c, fiber.StatusBadRequest, err.Error())
	}

	log.Error().Err(err).Uint64("policy_id", policyID).Msg("policy storage failure")

	return handler.Error(c, fiber.StatusInternalServerError, handler.MsgInternal)
}

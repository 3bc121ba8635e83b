package auth

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/portal-access/portal-access/internal/access"
	policycontroller "github.com/portal-access/portal-access/internal/db/controller/policy"
	"github.com/portal-access/portal-access/internal/db/models"
)

const (
	// LocalUserID is the fiber.Locals key holding the authenticated user id (uint64).
	LocalUserID = "user_id"
	// LocalPolicy is the fiber.Locals key holding the *models.Policy loaded by RequirePolicy.
	LocalPolicy = "policy"
	// LocalPolicyPermission is the fiber.Locals key holding the access.EffectivePermission of LocalPolicy.
	LocalPolicyPermission = "policy_permission"

	// MsgUnauthorized is the error message of a request without a user.
	MsgUnauthorized = "unauthorized"
	// MsgForbidden is the error message of a denied request.
	MsgForbidden = "forbidden: you don't have permission to access this resource"
	// MsgNotFound is the error message of an unknown policy.
	MsgNotFound = "not found"
)

// SetUserID stores the authenticated user of the request.
func SetUserID(c *fiber.Ctx, id uint64) {
	c.Locals(LocalUserID, id)
}

// UserID returns the authenticated user of the request.
func UserID(c *fiber.Ctx) (uint64, bool) {
	id, ok := c.Locals(LocalUserID).(uint64)

	return id, ok && id > 0
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": MsgUnauthorized})
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": MsgForbidden})
}

// Require creates Fiber middleware that requires the user to pass q.
// A failed permission computation is answered like a denial.
func Require(authService *Service, q access.Query) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := UserID(c)
		if !ok {
			log.Error().Err(ErrNoUser).Str("path", c.Path()).Msg("No authenticated user found")

			return unauthorized(c)
		}

		d, err := authService.Check(c.UserContext(), userID, q)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", userID).Str("kind", string(q.Kind())).
				Msg("Failed to check permission")

			return forbidden(c)
		}

		if !d.Allowed {
			log.Warn().Uint64("user_id", userID).Str("kind", string(d.Kind)).Str("tier", string(d.Tier)).
				Msg("User lacks required permission")

			return forbidden(c)
		}

		return c.Next()
	}
}

// RequireDashboard requires access to a dashboard.
func RequireDashboard(authService *Service, dashboard string) fiber.Handler {
	return Require(authService, access.Query{Dashboard: dashboard})
}

// RequirePage requires access to a page of a dashboard.
func RequirePage(authService *Service, dashboard, page string) fiber.Handler {
	return Require(authService, access.Query{Dashboard: dashboard, Page: page})
}

// RequireFeature requires a feature action.
func RequireFeature(authService *Service, feature, action string) fiber.Handler {
	return Require(authService, access.Query{Feature: feature, Action: action})
}

// RequireCRUD requires a CRUD verb on a resource.
func RequireCRUD(authService *Service, resource, verb string) fiber.Handler {
	return Require(authService, access.Query{CRUDResource: resource, Action: verb})
}

// RequirePolicy creates Fiber middleware that resolves the user's grant on the policy named
// by the :id parameter and requires capability (read, write or delete). The policy and the
// permission are stored in Locals for the handler.
func RequirePolicy(authService *Service, capability access.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := UserID(c)
		if !ok {
			log.Error().Err(ErrNoUser).Str("path", c.Path()).Msg("No authenticated user found")

			return unauthorized(c)
		}

		policyID, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": MsgNotFound})
		}

		policy, perm, err := authService.PolicyPermission(c.UserContext(), userID, policyID)
		if errors.Is(err, policycontroller.ErrPolicyNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": MsgNotFound})
		}

		if err != nil {
			log.Error().Err(err).Uint64("user_id", userID).Uint64("policy_id", policyID).
				Msg("Failed to resolve policy permission")

			return forbidden(c)
		}

		if !allowsPolicy(perm, capability) {
			log.Warn().Uint64("user_id", userID).Uint64("policy_id", policyID).
				Str("capability", string(capability)).Str("source", string(perm.Source)).
				Msg("User lacks required policy permission")

			return forbidden(c)
		}

		c.Locals(LocalPolicy, policy)
		c.Locals(LocalPolicyPermission, perm)

		return c.Next()
	}
}

func allowsPolicy(p access.EffectivePermission, capability access.Capability) bool {
	switch capability {
	case access.CapabilityWrite:
		return p.CanWrite
	case access.CapabilityDelete:
		return p.CanDelete
	case access.CapabilityRead, access.CapabilityView, access.CapabilityOpen:
		return p.CanRead
	}

	return false
}

// PolicyFromContext returns what RequirePolicy stored for the request.
func PolicyFromContext(c *fiber.Ctx) (*models.Policy, access.EffectivePermission, bool) {
	policy, ok := c.Locals(LocalPolicy).(*models.Policy)
	if !ok {
		return nil, access.EffectivePermission{Source: access.SourceNone}, false
	}

	perm, _ := c.Locals(LocalPolicyPermission).(access.EffectivePermission)

	return policy, perm, true
}

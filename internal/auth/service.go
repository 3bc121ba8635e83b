package auth

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/portal-access/portal-access/internal/access"
	"github.com/portal-access/portal-access/internal/cache"
	policycontroller "github.com/portal-access/portal-access/internal/db/controller/policy"
	rolecontroller "github.com/portal-access/portal-access/internal/db/controller/role"
	routecontroller "github.com/portal-access/portal-access/internal/db/controller/route"
	usercontroller "github.com/portal-access/portal-access/internal/db/controller/user"
	"github.com/portal-access/portal-access/internal/db/models"
)

const (
	cacheKeyCatalog    = "catalog"
	cacheKeyRoutes     = "routes"
	cacheKeyUserPrefix = "user:"

	defaultCacheSize = 1024
	defaultCacheTTL  = 5 * time.Minute
)

// Service answers access questions for stored users.
type Service struct {
	db         *gorm.DB
	cache      cache.Cache
	decisions  zerolog.Logger
	deniedOnly bool
}

// NewService creates a new auth service. A nil cache falls back to a process-local one.
func NewService(db *gorm.DB, c cache.Cache) *Service {
	initMetrics()

	if c == nil {
		c = cache.NewMemory(defaultCacheSize, defaultCacheTTL)
	}

	return &Service{db: db, cache: c, decisions: zerolog.Nop()}
}

// SetDecisionLog routes every decision to l. With deniedOnly set, allowed decisions are not written.
func (s *Service) SetDecisionLog(l zerolog.Logger, deniedOnly bool) {
	s.decisions = l
	s.deniedOnly = deniedOnly
}

func userKey(id uint64) string {
	return cacheKeyUserPrefix + strconv.FormatUint(id, 10)
}

// load reads key from the cache and falls back to fetch on a miss, storing the result.
// Cache failures are logged and never fail the call.
func load[T any](ctx context.Context, s *Service, key, entry string, fetch func() (T, error)) (T, error) {
	var out T

	raw, err := s.cache.Get(ctx, key)

	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, &out); jsonErr == nil {
			countLookup(entry, true)

			return out, nil
		}

		log.Warn().Str("key", key).Msg("dropping undecodable cache entry")
	case !errors.Is(err, cache.ErrMiss):
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}

	countLookup(entry, false)

	out, err = fetch()
	if err != nil {
		return out, err
	}

	if raw, err = json.Marshal(out); err == nil {
		if err = s.cache.Set(ctx, key, raw); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}

	return out, nil
}

// User returns the engine view of an active user.
func (s *Service) User(ctx context.Context, id uint64) (access.User, error) {
	if s == nil || s.db == nil {
		return access.User{}, ErrServiceNil
	}

	return load(ctx, s, userKey(id), "user", func() (access.User, error) {
		u, err := usercontroller.Get(s.db, id)
		if err != nil {
			return access.User{}, err
		}

		return u.ToAccess(), nil
	})
}

// Catalog returns the role catalog.
func (s *Service) Catalog(ctx context.Context) (access.StaticCatalog, error) {
	if s == nil || s.db == nil {
		return nil, ErrServiceNil
	}

	return load(ctx, s, cacheKeyCatalog, "catalog", func() (access.StaticCatalog, error) {
		return rolecontroller.Catalog(s.db)
	})
}

// Routes returns the route catalog in menu order.
func (s *Service) Routes(ctx context.Context) ([]models.DashboardRoute, error) {
	if s == nil || s.db == nil {
		return nil, ErrServiceNil
	}

	return load(ctx, s, cacheKeyRoutes, "routes", func() ([]models.DashboardRoute, error) {
		return routecontroller.GetAll(s.db)
	})
}

// View aggregates the roles of user. Role ids missing from the catalog are logged.
func (s *Service) View(ctx context.Context, user access.User) (access.AggregatedView, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return access.AggregatedView{}, err
	}

	view := access.NewResolver(catalog).Aggregate(user)
	if len(view.Unknown) > 0 {
		log.Warn().Str("user_id", user.ID).Strs("roles", view.Unknown).Msg("user references unknown roles")
	}

	return view, nil
}

// Check resolves q for the user with the given id.
func (s *Service) Check(ctx context.Context, userID uint64, q access.Query) (access.Decision, error) {
	user, err := s.User(ctx, userID)
	if err != nil {
		return access.Decision{Kind: q.Kind(), Tier: access.TierDefault}, err
	}

	view, err := s.View(ctx, user)
	if err != nil {
		return access.Decision{Kind: q.Kind(), Tier: access.TierDefault}, err
	}

	d := access.Explain(user, view, q)

	s.record(user.ID, string(d.Kind), d.Allowed, func(e *zerolog.Event) {
		e.Str("tier", string(d.Tier)).
			Str("dashboard", q.Dashboard).
			Str("page", q.Page).
			Str("feature", q.Feature).
			Str("action", q.Action).
			Str("crud", q.CRUDResource).
			Str("department", q.Department).
			Str("capability", string(q.Capability))
	})

	return d, nil
}

// CanNavigate reports whether the user may open path.
func (s *Service) CanNavigate(ctx context.Context, userID uint64, path string) (bool, error) {
	user, err := s.User(ctx, userID)
	if err != nil {
		return false, err
	}

	view, err := s.View(ctx, user)
	if err != nil {
		return false, err
	}

	routes, err := s.Routes(ctx)
	if err != nil {
		return false, err
	}

	allowed := access.CanNavigateRoute(user, view, routecontroller.TableOf(routes), path)

	s.record(user.ID, kindNavigate, allowed, func(e *zerolog.Event) {
		e.Str("path", path)
	})

	return allowed, nil
}

// Menu holds what the dashboard switcher shows a user.
type Menu struct {
	// Dashboards are the dashboards granted by the user's roles.
	Dashboards []string
	// Routes are the routes the user may open, in menu order.
	Routes []models.DashboardRoute
}

// Menu returns the dashboards and navigable routes of the user.
func (s *Service) Menu(ctx context.Context, userID uint64) (Menu, error) {
	user, err := s.User(ctx, userID)
	if err != nil {
		return Menu{}, err
	}

	view, err := s.View(ctx, user)
	if err != nil {
		return Menu{}, err
	}

	routes, err := s.Routes(ctx)
	if err != nil {
		return Menu{}, err
	}

	table := routecontroller.TableOf(routes)
	menu := Menu{Dashboards: view.DashboardList()}

	for _, r := range routes {
		if access.CanNavigateRoute(user, view, table, r.Path) {
			menu.Routes = append(menu.Routes, r)
		}
	}

	return menu, nil
}

// PolicyPermission loads a policy with its grants and resolves the user's effective permission.
// Grants are never cached, so a grant change is visible to the next call.
func (s *Service) PolicyPermission(
	ctx context.Context,
	userID, policyID uint64,
) (*models.Policy, access.EffectivePermission, error) {
	none := access.EffectivePermission{Source: access.SourceNone}

	user, err := s.User(ctx, userID)
	if err != nil {
		return nil, none, err
	}

	policy, err := policycontroller.Get(s.db.WithContext(ctx), policyID)
	if err != nil {
		return nil, none, err
	}

	perm := access.ResolveResourcePermission(policy.ToAccess(), user)

	s.record(user.ID, kindPolicy, perm.CanRead, func(e *zerolog.Event) {
		e.Uint64("policy_id", policyID).
			Str("source", string(perm.Source)).
			Bool("can_write", perm.CanWrite).
			Bool("can_delete", perm.CanDelete)
	})

	return policy, perm, nil
}

// InvalidateUser drops the cached record of a user after a role or override change.
func (s *Service) InvalidateUser(ctx context.Context, id uint64) error {
	return s.invalidate(ctx, userKey(id))
}

// InvalidateCatalog drops the cached role catalog after a role change.
func (s *Service) InvalidateCatalog(ctx context.Context) error {
	return s.invalidate(ctx, cacheKeyCatalog)
}

// InvalidateRoutes drops the cached route catalog.
func (s *Service) InvalidateRoutes(ctx context.Context) error {
	return s.invalidate(ctx, cacheKeyRoutes)
}

func (s *Service) invalidate(ctx context.Context, keys ...string) error {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		log.Error().Err(err).Strs("keys", keys).Msg("cache invalidation failed")

		return err
	}

	return nil
}

// record counts a decision and writes it to the decision log.
func (s *Service) record(userID, kind string, allowed bool, fields func(e *zerolog.Event)) {
	countDecision(kind, allowed)

	if allowed && s.deniedOnly {
		return
	}

	e := s.decisions.Info()
	if e == nil {
		return
	}

	fields(e)
	e.Str("user_id", userID).Str("kind", kind).Bool("allowed", allowed).Msg("access decision")
}

package route

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portal-access/portal-access/internal/db/seed"
	"github.com/portal-access/portal-access/internal/web/handler/handlertest"
)

type payload = map[string]any

func newEnv(t *testing.T) *handlertest.Env {
	t.Helper()

	env := handlertest.New(t)

	s := &Service{}
	s.Init(env.App, env.Cfg, env.DB, env.Auth)

	return env
}

func TestList(t *testing.T) {
	env := newEnv(t)

	status, _ := env.Do(t, http.MethodGet, Path, handlertest.UserEmployee, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := env.Do(t, http.MethodGet, Path, handlertest.UserAdmin, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	routes := handlertest.Decode[[]Route](t, body)
	require.Len(t, routes, len(seed.Routes()))
	assert.Equal(t, "/self", routes[0].Path)
}

func TestUpsert_InvalidatesRoutes(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	allowed, err := env.Auth.CanNavigate(ctx, handlertest.UserEmployee, "/self/benefits")
	require.NoError(t, err)
	require.False(t, allowed, "unmapped path")

	status, body := env.Do(t, http.MethodPut, Path, handlertest.UserAdmin, payload{
		"path": "/self/benefits/", "dashboard": "self", "page": "payslips", "title": "Benefits", "menu_order": 14,
	})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "/self/benefits", handlertest.Decode[Route](t, body).Path)

	allowed, err = env.Auth.CanNavigate(ctx, handlertest.UserEmployee, "/self/benefits")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = env.Auth.CanNavigate(ctx, handlertest.UserEmployee, "/self/benefits/2026")
	require.NoError(t, err)
	assert.False(t, allowed, "not a prefix route")

	status, body = env.Do(t, http.MethodPut, Path, handlertest.UserAdmin, payload{
		"path": "/self/benefits", "dashboard": "self", "page": "payslips", "prefix": true,
	})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.True(t, handlertest.Decode[Route](t, body).Prefix)

	allowed, err = env.Auth.CanNavigate(ctx, handlertest.UserEmployee, "/self/benefits/2026")
	require.NoError(t, err)
	assert.True(t, allowed)

	status, _ = env.Do(t, http.MethodPut, Path, handlertest.UserAdmin, payload{"path": "self", "dashboard": "self"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.Do(t, http.MethodPut, Path, handlertest.UserAdmin, payload{"path": "/x"})
	assert.Equal(t, http.StatusBadRequest, status)
}

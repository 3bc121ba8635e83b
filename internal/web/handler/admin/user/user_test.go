package user

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portal-access/portal-access/internal/access"
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

func TestListAndShow(t *testing.T) {
	env := newEnv(t)

	status, _ := env.Do(t, http.MethodGet, Path, handlertest.UserHR, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := env.Do(t, http.MethodGet, Path+"?pageSize=2&page=2", handlertest.UserAdmin, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	users := handlertest.Decode[[]User](t, body)
	require.Len(t, users, 2)
	assert.Equal(t, handlertest.UserAdmin, users[0].ID)

	status, body = env.Do(t, http.MethodGet, Path+"/5", handlertest.UserAdmin, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	detail := handlertest.Decode[Detail](t, body)
	assert.Equal(t, "manager", detail.PrimaryRole)
	assert.Equal(t, []string{"employee"}, detail.AdditionalRoles)
	assert.ElementsMatch(t, []string{"team", "self", "policies"}, detail.Dashboards)
	assert.Equal(t, []string{"manager", "employee"}, detail.Roles)
	assert.False(t, detail.HasOverrides)
	assert.False(t, detail.FullAccess)

	status, _ = env.Do(t, http.MethodGet, Path+"/999", handlertest.UserAdmin, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.Do(t, http.MethodGet, Path+"/abc", handlertest.UserAdmin, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSetOverrides(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	check := func(q access.Query) access.Decision {
		d, err := env.Auth.Check(ctx, handlertest.UserEmployee, q)
		require.NoError(t, err)

		return d
	}

	require.False(t, check(access.Query{Dashboard: "finance"}).Allowed)

	status, body := env.Do(t, http.MethodPut, Path+"/1/overrides", handlertest.UserAdmin, payload{
		"dashboards": payload{"finance": true, "self": false},
	})
	require.Equal(t, http.StatusOK, status, string(body))

	u := handlertest.Decode[User](t, body)
	assert.Equal(t, map[string]bool{"finance": true, "self": false}, u.ExtraPermissions.Dashboards)

	d := check(access.Query{Dashboard: "finance"})
	assert.True(t, d.Allowed)
	assert.Equal(t, access.TierOverride, d.Tier)

	d = check(access.Query{Dashboard: "self"})
	assert.False(t, d.Allowed, "an explicit deny beats the role")
	assert.Equal(t, access.TierOverride, d.Tier)

	status, _ = env.Do(t, http.MethodPut, Path+"/1/overrides", handlertest.UserAdmin, payload{})
	require.Equal(t, http.StatusOK, status)

	assert.True(t, check(access.Query{Dashboard: "self"}).Allowed)

	status, _ = env.Do(t, http.MethodPut, Path+"/1/overrides", handlertest.UserAdmin, payload{"dashboards": "yes"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSetDepartment(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	status, _ := env.Do(t, http.MethodPut, Path+"/1/overrides", handlertest.UserAdmin, payload{
		"department_dashboards": payload{"finance": true},
	})
	require.Equal(t, http.StatusOK, status)

	q := access.Query{Dashboard: "finance", Department: "finance"}

	d, err := env.Auth.Check(ctx, handlertest.UserEmployee, q)
	require.NoError(t, err)
	assert.False(t, d.Allowed, "user is not in the department yet")

	status, body := env.Do(t, http.MethodPut, Path+"/1/department", handlertest.UserAdmin, payload{"department_id": "finance"})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "finance", handlertest.Decode[User](t, body).DepartmentID)

	d, err = env.Auth.Check(ctx, handlertest.UserEmployee, q)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, access.TierDepartment, d.Tier)

	d, err = env.Auth.Check(ctx, handlertest.UserEmployee, access.Query{Dashboard: "finance", Department: "hr"})
	require.NoError(t, err)
	assert.False(t, d.Allowed)
}

func TestSetRoles(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	allowed, err := env.Auth.CanNavigate(ctx, handlertest.UserEmployee, "/finance/invoices")
	require.NoError(t, err)
	require.False(t, allowed)

	status, body := env.Do(t, http.MethodPut, Path+"/1/roles", handlertest.UserAdmin, payload{
		"primary_role":     "employee",
		"additional_roles": []string{"finance"},
	})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, []string{"finance"}, handlertest.Decode[User](t, body).AdditionalRoles)

	allowed, err = env.Auth.CanNavigate(ctx, handlertest.UserEmployee, "/finance/invoices")
	require.NoError(t, err)
	assert.True(t, allowed)

	tests := []struct {
		name   string
		path   string
		body   payload
		status int
	}{
		{"unknown role", "/1/roles", payload{"primary_role": "wizard"}, http.StatusBadRequest},
		{"unknown additional role", "/1/roles", payload{"primary_role": "hr", "additional_roles": []string{"x"}}, http.StatusBadRequest},
		{"missing primary", "/1/roles", payload{"additional_roles": []string{"hr"}}, http.StatusBadRequest},
		{"unknown user", "/999/roles", payload{"primary_role": "hr"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.Do(t, http.MethodPut, Path+tt.path, handlertest.UserAdmin, tt.body)
			assert.Equal(t, tt.status, status, string(body))
		})
	}
}

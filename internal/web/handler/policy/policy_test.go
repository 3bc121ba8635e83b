package policy

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portal-access/portal-access/internal/access"
	"github.com/portal-access/portal-access/internal/web/handler/handlertest"
)

func newEnv(t *testing.T) *handlertest.Env {
	t.Helper()

	env := handlertest.New(t)

	s := &Service{}
	s.Init(env.App, env.Cfg, env.DB, env.Auth)

	return env
}

func createPolicy(t *testing.T, env *handlertest.Env, title string) Document {
	t.Helper()

	status, body := env.Do(t, http.MethodPost, Path, handlertest.UserHR, payload{"title": title, "content": "v1"})
	require.Equal(t, http.StatusCreated, status, string(body))

	return handlertest.Decode[Document](t, body)
}

type payload = map[string]any

func policyPath(id uint64, suffix string) string {
	return Path + "/" + strconv.FormatUint(id, 10) + suffix
}

func TestCreate(t *testing.T) {
	env := newEnv(t)

	doc := createPolicy(t, env, "Leave policy")
	assert.Equal(t, 1, doc.Version)
	assert.True(t, doc.IsActive)

	status, _ := env.Do(t, http.MethodPost, Path, handlertest.UserEmployee, payload{"title": "Nope"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.Do(t, http.MethodPost, Path, handlertest.UserHR, payload{"content": "no title"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := env.Do(t, http.MethodGet, policyPath(doc.ID, "/grants"), handlertest.UserAdmin, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	grants := handlertest.Decode[[]Grant](t, body)
	require.Len(t, grants, 3, "admin and hr role grants plus the creator")
	require.NotNil(t, grants[2].UserID)
	assert.Equal(t, handlertest.UserHR, *grants[2].UserID)
	assert.True(t, grants[2].Individual)
	assert.False(t, grants[0].Individual)
}

func TestShowAndPermission(t *testing.T) {
	env := newEnv(t)
	doc := createPolicy(t, env, "Code of conduct")

	tests := []struct {
		name   string
		user   uint64
		status int
		source access.Source
	}{
		{"creator individual", handlertest.UserHR, http.StatusOK, access.SourceIndividual},
		{"admin by role grant", handlertest.UserAdmin, http.StatusOK, access.SourceRole},
		{"employee without grant", handlertest.UserEmployee, http.StatusForbidden, access.SourceNone},
		{"finance without grant", handlertest.UserFinance, http.StatusForbidden, access.SourceNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := env.Do(t, http.MethodGet, policyPath(doc.ID, ""), tt.user, nil)
			assert.Equal(t, tt.status, status)

			status, body := env.Do(t, http.MethodGet, policyPath(doc.ID, "/permission"), tt.user, nil)
			require.Equal(t, http.StatusOK, status)

			perm := handlertest.Decode[access.EffectivePermission](t, body)
			assert.Equal(t, tt.source, perm.Source)
		})
	}

	status, _ := env.Do(t, http.MethodGet, policyPath(999, ""), handlertest.UserAdmin, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.Do(t, http.MethodGet, policyPath(999, "/permission"), handlertest.UserAdmin, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUpdate_BumpsVersion(t *testing.T) {
	env := newEnv(t)
	doc := createPolicy(t, env, "Travel")

	status, body := env.Do(t, http.MethodPut, policyPath(doc.ID, ""), handlertest.UserHR,
		payload{"title": "Travel", "content": "v2"})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, 2, handlertest.Decode[Document](t, body).Version)

	status, body = env.Do(t, http.MethodPut, policyPath(doc.ID, ""), handlertest.UserHR,
		payload{"title": "Travel", "content": "v2"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, handlertest.Decode[Document](t, body).Version, "unchanged content keeps the version")

	status, _ = env.Do(t, http.MethodPut, policyPath(doc.ID, ""), handlertest.UserEmployee,
		payload{"title": "Travel", "content": "hijack"})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestGrants(t *testing.T) {
	env := newEnv(t)
	doc := createPolicy(t, env, "Security")
	grants := policyPath(doc.ID, "/grants")

	// employee role may read, emma is then closed individually
	status, body := env.Do(t, http.MethodPut, grants, handlertest.UserHR, payload{"role": "employee", "can_read": true})
	require.Equal(t, http.StatusOK, status, string(body))

	status, _ = env.Do(t, http.MethodGet, policyPath(doc.ID, ""), handlertest.UserEmployee, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = env.Do(t, http.MethodPut, grants, handlertest.UserHR,
		payload{"user_id": handlertest.UserEmployee, "can_write": true})
	require.Equal(t, http.StatusOK, status, string(body))

	row := handlertest.Decode[Grant](t, body)
	assert.True(t, row.CanRead, "write implies read")
	assert.True(t, row.CanWrite)

	status, body = env.Do(t, http.MethodPut, grants, handlertest.UserHR,
		payload{"user_id": handlertest.UserEmployee, "can_read": false})
	require.Equal(t, http.StatusOK, status)

	row = handlertest.Decode[Grant](t, body)
	assert.False(t, row.CanRead)
	assert.False(t, row.CanWrite, "clearing read clears write")

	status, _ = env.Do(t, http.MethodGet, policyPath(doc.ID, ""), handlertest.UserEmployee, nil)
	assert.Equal(t, http.StatusForbidden, status, "individual row wins over the role row")

	status, body = env.Do(t, http.MethodGet, policyPath(doc.ID, "/permission"), handlertest.UserEmployee, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, access.SourceIndividual, handlertest.Decode[access.EffectivePermission](t, body).Source)

	status, _ = env.Do(t, http.MethodDelete, grants+"/"+strconv.FormatUint(row.ID, 10), handlertest.UserHR, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, body = env.Do(t, http.MethodGet, policyPath(doc.ID, "/permission"), handlertest.UserEmployee, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, access.SourceRole, handlertest.Decode[access.EffectivePermission](t, body).Source)

	status, _ = env.Do(t, http.MethodDelete, grants+"/"+strconv.FormatUint(row.ID, 10), handlertest.UserHR, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGrants_Rejected(t *testing.T) {
	env := newEnv(t)
	doc := createPolicy(t, env, "Expenses")
	grants := policyPath(doc.ID, "/grants")

	tests := []struct {
		name   string
		user   uint64
		body   payload
		status int
	}{
		{"no manage permission", handlertest.UserFinance, payload{"role": "finance", "can_read": true}, http.StatusForbidden},
		{"conflicting flags", handlertest.UserHR,
			payload{"role": "finance", "can_read": false, "can_write": true}, http.StatusBadRequest},
		{"both principals", handlertest.UserHR,
			payload{"role": "finance", "user_id": handlertest.UserFinance, "can_read": true}, http.StatusBadRequest},
		{"no principal", handlertest.UserHR, payload{"can_read": true}, http.StatusBadRequest},
		{"unknown role", handlertest.UserHR, payload{"role": "nope", "can_read": true}, http.StatusBadRequest},
		{"unknown user", handlertest.UserHR, payload{"user_id": 999, "can_read": true}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.Do(t, http.MethodPut, grants, tt.user, tt.body)
			assert.Equal(t, tt.status, status, string(body))
		})
	}

	status, _ := env.Do(t, http.MethodGet, grants, handlertest.UserFinance, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.Do(t, http.MethodGet, policyPath(999, "/grants"), handlertest.UserHR, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRetiredPolicy(t *testing.T) {
	env := newEnv(t)
	doc := createPolicy(t, env, "Old handbook")

	status, _ := env.Do(t, http.MethodPut, policyPath(doc.ID, "/grants"), handlertest.UserHR,
		payload{"role": "employee", "can_read": true})
	require.Equal(t, http.StatusOK, status)

	status, _ = env.Do(t, http.MethodPut, policyPath(doc.ID, "/active"), handlertest.UserHR, payload{"active": false})
	require.Equal(t, http.StatusOK, status)

	status, _ = env.Do(t, http.MethodGet, policyPath(doc.ID, ""), handlertest.UserEmployee, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.Do(t, http.MethodGet, policyPath(doc.ID, ""), handlertest.UserHR, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body := env.Do(t, http.MethodGet, Path, handlertest.UserEmployee, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, handlertest.Decode[[]Document](t, body))

	status, body = env.Do(t, http.MethodGet, Path, handlertest.UserHR, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, handlertest.Decode[[]Document](t, body), 1)
}

func TestDelete(t *testing.T) {
	env := newEnv(t)
	doc := createPolicy(t, env, "Temp")

	status, _ := env.Do(t, http.MethodDelete, policyPath(doc.ID, ""), handlertest.UserEmployee, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.Do(t, http.MethodDelete, policyPath(doc.ID, ""), handlertest.UserHR, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = env.Do(t, http.MethodGet, policyPath(doc.ID, ""), handlertest.UserHR, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

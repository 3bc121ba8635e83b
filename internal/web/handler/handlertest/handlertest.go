// Package handlertest provides a seeded database, sessions and request helpers for handler tests.
package handlertest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/portal-access/portal-access/internal/auth"
	"github.com/portal-access/portal-access/internal/cache"
	"github.com/portal-access/portal-access/internal/config"
	"github.com/portal-access/portal-access/internal/db/models"
	"github.com/portal-access/portal-access/internal/db/seed"
	webauth "github.com/portal-access/portal-access/internal/web/middleware/auth"
	"github.com/portal-access/portal-access/internal/web/session"
)

// Seeded user ids.
const (
	UserEmployee uint64 = 1 // emma, employee
	UserHR       uint64 = 2 // harry, hr
	UserAdmin    uint64 = 3 // ada, admin
	UserFinance  uint64 = 4 // finn, finance
	UserManager  uint64 = 5 // mona, manager with employee as additional role
)

// Env is a seeded test environment.
type Env struct {
	DB    *gorm.DB
	Auth  *auth.Service
	Cfg   *config.Config
	Store *session.Store
	App   *fiber.App
}

// Users returns the seeded users.
func Users() []models.User {
	return []models.User{
		{ID: UserEmployee, Active: true, Username: "emma", PrimaryRole: seed.RoleEmployee},
		{ID: UserHR, Active: true, Username: "harry", PrimaryRole: seed.RoleHR},
		{ID: UserAdmin, Active: true, Username: "ada", PrimaryRole: seed.RoleAdmin},
		{ID: UserFinance, Active: true, Username: "finn", PrimaryRole: seed.RoleFinance, DepartmentID: "finance"},
		{
			ID: UserManager, Active: true, Username: "mona", PrimaryRole: seed.RoleManager,
			AdditionalRoles: []string{seed.RoleEmployee},
		},
	}
}

// NewDB returns a migrated and seeded in-memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))
	require.NoError(t, seed.Run(db))

	users := Users()
	require.NoError(t, db.Create(&users).Error)

	return db
}

// New returns an environment whose app authenticates requests through the session middleware.
// Handlers are registered by the caller on env.App.
func New(t *testing.T) *Env {
	t.Helper()

	db := NewDB(t)
	store := session.New(session.NewMemoryStorage(100, time.Hour), time.Hour)

	for _, u := range Users() {
		require.NoError(t, store.Write(SessionID(u.ID), session.Data{
			UserID: u.ID, Username: u.Username, IssuedAt: time.Now(),
		}))
	}

	app := fiber.New()
	app.Use(webauth.New(webauth.Config{Store: store}))

	return &Env{
		DB:    db,
		Auth:  auth.NewService(db, cache.NewMemory(100, time.Minute)),
		Cfg:   &config.Config{Title: "test", Webserver: config.Webserver{Port: 3000, URL: "http://localhost"}},
		Store: store,
		App:   app,
	}
}

// SessionID returns the session cookie value of a seeded user.
func SessionID(userID uint64) string {
	return "session-" + strconv.FormatUint(userID, 10)
}

// Do sends a request as userID (0 sends no cookie) and returns status and body.
// A non-nil body is sent as JSON.
func (e *Env) Do(t *testing.T, method, path string, userID uint64, body any) (int, []byte) {
	t.Helper()

	resp, out := e.Send(t, method, path, userID, body)

	return resp.StatusCode, out
}

// Send is Do returning the whole response. The body is already read and closed.
func (e *Env) Send(t *testing.T, method, path string, userID uint64, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if userID > 0 {
		req.AddCookie(&http.Cookie{Name: "session", Value: SessionID(userID)})
	}

	resp, err := e.App.Test(req, -1)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, out
}

// FailingCache misses every read and fails every delete.
type FailingCache struct{}

// ErrCacheDown is returned by FailingCache.Delete.
var ErrCacheDown = errors.New("cache unavailable")

// Get implements cache.Cache.
func (FailingCache) Get(context.Context, string) ([]byte, error) { return nil, cache.ErrMiss }

// Set implements cache.Cache.
func (FailingCache) Set(context.Context, string, []byte) error { return nil }

// Delete implements cache.Cache.
func (FailingCache) Delete(context.Context, ...string) error { return ErrCacheDown }

// Decode unmarshals a JSON response body into T.
func Decode[T any](t *testing.T, body []byte) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(body, &out), string(body))

	return out
}

package route

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/portal-access/portal-access/internal/access"
	"github.com/portal-access/portal-access/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.DashboardRoute{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestUpsert(t *testing.T) {
	db := setupTestDB(t)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		route         models.DashboardRoute
		expectedError error
	}{
		{name: "nil database", route: models.DashboardRoute{Path: "/x", Dashboard: "x"}, expectedError: ErrDBNil},
		{name: "empty path", dbParam: db, route: models.DashboardRoute{Dashboard: "x"}, expectedError: ErrPathEmpty},
		{name: "empty dashboard", dbParam: db, route: models.DashboardRoute{Path: "/x"}, expectedError: ErrDashboardEmpty},
		{name: "create", dbParam: db, route: models.DashboardRoute{Path: "/finance/", Dashboard: "finance"}},
		{name: "update", dbParam: db, route: models.DashboardRoute{Path: "/finance", Dashboard: "finance", Title: "Finance"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Upsert(tc.dbParam, tc.route)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "/finance", got.Path)
		})
	}

	routes, err := GetAll(db)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "Finance", routes[0].Title)
}

func TestTableOf(t *testing.T) {
	db := setupTestDB(t)

	_, err := Upsert(db, models.DashboardRoute{Path: "/finance", Dashboard: "finance", MenuOrder: 2})
	require.NoError(t, err)
	_, err = Upsert(db, models.DashboardRoute{Path: "/finance/invoices", Dashboard: "finance", Page: "invoices", MenuOrder: 3, Prefix: true})
	require.NoError(t, err)
	_, err = Upsert(db, models.DashboardRoute{Path: "/self", Dashboard: "self", MenuOrder: 1})
	require.NoError(t, err)

	routes, err := GetAll(db)
	require.NoError(t, err)
	require.Len(t, routes, 3)
	assert.Equal(t, "/self", routes[0].Path)

	table := TableOf(routes)

	r, ok := table.Route("/finance/invoices/42")
	require.True(t, ok)
	assert.Equal(t, access.Route{Dashboard: "finance", Page: "invoices", Prefix: true}, r)

	_, ok = table.Route("/self/unknown")
	assert.False(t, ok)
}

// Package route provides the route catalog stored in the database.
package route

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/portal-access/portal-access/internal/access"
	"github.com/portal-access/portal-access/internal/db/models"
)

var (
	// ErrPathEmpty is returned when a route path is empty.
	ErrPathEmpty = errors.New("route path cannot be empty")
	// ErrDashboardEmpty is returned when a route has no dashboard.
	ErrDashboardEmpty = errors.New("route dashboard cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// GetAll returns every route in menu order.
func GetAll(db *gorm.DB) ([]models.DashboardRoute, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var routes []models.DashboardRoute

	if err := db.Order("menu_order ASC, path ASC").Find(&routes).Error; err != nil {
		return nil, err
	}

	return routes, nil
}

// TableOf indexes already loaded routes by normalized path.
func TableOf(routes []models.DashboardRoute) access.RouteTable {
	table := make(access.RouteTable, len(routes))
	for _, r := range routes {
		table[access.NormalizePath(r.Path)] = access.Route{Dashboard: r.Dashboard, Page: r.Page, Prefix: r.Prefix}
	}

	return table
}

// Upsert creates or updates the route registered for a path.
func Upsert(db *gorm.DB, r models.DashboardRoute) (*models.DashboardRoute, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if strings.TrimSpace(r.Path) == "" {
		return nil, ErrPathEmpty
	}

	if strings.TrimSpace(r.Dashboard) == "" {
		return nil, ErrDashboardEmpty
	}

	r.Path = access.NormalizePath(r.Path)

	var existing models.DashboardRoute

	err := db.Where("path = ?", r.Path).First(&existing).Error

	switch {
	case err == nil:
		r.ID = existing.ID
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	if err := db.Save(&r).Error; err != nil {
		return nil, err
	}

	return &r, nil
}

package models

import (
	"time"

	"github.com/portal-access/portal-access/internal/access"
)

// Role represents a role in the role-based access control (RBAC) system.
// A role carries the default dashboards and the permission matrices every holder receives.
// Examples include "employee", "hr" and "admin".
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey"`
	// Name is the stable role key users reference (e.g., "hr", "admin").
	Name string `gorm:"unique;size:100;not null"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"size:255"`
	// IsSystem indicates if this is a system role that cannot be deleted.
	IsSystem bool `gorm:"default:false"`
	// FullAccess grants every dashboard, page and CRUD action. Document grants are not affected.
	FullAccess bool `gorm:"default:false"`
	// DefaultDashboards lists the dashboards holders can open.
	DefaultDashboards []string `gorm:"serializer:json;type:text"`
	// DashboardPermissions is the read/write/view/delete matrix per dashboard.
	DashboardPermissions map[string]access.Quad `gorm:"serializer:json;type:text"`
	// PagePermissions is the read/write/view/delete matrix per page, grouped by dashboard.
	PagePermissions map[string]map[string]access.Quad `gorm:"serializer:json;type:text"`
	// Features holds the default feature actions of the role.
	Features map[string]map[string]bool `gorm:"serializer:json;type:text"`
	// CRUD holds the default CRUD verbs per resource of the role.
	CRUD map[string]map[string]bool `gorm:"column:crud;serializer:json;type:text"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Role model.
// This overrides GORM's default pluralized table naming.
func (Role) TableName() string {
	return "roles"
}

// ToAccess converts the row into the engine's role type.
func (r *Role) ToAccess() *access.Role {
	return &access.Role{
		ID:                   r.Name,
		FullAccess:           r.FullAccess,
		DefaultDashboards:    r.DefaultDashboards,
		DashboardPermissions: r.DashboardPermissions,
		PagePermissions:      r.PagePermissions,
		Features:             r.Features,
		CRUD:                 r.CRUD,
	}
}

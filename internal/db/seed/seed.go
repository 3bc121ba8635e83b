// Package seed fills an empty database with the built-in roles, the route catalog
// and the default document grants.
package seed

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/portal-access/portal-access/internal/access"
	policycontroller "github.com/portal-access/portal-access/internal/db/controller/policy"
	"github.com/portal-access/portal-access/internal/db/models"
)

// Built-in role names.
const (
	RoleEmployee = "employee"
	RoleHR       = "hr"
	RoleManager  = "manager"
	RoleFinance  = "finance"
	RoleAdmin    = "admin"
)

// DefaultGrantRoles receive read, write and delete on every new policy.
var DefaultGrantRoles = []string{RoleAdmin, RoleHR} //nolint:gochecknoglobals

func rw() access.Quad  { return access.Quad{Read: true, Write: true, View: true} }
func ro() access.Quad  { return access.Quad{Read: true, View: true} }
func all() access.Quad { return access.Quad{Read: true, Write: true, View: true, Delete: true} }

// Roles returns the built-in roles.
func Roles() []models.Role {
	return []models.Role{
		{
			Name:              RoleEmployee,
			Description:       "Every member of staff",
			IsSystem:          true,
			DefaultDashboards: []string{"self", "policies"},
			PagePermissions: map[string]map[string]access.Quad{
				"self":     {"profile": ro(), "leave": rw(), "payslips": ro()},
				"policies": {"library": ro()},
			},
			Features: map[string]map[string]bool{
				"leave": {"apply": true},
			},
			CRUD: map[string]map[string]bool{
				"leave_requests": {access.CRUDCreate: true, access.CRUDRead: true},
			},
		},
		{
			Name:              RoleHR,
			Description:       "Human resources",
			IsSystem:          true,
			DefaultDashboards: []string{"employee_management", "policies"},
			DashboardPermissions: map[string]access.Quad{
				"employee_management": all(),
			},
			PagePermissions: map[string]map[string]access.Quad{
				"employee_management": {"directory": rw(), "onboarding": rw(), "payroll": {}},
				"policies":            {"library": rw()},
			},
			Features: map[string]map[string]bool{
				"reports":  {"export_report": true},
				"policies": {"manage_permissions": true},
			},
			CRUD: map[string]map[string]bool{
				"employees": {access.CRUDCreate: true, access.CRUDRead: true, access.CRUDUpdate: true},
				"policies":  {access.CRUDCreate: true},
			},
		},
		{
			Name:              RoleManager,
			Description:       "Team leads",
			IsSystem:          true,
			DefaultDashboards: []string{"team"},
			PagePermissions: map[string]map[string]access.Quad{
				"team": {"approvals": rw(), "roster": ro()},
			},
			Features: map[string]map[string]bool{
				"leave": {"approve": true},
			},
			CRUD: map[string]map[string]bool{
				"leave_requests": {access.CRUDRead: true, access.CRUDUpdate: true},
			},
		},
		{
			Name:              RoleFinance,
			Description:       "Finance and billing",
			IsSystem:          true,
			DefaultDashboards: []string{"finance"},
			DashboardPermissions: map[string]access.Quad{
				"finance": rw(),
			},
			PagePermissions: map[string]map[string]access.Quad{
				"finance": {"invoices": all(), "billing": rw()},
			},
			Features: map[string]map[string]bool{
				"reports": {"export_report": true},
			},
			CRUD: map[string]map[string]bool{
				"invoices": {
					access.CRUDCreate: true, access.CRUDRead: true, access.CRUDUpdate: true, access.CRUDDelete: true,
				},
			},
		},
		{
			Name:              RoleAdmin,
			Description:       "Administrators, full access to dashboards, pages and CRUD",
			IsSystem:          true,
			FullAccess:        true,
			DefaultDashboards: []string{"admin"},
			Features: map[string]map[string]bool{
				"policies": {"manage_permissions": true},
			},
		},
	}
}

// Routes returns the built-in route catalog.
func Routes() []models.DashboardRoute {
	type r = models.DashboardRoute

	return []models.DashboardRoute{
		r{Path: "/self", Dashboard: "self", Title: "My space", MenuOrder: 10},
		r{Path: "/self/profile", Dashboard: "self", Page: "profile", Title: "Profile", MenuOrder: 11},
		r{Path: "/self/leave", Dashboard: "self", Page: "leave", Title: "Leave", MenuOrder: 12},
		r{Path: "/self/payslips", Dashboard: "self", Page: "payslips", Title: "Payslips", MenuOrder: 13},
		r{Path: "/team", Dashboard: "team", Title: "My team", MenuOrder: 20},
		r{Path: "/team/approvals", Dashboard: "team", Page: "approvals", Title: "Approvals", MenuOrder: 21},
		r{Path: "/team/roster", Dashboard: "team", Page: "roster", Title: "Roster", MenuOrder: 22},
		r{Path: "/employees", Dashboard: "employee_management", Title: "Employees", MenuOrder: 30},
		r{Path: "/employees/directory", Dashboard: "employee_management", Page: "directory", Title: "Directory", MenuOrder: 31, Prefix: true},
		r{Path: "/employees/onboarding", Dashboard: "employee_management", Page: "onboarding", Title: "Onboarding", MenuOrder: 32},
		r{Path: "/employees/payroll", Dashboard: "employee_management", Page: "payroll", Title: "Payroll", MenuOrder: 33},
		r{Path: "/finance", Dashboard: "finance", Title: "Finance", MenuOrder: 40},
		r{Path: "/finance/invoices", Dashboard: "finance", Page: "invoices", Title: "Invoices", MenuOrder: 41},
		r{Path: "/finance/billing", Dashboard: "finance", Page: "billing", Title: "Billing", MenuOrder: 42},
		r{Path: "/policies", Dashboard: "policies", Title: "Policies", MenuOrder: 50},
		r{Path: "/policies/library", Dashboard: "policies", Page: "library", Title: "Library", MenuOrder: 51, Prefix: true},
		r{Path: "/admin", Dashboard: "admin", Title: "Administration", MenuOrder: 90},
		r{Path: "/admin/roles", Dashboard: "admin", Page: "roles", Title: "Roles", MenuOrder: 91},
		r{Path: "/admin/users", Dashboard: "admin", Page: "users", Title: "Users", MenuOrder: 92},
	}
}

// Run seeds roles and routes into tables that are still empty.
func Run(db *gorm.DB) error {
	var count int64

	if err := db.Model(&models.Role{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count roles: %w", err)
	}

	if count == 0 {
		roles := Roles()
		if err := db.Create(&roles).Error; err != nil {
			return fmt.Errorf("seed roles: %w", err)
		}
	}

	if err := db.Model(&models.DashboardRoute{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count routes: %w", err)
	}

	if count == 0 {
		routes := Routes()
		if err := db.Create(&routes).Error; err != nil {
			return fmt.Errorf("seed routes: %w", err)
		}
	}

	return nil
}

// GrantDefaults gives the default grant roles read, write and delete on a policy.
func GrantDefaults(db *gorm.DB, policyID uint64) error {
	yes := true
	update := access.GrantUpdate{CanRead: &yes, CanWrite: &yes, CanDelete: &yes}

	for _, role := range DefaultGrantRoles {
		if _, err := policycontroller.SaveGrant(db, policyID, policycontroller.RolePrincipal(role), update); err != nil {
			return fmt.Errorf("grant %s on policy %d: %w", role, policyID, err)
		}
	}

	return nil
}

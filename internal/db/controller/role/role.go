// Package role provides CRUD operations for roles and builds the role catalog.
package role

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/portal-access/portal-access/internal/access"
	"github.com/portal-access/portal-access/internal/db/models"
)

const (
	nameQueryPattern = "name = ?"
)

var (
	// ErrRoleNotFound is returned when a role is not found.
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleNameEmpty is returned when attempting to create/update a role with an empty name.
	ErrRoleNameEmpty = errors.New("role name cannot be empty")
	// ErrRoleAlreadyExists is returned when attempting to create a role that already exists.
	ErrRoleAlreadyExists = errors.New("role already exists")
	// ErrSystemRole is returned when attempting to delete a system role.
	ErrSystemRole = errors.New("system roles cannot be deleted")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a role by its name.
func Get(db *gorm.DB, name string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrRoleNameEmpty
	}

	var role models.Role

	result := db.Where(nameQueryPattern, name).First(&role)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}

		return nil, result.Error
	}

	return &role, nil
}

// GetAll retrieves all roles ordered by name.
func GetAll(db *gorm.DB) ([]models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var roles []models.Role

	result := db.Order("name ASC").Find(&roles)
	if result.Error != nil {
		return nil, result.Error
	}

	return roles, nil
}

// Catalog loads every role into an engine catalog.
func Catalog(db *gorm.DB) (access.StaticCatalog, error) {
	roles, err := GetAll(db)
	if err != nil {
		return nil, err
	}

	catalog := make(access.StaticCatalog, len(roles))
	for i := range roles {
		catalog[roles[i].Name] = roles[i].ToAccess()
	}

	return catalog, nil
}

// Create creates a new role in the database.
func Create(db *gorm.DB, role *models.Role) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	role.Name = strings.TrimSpace(role.Name)
	if role.Name == "" {
		return nil, ErrRoleNameEmpty
	}

	var existing models.Role

	result := db.Where(nameQueryPattern, role.Name).First(&existing)
	if result.Error == nil {
		return nil, ErrRoleAlreadyExists
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	if err := db.Create(role).Error; err != nil {
		return nil, err
	}

	return role, nil
}

// Update replaces the permission template of an existing role, keeping its id and system flag.
func Update(db *gorm.DB, name string, changes *models.Role) (*models.Role, error) {
	role, err := Get(db, name)
	if err != nil {
		return nil, err
	}

	role.Description = changes.Description
	role.FullAccess = changes.FullAccess
	role.DefaultDashboards = changes.DefaultDashboards
	role.DashboardPermissions = changes.DashboardPermissions
	role.PagePermissions = changes.PagePermissions
	role.Features = changes.Features
	role.CRUD = changes.CRUD

	if err := db.Save(role).Error; err != nil {
		return nil, err
	}

	return role, nil
}

// Delete deletes a role by name. Users still referencing it lose its access on their next check.
func Delete(db *gorm.DB, name string) error {
	role, err := Get(db, name)
	if err != nil {
		return err
	}

	if role.IsSystem {
		return ErrSystemRole
	}

	result := db.Delete(&models.Role{}, role.ID)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrRoleNotFound
	}

	return nil
}

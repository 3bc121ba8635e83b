// Package user provides access to the permission-relevant fields of user accounts.
package user

import (
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/portal-access/portal-access/internal/access"
	"github.com/portal-access/portal-access/internal/db/models"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrPrimaryRoleEmpty is returned when assigning an empty primary role.
	ErrPrimaryRoleEmpty = errors.New("primary role cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves an active, not deleted user by id.
func Get(db *gorm.DB, id uint64) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var u models.User

	result := db.Where("active = ? AND deleted_at IS NULL", true).First(&u, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, result.Error
	}

	return &u, nil
}

// SetRoles replaces the primary and additional roles of a user.
// Additional role names are kept in the given order; blank names are dropped.
func SetRoles(db *gorm.DB, id uint64, primary string, additional []string) (*models.User, error) {
	primary = strings.TrimSpace(primary)
	if primary == "" {
		return nil, ErrPrimaryRoleEmpty
	}

	u, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(additional))

	for _, name := range additional {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}

	u.PrimaryRole = primary
	u.AdditionalRoles = names

	if err := db.Save(u).Error; err != nil {
		return nil, err
	}

	return u, nil
}

// SetOverrides replaces the override document of a user.
func SetOverrides(db *gorm.DB, id uint64, overrides access.Overrides) (*models.User, error) {
	u, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(overrides)
	if err != nil {
		return nil, err
	}

	u.ExtraPermissions = string(raw)

	if err := db.Save(u).Error; err != nil {
		return nil, err
	}

	return u, nil
}

// SetDepartment changes the department of a user.
func SetDepartment(db *gorm.DB, id uint64, department string) (*models.User, error) {
	u, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	u.DepartmentID = strings.TrimSpace(department)

	if err := db.Save(u).Error; err != nil {
		return nil, err
	}

	return u, nil
}

package models

import (
	"strconv"
	"time"

	"github.com/portal-access/portal-access/internal/access"
)

// User represents a user account in the system.
// Credentials live with the external identity provider; this row only carries what
// permission resolution needs.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Active indicates whether the user account is active.
	Active bool
	// Username is the unique username.
	Username string `gorm:"unique;size:100;not null"`
	// Email is the user's email address.
	Email string `gorm:"size:255"`
	// FirstName is the user's first or given name.
	FirstName string `gorm:"size:100"`
	// LastName is the user's last or family name.
	LastName string `gorm:"size:100"`
	// PrimaryRole is the name of the user's primary role.
	// It is not a foreign key: a name that no longer resolves leaves the user without role-derived access.
	PrimaryRole string `gorm:"column:primary_role;size:100;not null;index"`
	// AdditionalRoles lists further role names in assignment order.
	AdditionalRoles []string `gorm:"serializer:json;type:text"`
	// ExtraPermissions is the JSON document of per-user overrides.
	// It is decoded leniently, so a malformed document means no overrides.
	ExtraPermissions string `gorm:"type:text"`
	// DepartmentID selects the department override tier.
	DepartmentID string `gorm:"size:100;index"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
	// DeletedAt is the soft delete timestamp (nil if not deleted, managed by GORM).
	DeletedAt *time.Time
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// AccessID is the user id as the engine sees it.
func (u *User) AccessID() string {
	return strconv.FormatUint(u.ID, 10)
}

// Overrides decodes ExtraPermissions.
func (u *User) Overrides() access.Overrides {
	return access.ParseOverrides([]byte(u.ExtraPermissions))
}

// ToAccess converts the row into the engine's user type.
func (u *User) ToAccess() access.User {
	return access.User{
		ID:                u.AccessID(),
		PrimaryRoleID:     u.PrimaryRole,
		AdditionalRoleIDs: u.AdditionalRoles,
		ExtraPermissions:  u.Overrides(),
		DepartmentID:      u.DepartmentID,
	}
}

package models

import (
	"strconv"
	"time"

	"github.com/portal-access/portal-access/internal/access"
)

// PolicyPermission is one grant row of a policy.
// Exactly one of UserID and Role is set. A policy holds at most one row per user and one per role.
type PolicyPermission struct {
	// ID is the unique identifier for the grant.
	ID uint64 `gorm:"primaryKey"`
	// PolicyID is the policy the grant belongs to.
	PolicyID uint64 `gorm:"not null;uniqueIndex:idx_policy_user;uniqueIndex:idx_policy_role"`
	// UserID is set for individual grants.
	UserID *uint64 `gorm:"uniqueIndex:idx_policy_user"`
	// Role is set for role grants and holds the role name.
	Role *string `gorm:"size:100;uniqueIndex:idx_policy_role"`
	// CanRead allows reading the policy.
	CanRead bool `gorm:"not null;default:false"`
	// CanWrite allows editing the policy. Requires CanRead.
	CanWrite bool `gorm:"not null;default:false"`
	// CanDelete allows deleting the policy. Requires CanRead.
	CanDelete bool `gorm:"not null;default:false"`
	// CreatedAt is the timestamp when the grant was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the grant was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the PolicyPermission model.
func (PolicyPermission) TableName() string {
	return "policy_permissions"
}

// ToAccess converts the row into the engine's grant type.
func (p *PolicyPermission) ToAccess() access.PolicyPermission {
	grant := access.PolicyPermission{
		PolicyID:  strconv.FormatUint(p.PolicyID, 10),
		CanRead:   p.CanRead,
		CanWrite:  p.CanWrite,
		CanDelete: p.CanDelete,
	}

	if p.UserID != nil {
		id := strconv.FormatUint(*p.UserID, 10)
		grant.UserID = &id
	}

	if p.Role != nil {
		role := *p.Role
		grant.Role = &role
	}

	return grant
}

// IsIndividual reports whether the row grants a specific user.
func (p *PolicyPermission) IsIndividual() bool {
	return p.UserID != nil
}

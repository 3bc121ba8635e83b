package models

import (
	"strconv"
	"time"

	"github.com/portal-access/portal-access/internal/access"
)

// Policy is an organizational policy document governed by its own grants.
type Policy struct {
	// ID is the unique identifier for the policy.
	ID uint64 `gorm:"primaryKey"`
	// Title is the policy headline.
	Title string `gorm:"size:255;not null"`
	// Content is the policy body.
	Content string `gorm:"type:text"`
	// IsActive marks the policy as published.
	IsActive bool `gorm:"default:true"`
	// Version increments on every content change. Grant changes do not touch it.
	Version int `gorm:"not null;default:1"`
	// Permissions are the grant rows of the policy.
	// When a policy is deleted, its grants are removed (CASCADE).
	Permissions []PolicyPermission `gorm:"foreignKey:PolicyID;constraint:OnDelete:CASCADE"`
	// CreatedAt is the timestamp when the policy was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the policy was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Policy model.
func (Policy) TableName() string {
	return "policies"
}

// AccessID is the policy id as the engine sees it.
func (p *Policy) AccessID() string {
	return strconv.FormatUint(p.ID, 10)
}

// ToAccess converts the policy and its loaded grants into the engine's policy type.
func (p *Policy) ToAccess() access.Policy {
	grants := make([]access.PolicyPermission, 0, len(p.Permissions))
	for i := range p.Permissions {
		grants = append(grants, p.Permissions[i].ToAccess())
	}

	return access.Policy{
		ID:          p.AccessID(),
		IsActive:    p.IsActive,
		Version:     p.Version,
		Permissions: grants,
	}
}

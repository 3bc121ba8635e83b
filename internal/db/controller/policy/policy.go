// Package policy provides operations on policy documents and their grant rows.
package policy

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/portal-access/portal-access/internal/access"
	"github.com/portal-access/portal-access/internal/db/models"
)

const (
	policyIDQueryPattern = "policy_id = ?"
)

var (
	// ErrPolicyNotFound is returned when a policy is not found.
	ErrPolicyNotFound = errors.New("policy not found")
	// ErrGrantNotFound is returned when a grant row is not found.
	ErrGrantNotFound = errors.New("grant not found")
	// ErrTitleEmpty is returned when a policy title is empty.
	ErrTitleEmpty = errors.New("policy title cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Principal names the subject of a grant: a user or a role, never both.
type Principal struct {
	UserID *uint64
	Role   *string
}

// UserPrincipal returns the principal of an individual grant.
func UserPrincipal(id uint64) Principal {
	return Principal{UserID: &id}
}

// RolePrincipal returns the principal of a role grant.
func RolePrincipal(name string) Principal {
	return Principal{Role: &name}
}

func (p Principal) valid() bool {
	hasRole := p.Role != nil && strings.TrimSpace(*p.Role) != ""
	return (p.UserID != nil) != hasRole
}

// Get retrieves a policy with its grant rows.
func Get(db *gorm.DB, id uint64) (*models.Policy, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var p models.Policy

	result := db.Preload("Permissions").First(&p, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPolicyNotFound
		}

		return nil, result.Error
	}

	return &p, nil
}

// GetAll retrieves all policies with their grant rows.
func GetAll(db *gorm.DB) ([]models.Policy, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var policies []models.Policy

	if err := db.Preload("Permissions").Order("id ASC").Find(&policies).Error; err != nil {
		return nil, err
	}

	return policies, nil
}

// Create creates an active policy at version 1.
func Create(db *gorm.DB, title, content string) (*models.Policy, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleEmpty
	}

	p := &models.Policy{Title: title, Content: content, IsActive: true, Version: 1}

	if err := db.Create(p).Error; err != nil {
		return nil, err
	}

	return p, nil
}

// UpdateContent changes title and content. The version is incremented in the same
// statement when either differs from the stored value; an unchanged document keeps its version.
func UpdateContent(db *gorm.DB, id uint64, title, content string) (*models.Policy, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleEmpty
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var current models.Policy
		if err := tx.First(&current, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPolicyNotFound
			}

			return err
		}

		if current.Title == title && current.Content == content {
			return nil
		}

		return tx.Model(&models.Policy{}).Where("id = ?", id).Updates(map[string]any{
			"title":   title,
			"content": content,
			"version": gorm.Expr("version + 1"),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return Get(db, id)
}

// SetActive publishes or retires a policy. It is not a content change.
func SetActive(db *gorm.DB, id uint64, active bool) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Model(&models.Policy{}).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrPolicyNotFound
	}

	return nil
}

// Delete deletes a policy and its grants.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(policyIDQueryPattern, id).Delete(&models.PolicyPermission{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Policy{}, id)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrPolicyNotFound
		}

		return nil
	})
}

// ListGrants returns the grant rows of a policy, role grants first.
func ListGrants(db *gorm.DB, policyID uint64) ([]models.PolicyPermission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var grants []models.PolicyPermission

	err := db.Where(policyIDQueryPattern, policyID).
		Order("user_id IS NOT NULL, role ASC, user_id ASC").
		Find(&grants).Error
	if err != nil {
		return nil, err
	}

	return grants, nil
}

// SaveGrant creates or updates the grant of principal on a policy.
//
// The update is merged into the stored row (or an empty row) with the read dependency
// enforced, validated, and written in one transaction, so readers never observe a
// row with write or delete but without read.
func SaveGrant(db *gorm.DB, policyID uint64, principal Principal, update access.GrantUpdate) (*models.PolicyPermission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if !principal.valid() {
		return nil, access.ErrAmbiguousGrant
	}

	var saved models.PolicyPermission

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Policy{}, policyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPolicyNotFound
			}

			return err
		}

		row := models.PolicyPermission{PolicyID: policyID, UserID: principal.UserID, Role: principal.Role}

		query := tx.Where(policyIDQueryPattern, policyID)
		if principal.UserID != nil {
			query = query.Where("user_id = ?", *principal.UserID)
		} else {
			query = query.Where("role = ?", *principal.Role)
		}

		if err := query.First(&row).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		next, err := access.ApplyGrantUpdate(row.ToAccess(), update)
		if err != nil {
			return err
		}

		if err := access.ValidateGrant(next); err != nil {
			return err
		}

		row.CanRead = next.CanRead
		row.CanWrite = next.CanWrite
		row.CanDelete = next.CanDelete

		if err := tx.Save(&row).Error; err != nil {
			return err
		}

		saved = row

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &saved, nil
}

// DeleteGrant removes a grant row of a policy. Removing an individual row returns
// the user to the role grant.
func DeleteGrant(db *gorm.DB, policyID, grantID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where(policyIDQueryPattern, policyID).Delete(&models.PolicyPermission{}, grantID)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrGrantNotFound
	}

	return nil
}

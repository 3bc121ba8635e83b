package access

// Source is the provenance of an EffectivePermission.
type Source string

const (
	// SourceIndividual means a grant row for the user decided.
	SourceIndividual Source = "individual"
	// SourceRole means the grant row for the user's primary role decided.
	SourceRole Source = "role"
	// SourceNone means no grant row applies.
	SourceNone Source = "none"
)

// Policy is an individually governed document together with its grant rows.
type Policy struct {
	ID          string
	IsActive    bool
	Version     int
	Permissions []PolicyPermission
}

// PolicyPermission is one grant row of a policy. Exactly one of UserID and Role is set.
type PolicyPermission struct {
	PolicyID  string  `json:"policy_id"`
	UserID    *string `json:"user_id,omitempty"`
	Role      *string `json:"role,omitempty"`
	CanRead   bool    `json:"can_read"`
	CanWrite  bool    `json:"can_write"`
	CanDelete bool    `json:"can_delete"`
}

// ForUser reports whether the row is an individual grant for userID.
func (p PolicyPermission) ForUser(userID string) bool {
	return userID != "" && p.UserID != nil && *p.UserID == userID
}

// ForRole reports whether the row is a role grant for roleID.
func (p PolicyPermission) ForRole(roleID string) bool {
	return roleID != "" && p.Role != nil && *p.Role == roleID
}

// Ambiguous reports whether the row names both a user and a role, or neither.
func (p PolicyPermission) Ambiguous() bool {
	hasUser := p.UserID != nil && *p.UserID != ""
	hasRole := p.Role != nil && *p.Role != ""

	return hasUser == hasRole
}

// EffectivePermission is the computed document permission of a user. It is never stored.
type EffectivePermission struct {
	CanRead   bool   `json:"can_read"`
	CanWrite  bool   `json:"can_write"`
	CanDelete bool   `json:"can_delete"`
	Source    Source `json:"source"`
}

func effective(p PolicyPermission, source Source) EffectivePermission {
	return EffectivePermission{
		CanRead:   p.CanRead,
		CanWrite:  p.CanWrite,
		CanDelete: p.CanDelete,
		Source:    source,
	}
}

// ResolveResourcePermission computes the permission user holds on policy.
//
// The individual row for the user wins even when all of its flags are false.
// Otherwise the row for the user's primary role applies; additional roles are not
// consulted. Ambiguous rows are ignored. A row whose PolicyID is set and differs from
// policy.ID belongs to another policy and is ignored; a row without PolicyID is taken
// as a row of policy. Stored flags are reported as they are.
func ResolveResourcePermission(policy Policy, user User) EffectivePermission {
	var (
		roleRow PolicyPermission
		hasRole bool
	)

	for _, row := range policy.Permissions {
		if (row.PolicyID != "" && row.PolicyID != policy.ID) || row.Ambiguous() {
			continue
		}

		if row.ForUser(user.ID) {
			return effective(row, SourceIndividual)
		}

		if !hasRole && row.ForRole(user.PrimaryRoleID) {
			roleRow, hasRole = row, true
		}
	}

	if hasRole {
		return effective(roleRow, SourceRole)
	}

	return EffectivePermission{Source: SourceNone}
}

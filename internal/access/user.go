package access

// User is the subject of every resolution call. It is passed explicitly; the
// engine never looks up a current user on its own.
type User struct {
	ID                string    `json:"id"`
	PrimaryRoleID     string    `json:"primary_role_id"`
	AdditionalRoleIDs []string  `json:"additional_role_ids"`
	ExtraPermissions  Overrides `json:"extra_permissions"`
	// DepartmentID selects the department override tier. Empty disables it.
	DepartmentID string `json:"department_id"`
}

// RoleIDs returns the primary role followed by the additional roles.
func (u User) RoleIDs() []string {
	ids := make([]string, 0, 1+len(u.AdditionalRoleIDs))
	ids = append(ids, u.PrimaryRoleID)

	return append(ids, u.AdditionalRoleIDs...)
}

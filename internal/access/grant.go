package access

// GrantUpdate is a change to a grant row. Nil fields keep the stored value.
type GrantUpdate struct {
	CanRead   *bool `json:"can_read"`
	CanWrite  *bool `json:"can_write"`
	CanDelete *bool `json:"can_delete"`
}

// ApplyGrantUpdate returns current with u applied and the read dependency enforced:
//
//   - enabling write or delete enables read;
//   - disabling read disables write and delete in the same change;
//   - disabling read while enabling write or delete fails with ErrGrantDependency.
//
// The returned row always satisfies ValidateGrant's dependency rule.
func ApplyGrantUpdate(current PolicyPermission, u GrantUpdate) (PolicyPermission, error) {
	readCleared := u.CanRead != nil && !*u.CanRead
	if readCleared && (isSet(u.CanWrite) || isSet(u.CanDelete)) {
		return current, ErrGrantDependency
	}

	next := current

	if u.CanRead != nil {
		next.CanRead = *u.CanRead
	}

	if u.CanWrite != nil {
		next.CanWrite = *u.CanWrite
	}

	if u.CanDelete != nil {
		next.CanDelete = *u.CanDelete
	}

	switch {
	case readCleared:
		next.CanWrite = false
		next.CanDelete = false
	case next.CanWrite || next.CanDelete:
		next.CanRead = true
	}

	return next, nil
}

// ValidateGrant checks the structural rules of a row about to be persisted.
func ValidateGrant(p PolicyPermission) error {
	if p.Ambiguous() {
		return ErrAmbiguousGrant
	}

	if (p.CanWrite || p.CanDelete) && !p.CanRead {
		return ErrGrantDependency
	}

	return nil
}

func isSet(b *bool) bool {
	return b != nil && *b
}

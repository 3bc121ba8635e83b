package access

import "errors"

var (
	// ErrAmbiguousGrant is returned for a grant row that names both a user and a role, or neither.
	ErrAmbiguousGrant = errors.New("grant must name exactly one of user or role")

	// ErrGrantDependency is returned for a grant change that enables write or delete
	// while explicitly disabling read.
	ErrGrantDependency = errors.New("write and delete require read")
)

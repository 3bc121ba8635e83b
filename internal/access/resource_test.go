package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/portal-access/portal-access/internal/access"
)

func ptr(s string) *string { return &s }

func TestResolveResourcePermission_Provenance(t *testing.T) {
	user := access.User{ID: "42", PrimaryRoleID: "employee"}
	roleRow := access.PolicyPermission{PolicyID: "p1", Role: ptr("employee"), CanRead: true}

	policy := access.Policy{ID: "p1", IsActive: true, Version: 1, Permissions: []access.PolicyPermission{roleRow}}

	assert.Equal(t,
		access.EffectivePermission{CanRead: true, Source: access.SourceRole},
		access.ResolveResourcePermission(policy, user),
	)

	policy.Permissions = append(policy.Permissions, access.PolicyPermission{
		PolicyID: "p1", UserID: ptr("42"), CanRead: true, CanWrite: true,
	})

	assert.Equal(t,
		access.EffectivePermission{CanRead: true, CanWrite: true, Source: access.SourceIndividual},
		access.ResolveResourcePermission(policy, user),
	)
	assert.Equal(t, roleRow, policy.Permissions[0], "role row must be untouched")
}

func TestResolveResourcePermission(t *testing.T) {
	user := access.User{ID: "42", PrimaryRoleID: "employee", AdditionalRoleIDs: []string{"hr"}}

	testCases := []struct {
		name     string
		user     access.User
		rows     []access.PolicyPermission
		expected access.EffectivePermission
	}{
		{
			name:     "no rows",
			user:     user,
			expected: access.EffectivePermission{Source: access.SourceNone},
		},
		{
			name: "individual denial beats role grant",
			user: user,
			rows: []access.PolicyPermission{
				{PolicyID: "p1", Role: ptr("employee"), CanRead: true, CanWrite: true},
				{PolicyID: "p1", UserID: ptr("42")},
			},
			expected: access.EffectivePermission{Source: access.SourceIndividual},
		},
		{
			name: "additional roles are not consulted",
			user: user,
			rows: []access.PolicyPermission{
				{PolicyID: "p1", Role: ptr("hr"), CanRead: true, CanWrite: true, CanDelete: true},
			},
			expected: access.EffectivePermission{Source: access.SourceNone},
		},
		{
			name: "ambiguous row with both principals is skipped",
			user: user,
			rows: []access.PolicyPermission{
				{PolicyID: "p1", UserID: ptr("42"), Role: ptr("employee"), CanRead: true},
			},
			expected: access.EffectivePermission{Source: access.SourceNone},
		},
		{
			name: "ambiguous row without principal is skipped",
			user: user,
			rows: []access.PolicyPermission{
				{PolicyID: "p1", CanRead: true},
				{PolicyID: "p1", UserID: ptr(""), Role: ptr(""), CanRead: true},
				{PolicyID: "p1", Role: ptr("employee"), CanRead: true},
			},
			expected: access.EffectivePermission{CanRead: true, Source: access.SourceRole},
		},
		{
			name: "rows of another policy are ignored",
			user: user,
			rows: []access.PolicyPermission{
				{PolicyID: "p2", UserID: ptr("42"), CanRead: true},
			},
			expected: access.EffectivePermission{Source: access.SourceNone},
		},
		{
			name: "rows without policy id belong to the policy",
			user: user,
			rows: []access.PolicyPermission{
				{Role: ptr("employee"), CanRead: true},
				{UserID: ptr("42"), CanRead: true, CanWrite: true},
			},
			expected: access.EffectivePermission{CanRead: true, CanWrite: true, Source: access.SourceIndividual},
		},
		{
			name: "full access role has no bypass",
			user: access.User{ID: "1", PrimaryRoleID: "admin"},
			rows: []access.PolicyPermission{
				{PolicyID: "p1", Role: ptr("employee"), CanRead: true},
			},
			expected: access.EffectivePermission{Source: access.SourceNone},
		},
		{
			name: "stored flags are reported raw",
			user: user,
			rows: []access.PolicyPermission{
				{PolicyID: "p1", Role: ptr("employee"), CanWrite: true},
			},
			expected: access.EffectivePermission{CanWrite: true, Source: access.SourceRole},
		},
		{
			name: "user without id matches no individual row",
			user: access.User{PrimaryRoleID: "employee"},
			rows: []access.PolicyPermission{
				{PolicyID: "p1", UserID: ptr("42"), CanRead: true},
			},
			expected: access.EffectivePermission{Source: access.SourceNone},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			policy := access.Policy{ID: "p1", IsActive: true, Version: 3, Permissions: tc.rows}

			first := access.ResolveResourcePermission(policy, tc.user)
			assert.Equal(t, tc.expected, first)
			assert.Equal(t, first, access.ResolveResourcePermission(policy, tc.user))
		})
	}
}

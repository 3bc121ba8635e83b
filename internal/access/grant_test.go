package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portal-access/portal-access/internal/access"
)

func boolPtr(b bool) *bool { return &b }

func TestApplyGrantUpdate(t *testing.T) {
	full := access.PolicyPermission{PolicyID: "p1", Role: ptr("hr"), CanRead: true, CanWrite: true, CanDelete: true}
	none := access.PolicyPermission{PolicyID: "p1", Role: ptr("hr")}

	testCases := []struct {
		name          string
		current       access.PolicyPermission
		update        access.GrantUpdate
		expected      access.PolicyPermission
		expectedError error
	}{
		{
			name:     "clearing read cascades",
			current:  full,
			update:   access.GrantUpdate{CanRead: boolPtr(false)},
			expected: none,
		},
		{
			name:     "write forces read",
			current:  none,
			update:   access.GrantUpdate{CanWrite: boolPtr(true)},
			expected: access.PolicyPermission{PolicyID: "p1", Role: ptr("hr"), CanRead: true, CanWrite: true},
		},
		{
			name:     "delete forces read",
			current:  none,
			update:   access.GrantUpdate{CanDelete: boolPtr(true)},
			expected: access.PolicyPermission{PolicyID: "p1", Role: ptr("hr"), CanRead: true, CanDelete: true},
		},
		{
			name:          "read false with write true is rejected",
			current:       none,
			update:        access.GrantUpdate{CanRead: boolPtr(false), CanWrite: boolPtr(true)},
			expected:      none,
			expectedError: access.ErrGrantDependency,
		},
		{
			name:          "read false with delete true is rejected",
			current:       full,
			update:        access.GrantUpdate{CanRead: boolPtr(false), CanDelete: boolPtr(true)},
			expected:      full,
			expectedError: access.ErrGrantDependency,
		},
		{
			name:     "read false with write false is fine",
			current:  full,
			update:   access.GrantUpdate{CanRead: boolPtr(false), CanWrite: boolPtr(false)},
			expected: none,
		},
		{
			name:     "dropping write keeps read and delete",
			current:  full,
			update:   access.GrantUpdate{CanWrite: boolPtr(false)},
			expected: access.PolicyPermission{PolicyID: "p1", Role: ptr("hr"), CanRead: true, CanDelete: true},
		},
		{
			name:     "empty update keeps row",
			current:  full,
			update:   access.GrantUpdate{},
			expected: full,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := access.ApplyGrantUpdate(tc.current, tc.update)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
			} else {
				require.NoError(t, err)
				require.NoError(t, access.ValidateGrant(next))
			}

			assert.Equal(t, tc.expected, next)
		})
	}
}

func TestValidateGrant(t *testing.T) {
	testCases := []struct {
		name          string
		row           access.PolicyPermission
		expectedError error
	}{
		{"role row", access.PolicyPermission{Role: ptr("hr"), CanRead: true}, nil},
		{"user row", access.PolicyPermission{UserID: ptr("7")}, nil},
		{"both principals", access.PolicyPermission{UserID: ptr("7"), Role: ptr("hr")}, access.ErrAmbiguousGrant},
		{"no principal", access.PolicyPermission{CanRead: true}, access.ErrAmbiguousGrant},
		{"write without read", access.PolicyPermission{Role: ptr("hr"), CanWrite: true}, access.ErrGrantDependency},
		{"delete without read", access.PolicyPermission{UserID: ptr("7"), CanDelete: true}, access.ErrGrantDependency},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := access.ValidateGrant(tc.row)
			if tc.expectedError == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tc.expectedError)
		})
	}
}

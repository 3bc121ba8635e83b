package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOverrides(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected Overrides
	}{
		{name: "empty", raw: "", expected: Overrides{}},
		{name: "null", raw: "null", expected: Overrides{}},
		{name: "not an object", raw: `["finance"]`, expected: Overrides{}},
		{name: "garbage", raw: `{dashboards:`, expected: Overrides{}},
		{
			name: "explicit false is kept",
			raw:  `{"dashboards":{"finance":false,"ats":true}}`,
			expected: Overrides{
				Dashboards: map[string]bool{"finance": false, "ats": true},
			},
		},
		{
			name: "wrong shapes are dropped per entry",
			raw: `{"dashboards":{"finance":"yes","ats":false,"lms":null},"pages":5,` +
				`"features":{"reports":{"export_report":true,"print":1},"billing":true},"unknown":{"x":true}}`,
			expected: Overrides{
				Dashboards: map[string]bool{"ats": false},
				Features:   map[string]map[string]bool{"reports": {"export_report": true}},
			},
		},
		{
			name: "all fields",
			raw: `{"dashboards":{"a":true},"pages":{"a":{"p":false}},"department_dashboards":{"b":true},` +
				`"department_pages":{"b":{"q":true}},"features":{"f":{"x":true}},"crud":{"r":{"create":false}},` +
				`"department_crud":{"r":{"read":true}}}`,
			expected: Overrides{
				Dashboards:           map[string]bool{"a": true},
				Pages:                map[string]map[string]bool{"a": {"p": false}},
				DepartmentDashboards: map[string]bool{"b": true},
				DepartmentPages:      map[string]map[string]bool{"b": {"q": true}},
				Features:             map[string]map[string]bool{"f": {"x": true}},
				CRUD:                 map[string]map[string]bool{"r": {"create": false}},
				DepartmentCRUD:       map[string]map[string]bool{"r": {"read": true}},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseOverrides([]byte(tc.raw))
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestOverrides_ZeroValueLookups(t *testing.T) {
	var o Overrides

	assert.True(t, o.IsEmpty())

	for _, q := range []Query{
		{Dashboard: "a"},
		{Dashboard: "a", Page: "p"},
		{Feature: "f", Action: "x"},
		{CRUDResource: "r", Action: CRUDRead},
	} {
		_, ok := o.primary(q.Kind(), q)
		assert.False(t, ok)

		_, ok = o.department(q.Kind(), q)
		assert.False(t, ok)
	}
}

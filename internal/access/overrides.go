package access

import "encoding/json"

// Overrides are per-user decisions that take precedence over role defaults.
//
// A present key is an explicit allow (true) or deny (false). An absent key defers
// to the next tier. The zero value holds no overrides and every lookup on it is safe.
type Overrides struct {
	Dashboards           map[string]bool            `json:"dashboards,omitempty"`
	Pages                map[string]map[string]bool `json:"pages,omitempty"`
	DepartmentDashboards map[string]bool            `json:"department_dashboards,omitempty"`
	DepartmentPages      map[string]map[string]bool `json:"department_pages,omitempty"`
	Features             map[string]map[string]bool `json:"features,omitempty"`
	CRUD                 map[string]map[string]bool `json:"crud,omitempty"`
	DepartmentCRUD       map[string]map[string]bool `json:"department_crud,omitempty"`
}

// IsEmpty reports whether o holds no decision at all.
func (o Overrides) IsEmpty() bool {
	return len(o.Dashboards) == 0 && len(o.Pages) == 0 &&
		len(o.DepartmentDashboards) == 0 && len(o.DepartmentPages) == 0 &&
		len(o.Features) == 0 && len(o.CRUD) == 0 && len(o.DepartmentCRUD) == 0
}

// primary returns the individual override for q.
func (o Overrides) primary(kind QueryKind, q Query) (bool, bool) {
	switch kind {
	case KindDashboard:
		return flag(o.Dashboards, q.Dashboard)
	case KindPage:
		return nestedFlag(o.Pages, q.Dashboard, q.Page)
	case KindFeature:
		return nestedFlag(o.Features, q.Feature, q.Action)
	case KindCRUD:
		return nestedFlag(o.CRUD, q.CRUDResource, q.Action)
	}

	return false, false
}

// department returns the department override for q. Features have no department tier.
func (o Overrides) department(kind QueryKind, q Query) (bool, bool) {
	switch kind {
	case KindDashboard:
		return flag(o.DepartmentDashboards, q.Dashboard)
	case KindPage:
		return nestedFlag(o.DepartmentPages, q.Dashboard, q.Page)
	case KindCRUD:
		return nestedFlag(o.DepartmentCRUD, q.CRUDResource, q.Action)
	case KindFeature:
	}

	return false, false
}

func flag(m map[string]bool, key string) (bool, bool) {
	v, ok := m[key]
	return v, ok
}

func nestedFlag(m map[string]map[string]bool, outer, inner string) (bool, bool) {
	v, ok := m[outer][inner]
	return v, ok
}

// ParseOverrides decodes a stored overrides document.
//
// Decoding never fails: input that is not a JSON object yields empty overrides,
// a field with the wrong shape is dropped, and inside a field every entry that is
// not a boolean is dropped. Entries that do decode keep their explicit value.
func ParseOverrides(raw []byte) Overrides {
	var fields map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &fields) != nil {
		return Overrides{}
	}

	return Overrides{
		Dashboards:           decodeFlags(fields["dashboards"]),
		Pages:                decodeNestedFlags(fields["pages"]),
		DepartmentDashboards: decodeFlags(fields["department_dashboards"]),
		DepartmentPages:      decodeNestedFlags(fields["department_pages"]),
		Features:             decodeNestedFlags(fields["features"]),
		CRUD:                 decodeNestedFlags(fields["crud"]),
		DepartmentCRUD:       decodeNestedFlags(fields["department_crud"]),
	}
}

func decodeFlags(raw json.RawMessage) map[string]bool {
	var entries map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &entries) != nil || len(entries) == 0 {
		return nil
	}

	out := make(map[string]bool, len(entries))

	for key, value := range entries {
		var b bool
		if json.Unmarshal(value, &b) == nil && string(value) != "null" {
			out[key] = b
		}
	}

	if len(out) == 0 {
		return nil
	}

	return out
}

func decodeNestedFlags(raw json.RawMessage) map[string]map[string]bool {
	var entries map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &entries) != nil || len(entries) == 0 {
		return nil
	}

	out := make(map[string]map[string]bool, len(entries))

	for key, value := range entries {
		if flags := decodeFlags(value); flags != nil {
			out[key] = flags
		}
	}

	if len(out) == 0 {
		return nil
	}

	return out
}

package access

import "sort"

// AggregatedView is the role-derived permission view of a user: the OR of every
// role the user holds.
type AggregatedView struct {
	// FullAccess is set when any held role is flagged full access.
	FullAccess           bool                       `json:"full_access"`
	Dashboards           map[string]struct{}        `json:"-"`
	DashboardPermissions map[string]Quad            `json:"dashboard_permissions"`
	PagePermissions      map[string]map[string]Quad `json:"page_permissions"`
	Features             map[string]map[string]bool `json:"features"`
	CRUD                 map[string]map[string]bool `json:"crud"`
	// Unknown lists role ids that did not resolve, sorted and without duplicates.
	Unknown []string `json:"unknown_roles,omitempty"`
}

// Aggregate merges the primary role and the additional roles. Nil roles are
// skipped. The result does not depend on the order of additional.
func Aggregate(primary *Role, additional []*Role) AggregatedView {
	view := newAggregatedView()
	view.merge(primary)

	for _, r := range additional {
		view.merge(r)
	}

	return view
}

func newAggregatedView() AggregatedView {
	return AggregatedView{
		Dashboards:           make(map[string]struct{}),
		DashboardPermissions: make(map[string]Quad),
		PagePermissions:      make(map[string]map[string]Quad),
		Features:             make(map[string]map[string]bool),
		CRUD:                 make(map[string]map[string]bool),
	}
}

func (v *AggregatedView) merge(r *Role) {
	if r == nil {
		return
	}

	v.FullAccess = v.FullAccess || r.FullAccess

	for _, d := range r.DefaultDashboards {
		v.Dashboards[d] = struct{}{}
	}

	for d, q := range r.DashboardPermissions {
		v.DashboardPermissions[d] = v.DashboardPermissions[d].Or(q)
	}

	for d, pages := range r.PagePermissions {
		if v.PagePermissions[d] == nil {
			v.PagePermissions[d] = make(map[string]Quad, len(pages))
		}

		for p, q := range pages {
			v.PagePermissions[d][p] = v.PagePermissions[d][p].Or(q)
		}
	}

	orFlags(v.Features, r.Features)
	orFlags(v.CRUD, r.CRUD)
}

func orFlags(dst, src map[string]map[string]bool) {
	for outer, flags := range src {
		if dst[outer] == nil {
			dst[outer] = make(map[string]bool, len(flags))
		}

		for inner, allowed := range flags {
			dst[outer][inner] = dst[outer][inner] || allowed
		}
	}
}

// DashboardList returns the accessible dashboard set in sorted order.
func (v AggregatedView) DashboardList() []string {
	out := make([]string, 0, len(v.Dashboards))
	for d := range v.Dashboards {
		out = append(out, d)
	}

	sort.Strings(out)

	return out
}

// lookup returns the role-derived value for q, and whether any held role mentions the key.
func (v AggregatedView) lookup(kind QueryKind, q Query) (bool, bool) {
	switch kind {
	case KindDashboard:
		quad, hasQuad := v.DashboardPermissions[q.Dashboard]
		_, listed := v.Dashboards[q.Dashboard]

		if !hasQuad && !listed {
			return false, false
		}

		if listed && opensDashboard(q.Capability) {
			return true, true
		}

		return quad.Allows(q.Capability), true
	case KindPage:
		quad, ok := v.PagePermissions[q.Dashboard][q.Page]
		if !ok {
			return false, false
		}

		return quad.Allows(q.Capability), true
	case KindFeature:
		return nestedFlag(v.Features, q.Feature, q.Action)
	case KindCRUD:
		return nestedFlag(v.CRUD, q.CRUDResource, q.Action)
	}

	return false, false
}

// opensDashboard reports whether membership in the default dashboard set grants c.
func opensDashboard(c Capability) bool {
	return c == CapabilityOpen || c == CapabilityView || c == CapabilityRead
}

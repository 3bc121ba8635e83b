package access

import "sort"

// Tier names the precedence level that produced a decision.
type Tier string

const (
	// TierFullAccess is the full-access role bypass.
	TierFullAccess Tier = "full_access"
	// TierOverride is an individual override.
	TierOverride Tier = "override"
	// TierDepartment is a department override.
	TierDepartment Tier = "department_override"
	// TierRole is the aggregated role view.
	TierRole Tier = "role"
	// TierDefault is the fallback deny.
	TierDefault Tier = "default"
)

// Decision is the outcome of a navigation query together with its provenance.
type Decision struct {
	Allowed bool      `json:"allowed"`
	Tier    Tier      `json:"tier"`
	Kind    QueryKind `json:"kind"`
}

// Resolver answers navigation queries against a role catalog.
type Resolver struct {
	catalog Catalog
}

// NewResolver returns a Resolver reading roles from catalog. A nil catalog knows no roles.
func NewResolver(catalog Catalog) *Resolver {
	if catalog == nil {
		catalog = StaticCatalog(nil)
	}

	return &Resolver{catalog: catalog}
}

// Aggregate builds the role-derived view of user.
//
// Additional role ids that do not resolve are skipped. A primary role id that does
// not resolve leaves the user without any role-derived access. In both cases the id
// is reported in AggregatedView.Unknown.
func (r *Resolver) Aggregate(user User) AggregatedView {
	var unknown []string

	primary, ok := r.catalog.Role(user.PrimaryRoleID)
	if !ok && user.PrimaryRoleID != "" {
		unknown = append(unknown, user.PrimaryRoleID)
	}

	additional := make([]*Role, 0, len(user.AdditionalRoleIDs))

	for _, id := range user.AdditionalRoleIDs {
		role, found := r.catalog.Role(id)
		if !found {
			if id != "" {
				unknown = append(unknown, id)
			}

			continue
		}

		additional = append(additional, role)
	}

	var view AggregatedView
	if primary == nil {
		view = newAggregatedView()
	} else {
		view = Aggregate(primary, additional)
	}

	view.Unknown = uniqueSorted(unknown)

	return view
}

// Resolve reports whether user may access what q names.
func (r *Resolver) Resolve(user User, q Query) bool {
	return Explain(user, r.Aggregate(user), q).Allowed
}

// Explain evaluates q for user against an already aggregated view and reports the
// tier that decided it. Callers that answer many queries for one user aggregate once
// and call Explain repeatedly.
func Explain(user User, view AggregatedView, q Query) Decision {
	kind := q.Kind()
	deny := Decision{Allowed: false, Tier: TierDefault, Kind: kind}

	if q.Dashboard == "" && (kind == KindDashboard || kind == KindPage) {
		return deny
	}

	if !q.Capability.Valid() {
		return deny
	}

	if view.FullAccess && kind != KindFeature {
		return Decision{Allowed: true, Tier: TierFullAccess, Kind: kind}
	}

	overrides := user.ExtraPermissions

	if allowed, ok := overrides.primary(kind, q); ok {
		return Decision{Allowed: allowed, Tier: TierOverride, Kind: kind}
	}

	if q.Department != "" && q.Department == user.DepartmentID {
		if allowed, ok := overrides.department(kind, q); ok {
			return Decision{Allowed: allowed, Tier: TierDepartment, Kind: kind}
		}
	}

	if allowed, ok := view.lookup(kind, q); ok {
		return Decision{Allowed: allowed, Tier: TierRole, Kind: kind}
	}

	return deny
}

func uniqueSorted(in []string) []string {
	if len(in) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))

	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}

		seen[s] = struct{}{}
		out = append(out, s)
	}

	sort.Strings(out)

	return out
}

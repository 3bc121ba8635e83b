package access

// Role is the permission template shared by every user holding it.
type Role struct {
	// ID is the stable role key, e.g. "hr".
	ID string `json:"id"`
	// FullAccess grants every dashboard, page and CRUD query. It never applies to
	// feature queries or document grants.
	FullAccess bool `json:"full_access"`
	// DefaultDashboards can be opened by holders of the role.
	DefaultDashboards []string `json:"default_dashboards"`
	// DashboardPermissions holds the quad per dashboard.
	DashboardPermissions map[string]Quad `json:"dashboard_permissions"`
	// PagePermissions holds the quad per page, grouped by dashboard.
	PagePermissions map[string]map[string]Quad `json:"page_permissions"`
	// Features holds role defaults per feature and action.
	Features map[string]map[string]bool `json:"features"`
	// CRUD holds role defaults per resource and CRUD verb.
	CRUD map[string]map[string]bool `json:"crud"`
}

// Catalog resolves role ids to roles.
type Catalog interface {
	Role(id string) (*Role, bool)
}

// StaticCatalog is a Catalog backed by a map keyed by role id.
type StaticCatalog map[string]*Role

// NewStaticCatalog indexes roles by their id. Later roles replace earlier ones with the same id.
func NewStaticCatalog(roles ...*Role) StaticCatalog {
	c := make(StaticCatalog, len(roles))
	for _, r := range roles {
		if r != nil && r.ID != "" {
			c[r.ID] = r
		}
	}

	return c
}

// Role implements Catalog.
func (c StaticCatalog) Role(id string) (*Role, bool) {
	r, ok := c[id]
	if !ok || r == nil {
		return nil, false
	}

	return r, true
}

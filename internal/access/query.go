package access

// QueryKind classifies a Query by the most specific key it carries.
type QueryKind string

const (
	// KindDashboard asks about a dashboard.
	KindDashboard QueryKind = "dashboard"
	// KindPage asks about a page of a dashboard.
	KindPage QueryKind = "page"
	// KindFeature asks about an action of a feature.
	KindFeature QueryKind = "feature"
	// KindCRUD asks about a CRUD verb on a resource.
	KindCRUD QueryKind = "crud"
)

// Query is a single navigation question.
type Query struct {
	Dashboard string `json:"dashboard_id"`
	Page      string `json:"page_id,omitempty"`
	Feature   string `json:"feature_key,omitempty"`
	// Action is the feature action, or the CRUD verb when CRUDResource is set.
	Action       string `json:"action_key,omitempty"`
	CRUDResource string `json:"crud_resource,omitempty"`
	// Department tags the queried resource with a department. The department
	// override tier applies only when it equals the user's department.
	Department string `json:"department,omitempty"`
	// Capability selects a quad flag for dashboard and page queries.
	Capability Capability `json:"capability,omitempty"`
}

// Kind returns the query kind. CRUD takes precedence over feature, feature over
// page, page over dashboard.
func (q Query) Kind() QueryKind {
	switch {
	case q.CRUDResource != "":
		return KindCRUD
	case q.Feature != "":
		return KindFeature
	case q.Page != "":
		return KindPage
	default:
		return KindDashboard
	}
}

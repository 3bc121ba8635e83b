package auth

// Dashboards guarding the service's own endpoints.
const (
	// DashboardAdmin guards role and user override administration.
	DashboardAdmin = "admin"
	// DashboardPolicies holds the policy documents.
	DashboardPolicies = "policies"
)

// Features guarding the service's own endpoints.
const (
	// FeaturePolicies is the feature group of policy documents.
	FeaturePolicies = "policies"
	// ActionManagePermissions allows editing policy grants (can_manage_permissions).
	ActionManagePermissions = "manage_permissions"
)

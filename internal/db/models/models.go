// Package models contains database model definitions.
package models

// All returns every model of the schema, in migration order.
func All() []any {
	return []any{
		&Role{},
		&User{},
		&DashboardRoute{},
		&Policy{},
		&PolicyPermission{},
	}
}

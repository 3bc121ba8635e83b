package models

// DashboardRoute maps a request path to the dashboard and page it opens.
// The table is the route catalog navigation checks run against.
type DashboardRoute struct {
	// ID is the unique identifier for the route.
	ID uint `gorm:"primaryKey"`
	// Path is the normalized request path (e.g., "/finance/invoices").
	Path string `gorm:"unique;size:255;not null"`
	// Dashboard is the dashboard key the path belongs to.
	Dashboard string `gorm:"size:100;not null;index"`
	// Page is the page key, empty for the dashboard landing route.
	Page string `gorm:"size:100"`
	// Title is the menu label.
	Title string `gorm:"size:255"`
	// Prefix makes the route answer for every path below it.
	Prefix bool `gorm:"default:false"`
	// MenuOrder sorts menu entries.
	MenuOrder int `gorm:"default:0"`
}

// TableName specifies the database table name for the DashboardRoute model.
func (DashboardRoute) TableName() string {
	return "dashboard_routes"
}

// Package navigation builds the dashboard switcher and breadcrumbs from the routes a user may open.
package navigation

import (
	"strings"

	"github.com/portal-access/portal-access/internal/access"
	"github.com/portal-access/portal-access/internal/db/models"
)

// Item is a single menu link.
type Item struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Page   string `json:"page,omitempty"`
	Active bool   `json:"active"`
}

// Section is one dashboard of the menu with its pages.
type Section struct {
	Dashboard string `json:"dashboard"`
	Title     string `json:"title"`
	URL       string `json:"url,omitempty"`
	Active    bool   `json:"active"`
	Items     []Item `json:"items"`
}

// BreadcrumbItem represents a single breadcrumb link.
type BreadcrumbItem struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

// Menu is the navigation state for one request path.
type Menu struct {
	Sections    []Section        `json:"sections"`
	Breadcrumbs []BreadcrumbItem `json:"breadcrumbs"`
}

// Build groups routes by dashboard in the order they are given and marks the
// entries matching currentPath. Routes must already be filtered to those the user may open.
// A page whose dashboard has no landing route still gets a section, without URL.
func Build(routes []models.DashboardRoute, currentPath string) Menu {
	current := ""
	if currentPath != "" {
		current = access.NormalizePath(currentPath)
	}

	menu := Menu{Sections: make([]Section, 0), Breadcrumbs: make([]BreadcrumbItem, 0)}
	index := make(map[string]int)

	section := func(dashboard string) *Section {
		i, ok := index[dashboard]
		if !ok {
			i = len(menu.Sections)
			index[dashboard] = i
			menu.Sections = append(menu.Sections, Section{Dashboard: dashboard, Title: dashboard, Items: make([]Item, 0)})
		}

		return &menu.Sections[i]
	}

	for _, r := range routes {
		s := section(r.Dashboard)
		path := access.NormalizePath(r.Path)
		active := current != "" && isWithin(current, path)

		if r.Page == "" {
			s.URL = path
			s.Title = titleOr(r.Title, r.Dashboard)
			s.Active = s.Active || active

			continue
		}

		s.Items = append(s.Items, Item{
			Title:  titleOr(r.Title, r.Page),
			URL:    path,
			Page:   r.Page,
			Active: active,
		})
		s.Active = s.Active || active
	}

	menu.Breadcrumbs = breadcrumbs(menu.Sections)

	return menu
}

func breadcrumbs(sections []Section) []BreadcrumbItem {
	out := make([]BreadcrumbItem, 0, 2) //nolint:mnd

	for _, s := range sections {
		if !s.Active {
			continue
		}

		var page *Item

		for i := range s.Items {
			if s.Items[i].Active {
				page = &s.Items[i]
			}
		}

		out = append(out, BreadcrumbItem{Title: s.Title, URL: s.URL, Active: page == nil})

		if page != nil {
			out = append(out, BreadcrumbItem{Title: page.Title, URL: page.URL, Active: true})
		}

		break
	}

	return out
}

// isWithin reports whether path is base or below it.
func isWithin(path, base string) bool {
	if base == "/" {
		return path == "/"
	}

	return path == base || strings.HasPrefix(path, base+"/")
}

func titleOr(title, fallback string) string {
	if title != "" {
		return title
	}

	return fallback
}

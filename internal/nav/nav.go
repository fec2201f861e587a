package nav

import (
	"finitefield.org/travel-web/internal/catalog"
)

// Filter is one control of the category filter bar.
type Filter struct {
	Key      string // "all" or a category tag
	LabelKey string // i18n key, e.g. "filter.temples"
	Href     string // bookmarkable page URL
	Fragment string // htmx results fragment URL
}

// RenderedFilter is a view model for templates.
type RenderedFilter struct {
	Key      string
	LabelKey string
	Href     string
	Fragment string
	Active   bool
}

// Filters is the filter bar definition, in display order.
var Filters = []Filter{
	{Key: "all", LabelKey: "filter.all", Href: "/", Fragment: "/recommendations"},
	{Key: string(catalog.Countries), LabelKey: "filter.countries", Href: "/?category=countries", Fragment: "/recommendations/countries"},
	{Key: string(catalog.Temples), LabelKey: "filter.temples", Href: "/?category=temples", Fragment: "/recommendations/temples"},
	{Key: string(catalog.Beaches), LabelKey: "filter.beaches", Href: "/?category=beaches", Fragment: "/recommendations/beaches"},
}

// Build renders the filter bar for v. At most one control is active: "all" for the
// union and search views, the matching category otherwise.
func Build(v catalog.View) []RenderedFilter {
	active := activeKey(v)
	items := make([]RenderedFilter, 0, len(Filters))
	for _, f := range Filters {
		items = append(items, RenderedFilter{
			Key:      f.Key,
			LabelKey: f.LabelKey,
			Href:     f.Href,
			Fragment: f.Fragment,
			Active:   f.Key == active,
		})
	}
	return items
}

func activeKey(v catalog.View) string {
	switch v.Kind {
	case catalog.ViewCategory:
		return string(v.Category)
	default:
		return "all"
	}
}

// Item is a top-level navigation link.
type Item struct {
	Path     string
	LabelKey string
}

// RenderedItem is a navigation link with its active state.
type RenderedItem struct {
	Href     string
	LabelKey string
	Active   bool
}

// Main is the primary navigation definition.
var Main = []Item{
	{Path: "/", LabelKey: "nav.home"},
	{Path: "/wishlist", LabelKey: "nav.wishlist"},
}

// BuildMain renders navigation items with active state for currentPath.
func BuildMain(currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{Href: it.Path, LabelKey: it.LabelKey, Active: it.Path == currentPath})
	}
	return items
}

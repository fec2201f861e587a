package catalog

import (
	"strings"

	"golang.org/x/text/cases"
)

// Union concatenates countries, temples and beaches in that order.
func Union(c Catalog) []Destination {
	out := make([]Destination, 0, c.Len())
	for _, cat := range Categories {
		out = append(out, c.Category(cat)...)
	}
	return out
}

// Filter returns the destinations stored under cat. Unknown categories yield an empty slice.
func Filter(c Catalog, cat Category) []Destination {
	src := c.Category(cat)
	out := make([]Destination, len(src))
	copy(out, src)
	return out
}

// Search matches query case-insensitively as a substring of name, description,
// location or any city. A blank query returns the union.
func Search(c Catalog, query string) []Destination {
	term := strings.TrimSpace(query)
	all := Union(c)
	if term == "" {
		return all
	}
	folder := cases.Fold()
	needle := folder.String(term)
	out := make([]Destination, 0, len(all))
	for _, d := range all {
		if matches(folder, d, needle) {
			out = append(out, d)
		}
	}
	return out
}

// matches reports whether the already folded needle occurs in one of d's searchable fields.
func matches(folder cases.Caser, d Destination, needle string) bool {
	if strings.Contains(folder.String(d.Name), needle) {
		return true
	}
	if strings.Contains(folder.String(d.Description), needle) {
		return true
	}
	if d.Location != "" && strings.Contains(folder.String(d.Location), needle) {
		return true
	}
	for _, city := range d.Cities {
		if strings.Contains(folder.String(city), needle) {
			return true
		}
	}
	return false
}

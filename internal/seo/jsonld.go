package seo

import (
	"encoding/json"
	"html/template"
	"strings"

	"finitefield.org/travel-web/internal/catalog"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
// encoding/json escapes <, > and &, so the output is safe inside a script element.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Script wraps JSON(v) for direct embedding in an application/ld+json script element.
func Script(v any) template.JS {
	return template.JS(JSON(v))
}

// WebSite returns a minimal WebSite schema with a SearchAction pointing at the search page.
func WebSite(name, url string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
		m["potentialAction"] = map[string]any{
			"@type":       "SearchAction",
			"target":      strings.TrimRight(url, "/") + "/?q={search_term_string}",
			"query-input": "required name=search_term_string",
		}
	}
	return m
}

// TouristDestination maps one destination to schema.org. Optional fields are omitted when absent.
func TouristDestination(d catalog.Destination) map[string]any {
	m := map[string]any{
		"@type":       "TouristDestination",
		"name":        d.Name,
		"description": d.Description,
	}
	if d.ImageURL != "" {
		m["image"] = d.ImageURL
	}
	if d.Location != "" {
		m["address"] = d.Location
	}
	if len(d.Activities) > 0 {
		m["touristType"] = d.Activities
	}
	if len(d.Cities) > 0 {
		parts := make([]map[string]any, 0, len(d.Cities))
		for _, c := range d.Cities {
			parts = append(parts, map[string]any{"@type": "City", "name": c})
		}
		m["containsPlace"] = parts
	}
	return m
}

// ItemList builds a schema.org ItemList of the destinations, preserving order.
func ItemList(name string, ds []catalog.Destination) map[string]any {
	el := make([]map[string]any, 0, len(ds))
	for i, d := range ds {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"item":     TouristDestination(d),
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "ItemList",
		"name":            name,
		"numberOfItems":   len(ds),
		"itemListElement": el,
	}
}

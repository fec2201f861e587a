package catalog

import (
	"net/url"
	"strings"
)

// ViewKind selects how the results surface is populated.
type ViewKind int

const (
	ViewAll ViewKind = iota
	ViewCategory
	ViewSearch
)

func (k ViewKind) String() string {
	switch k {
	case ViewCategory:
		return "category"
	case ViewSearch:
		return "search"
	default:
		return "all"
	}
}

// View is the explicit "what is on screen" state: All, Category(tag) or Search(query).
type View struct {
	Kind     ViewKind
	Category Category
	Query    string
}

// All returns the union view.
func All() View { return View{Kind: ViewAll} }

// InCategory returns the view for a single category. Unknown tags are kept so the
// empty-result message can echo them.
func InCategory(c Category) View { return View{Kind: ViewCategory, Category: c} }

// Searching returns the view for query. A blank query collapses to the union view.
func Searching(query string) View {
	q := strings.TrimSpace(query)
	if q == "" {
		return All()
	}
	return View{Kind: ViewSearch, Query: q}
}

// ViewFromQuery decodes a view from page query parameters (?category= or ?q=).
// A search term wins over a category when both are present.
func ViewFromQuery(values url.Values) View {
	if q := strings.TrimSpace(values.Get("q")); q != "" {
		return Searching(q)
	}
	if raw := strings.TrimSpace(values.Get("category")); raw != "" {
		c, _ := ParseCategory(raw)
		return InCategory(c)
	}
	return All()
}

// Values encodes the view as page query parameters; the union view encodes as empty.
func (v View) Values() url.Values {
	out := url.Values{}
	switch v.Kind {
	case ViewCategory:
		out.Set("category", string(v.Category))
	case ViewSearch:
		out.Set("q", v.Query)
	}
	return out
}

// PagePath returns the bookmarkable page URL for v.
func (v View) PagePath() string {
	if enc := v.Values().Encode(); enc != "" {
		return "/?" + enc
	}
	return "/"
}

// EmptyReason identifies which placeholder message an empty result needs.
type EmptyReason int

const (
	EmptyNone EmptyReason = iota
	EmptyGeneral
	EmptyCategory
	EmptySearch
)

// Result is the destinations selected by a view plus the context for an empty result.
type Result struct {
	View         View
	Destinations []Destination
	Empty        EmptyReason
}

// Apply evaluates v against c.
func Apply(c Catalog, v View) Result {
	res := Result{View: v}
	switch v.Kind {
	case ViewCategory:
		res.Destinations = Filter(c, v.Category)
		if len(res.Destinations) == 0 {
			res.Empty = EmptyCategory
		}
	case ViewSearch:
		res.Destinations = Search(c, v.Query)
		if len(res.Destinations) == 0 {
			res.Empty = EmptySearch
		}
	default:
		res.Destinations = Union(c)
		if len(res.Destinations) == 0 {
			res.Empty = EmptyGeneral
		}
	}
	return res
}

// FragmentPath returns the htmx results fragment URL for v.
func (v View) FragmentPath() string {
	switch v.Kind {
	case ViewCategory:
		return "/recommendations/" + url.PathEscape(string(v.Category))
	case ViewSearch:
		return "/search?" + url.Values{"q": {v.Query}}.Encode()
	default:
		return "/recommendations"
	}
}

package catalog

import "strings"

// Destination is one recommendable place (country, temple or beach).
type Destination struct {
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description" yaml:"description"`
	ImageURL     string   `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	Flag         string   `json:"flag,omitempty" yaml:"flag,omitempty"`
	Location     string   `json:"location,omitempty" yaml:"location,omitempty"`
	Cities       []string `json:"cities,omitempty" yaml:"cities,omitempty"`
	TimeToVisit  string   `json:"timeToVisit,omitempty" yaml:"timeToVisit,omitempty"`
	Activities   []string `json:"activities,omitempty" yaml:"activities,omitempty"`
	Significance string   `json:"significance,omitempty" yaml:"significance,omitempty"`
}

// Category names one of the fixed destination groupings.
type Category string

const (
	Countries Category = "countries"
	Temples   Category = "temples"
	Beaches   Category = "beaches"
)

// Categories lists every category in union order.
var Categories = []Category{Countries, Temples, Beaches}

// ParseCategory normalises raw and reports whether it names a known category.
func ParseCategory(raw string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}
	return c, false
}

// Catalog is the root container of the dataset document.
// Nil slices are valid and read as empty.
type Catalog struct {
	Countries []Destination `json:"countries" yaml:"countries"`
	Temples   []Destination `json:"temples" yaml:"temples"`
	Beaches   []Destination `json:"beaches" yaml:"beaches"`
}

// Category returns the stored array for c, or nil for an unknown category.
func (c Catalog) Category(cat Category) []Destination {
	switch cat {
	case Countries:
		return c.Countries
	case Temples:
		return c.Temples
	case Beaches:
		return c.Beaches
	default:
		return nil
	}
}

// Len reports the number of destinations across all categories.
func (c Catalog) Len() int {
	return len(c.Countries) + len(c.Temples) + len(c.Beaches)
}

// Clone returns a deep copy so snapshots never share backing arrays with callers.
func (c Catalog) Clone() Catalog {
	return Catalog{
		Countries: cloneDestinations(c.Countries),
		Temples:   cloneDestinations(c.Temples),
		Beaches:   cloneDestinations(c.Beaches),
	}
}

func cloneDestinations(in []Destination) []Destination {
	if in == nil {
		return nil
	}
	out := make([]Destination, len(in))
	for i, d := range in {
		d.Cities = copyStrings(d.Cities)
		d.Activities = copyStrings(d.Activities)
		out[i] = d
	}
	return out
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

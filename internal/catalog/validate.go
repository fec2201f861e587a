package catalog

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Problem kinds reported by Validate.
const (
	ProblemMissing = "missing"
	ProblemMarkup  = "markup in"
)

// Issue describes a record that lacks a required field or carries markup in a text field.
type Issue struct {
	Category Category
	Index    int
	Name     string
	Field    string
	Problem  string
}

func (i Issue) String() string {
	label := i.Name
	if label == "" {
		label = fmt.Sprintf("#%d", i.Index)
	}
	problem := i.Problem
	if problem == "" {
		problem = ProblemMissing
	}
	return fmt.Sprintf("%s[%d] %s: %s %s", i.Category, i.Index, label, problem, i.Field)
}

var strict = bluemonday.StrictPolicy()

// hasMarkup reports whether s contains anything the page would show as literal tags.
func hasMarkup(s string) bool {
	return html.UnescapeString(strict.Sanitize(s)) != s
}

// Validate lists records missing a name or description, and text fields containing
// HTML tags. Records are never removed; the renderer copes with them.
func Validate(c Catalog) []Issue {
	var issues []Issue
	for _, cat := range Categories {
		for i, d := range c.Category(cat) {
			add := func(field, problem string) {
				issues = append(issues, Issue{Category: cat, Index: i, Name: d.Name, Field: field, Problem: problem})
			}
			if strings.TrimSpace(d.Name) == "" {
				add("name", ProblemMissing)
			}
			if strings.TrimSpace(d.Description) == "" {
				add("description", ProblemMissing)
			} else if hasMarkup(d.Description) {
				add("description", ProblemMarkup)
			}
			if hasMarkup(d.Significance) {
				add("significance", ProblemMarkup)
			}
		}
	}
	return issues
}

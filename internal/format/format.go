package format

import (
	"strings"
	"time"
)

// ListSeparator joins list-valued destination fields for display.
const ListSeparator = ", "

// JoinList trims each entry, drops blanks and joins the rest with ListSeparator.
// Example: JoinList([]string{"Tokyo", " ", "Kyoto"}) => "Tokyo, Kyoto"
func JoinList(items []string) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			parts = append(parts, it)
		}
	}
	return strings.Join(parts, ListSeparator)
}

// Or returns v trimmed, or fallback when v is blank.
func Or(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}

// FmtDate formats time in a locale-friendly short form.
func FmtDate(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	switch strings.ToLower(lang) {
	case "ja":
		return t.Format("2006-01-02 15:04")
	default:
		return t.Format("Jan 2, 2006 15:04")
	}
}

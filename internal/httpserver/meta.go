package httpserver

import (
	"html/template"
	"net/url"

	"finitefield.org/travel-web/internal/catalog"
	"finitefield.org/travel-web/internal/seo"
)

func (h *handlers) baseMeta(lang, path string) seo.Meta {
	m := seo.Meta{
		Title:       h.bundle.T(lang, "page.title") + " | " + h.siteName,
		Description: h.bundle.T(lang, "page.description"),
		OG: seo.OpenGraph{
			Type:     "website",
			SiteName: h.siteName,
		},
		Twitter: seo.Twitter{Card: "summary_large_image"},
	}
	m.OG.Title = m.Title
	m.OG.Description = m.Description
	if h.baseURL != "" {
		m.Canonical = h.baseURL + path
		m.OG.URL = m.Canonical
		for _, l := range h.bundle.Supported() {
			m.Alternates = append(m.Alternates, seo.Alternate{Hreflang: l, Href: withLang(m.Canonical, l)})
		}
	}
	return m
}

func (h *handlers) pageMeta(lang string, view catalog.View, snap catalog.Snapshot) seo.Meta {
	m := h.baseMeta(lang, view.PagePath())
	switch view.Kind {
	case catalog.ViewCategory:
		if _, known := catalog.ParseCategory(string(view.Category)); known {
			m.Title = h.bundle.T(lang, "filter."+string(view.Category)) + " | " + h.siteName
			m.OG.Title = m.Title
		}
	case catalog.ViewSearch:
		// result pages for arbitrary queries stay out of the index
		m.Robots = "noindex, follow"
	}

	m.JSONLD = []template.JS{seo.Script(seo.WebSite(h.siteName, h.baseURL))}
	if snap.Phase == catalog.PhaseLoaded {
		res := catalog.Apply(snap.Catalog, view)
		if len(res.Destinations) > 0 {
			m.JSONLD = append(m.JSONLD, seo.Script(seo.ItemList(m.Title, res.Destinations)))
			if img := res.Destinations[0].ImageURL; img != "" {
				m.OG.Image = img
			}
		}
	}
	return m
}

func withLang(raw, lang string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set("hl", lang)
	u.RawQuery = q.Encode()
	return u.String()
}

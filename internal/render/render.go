package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/a-h/templ"

	"finitefield.org/travel-web/internal/catalog"
	"finitefield.org/travel-web/internal/format"
	"finitefield.org/travel-web/internal/i18n"
	"finitefield.org/travel-web/internal/nav"
	"finitefield.org/travel-web/internal/seo"
)

//go:embed templates/*.tmpl
var embedded embed.FS

// RetryPath is the single retry control target shown in the error state.
const RetryPath = "/data/reload"

// Options configures a Renderer.
type Options struct {
	// FS holds the *.tmpl files. Defaults to the embedded set.
	FS fs.FS
	// Reload reparses templates on every render (development).
	Reload bool
	// Bundle provides localised strings. Required.
	Bundle *i18n.Bundle
}

// Renderer turns view models into templ components backed by html/template.
type Renderer struct {
	fsys   fs.FS
	reload bool
	bundle *i18n.Bundle
	tmpl   *template.Template
}

// New parses the templates once unless Reload is set.
func New(opts Options) (*Renderer, error) {
	if opts.Bundle == nil {
		return nil, fmt.Errorf("render: i18n bundle is required")
	}
	r := &Renderer{
		fsys:   opts.FS,
		reload: opts.Reload,
		bundle: opts.Bundle,
	}
	if r.fsys == nil {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, err
		}
		r.fsys = sub
	}
	if !r.reload {
		t, err := r.parse()
		if err != nil {
			return nil, err
		}
		r.tmpl = t
	}
	return r, nil
}

func (r *Renderer) parse() (*template.Template, error) {
	funcs := template.FuncMap{
		"t": r.bundle.T,
		"tf": func(lang, key string, pairs ...string) string {
			return r.bundle.Format(lang, key, pairs...)
		},
		"fmtDate": format.FmtDate,
	}
	t, err := template.New("_root").Funcs(funcs).ParseFS(r.fsys, "*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

func (r *Renderer) templates() (*template.Template, error) {
	if r.reload {
		return r.parse()
	}
	return r.tmpl, nil
}

func (r *Renderer) component(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		t, err := r.templates()
		if err != nil {
			return err
		}
		return t.ExecuteTemplate(w, name, data)
	})
}

// Bundle exposes the translations used by the templates.
func (r *Renderer) Bundle() *i18n.Bundle { return r.bundle }

// ResultsView is the display model of the results surface.
type ResultsView struct {
	Lang    string
	Phase   catalog.Phase
	View    catalog.View
	Cards   []CardView
	Empty   string
	Error   string
	Retry   string
	Poll    string
	Updated string
	Filters []nav.RenderedFilter
	OOB     bool
}

// Loading reports whether the placeholder should be shown.
func (v ResultsView) Loading() bool { return v.Phase == catalog.PhaseLoading }

// Failed reports whether the error block should be shown.
func (v ResultsView) Failed() bool { return v.Phase == catalog.PhaseError }

// BuildResults derives the results view from a snapshot. The output depends only on its inputs.
func (r *Renderer) BuildResults(lang string, snap catalog.Snapshot, view catalog.View) ResultsView {
	out := ResultsView{
		Lang:    lang,
		Phase:   snap.Phase,
		View:    view,
		Filters: nav.Build(view),
	}
	switch snap.Phase {
	case catalog.PhaseLoading:
		out.Poll = view.FragmentPath()
	case catalog.PhaseError:
		out.Error = r.bundle.T(lang, "error.load")
		out.Retry = RetryPath
		if enc := view.Values().Encode(); enc != "" {
			out.Retry += "?" + enc
		}
	default:
		res := catalog.Apply(snap.Catalog, view)
		out.Cards = BuildCards(res.Destinations, r.bundle.T(lang, "card.year_round"))
		out.Empty = r.emptyMessage(lang, res)
		if !snap.LoadedAt.IsZero() {
			out.Updated = format.FmtDate(snap.LoadedAt, lang)
		}
	}
	return out
}

func (r *Renderer) emptyMessage(lang string, res catalog.Result) string {
	switch res.Empty {
	case catalog.EmptyGeneral:
		return r.bundle.T(lang, "empty.general")
	case catalog.EmptyCategory:
		return r.bundle.Format(lang, "empty.category", "category", string(res.View.Category))
	case catalog.EmptySearch:
		return r.bundle.Format(lang, "empty.search", "query", res.View.Query)
	default:
		return ""
	}
}

// PageView is the full page.
type PageView struct {
	Lang      string
	Languages []string
	Meta      seo.Meta
	Nav       []nav.RenderedItem
	CSRFToken string
	Query     string
	Results   ResultsView
}

// WishlistView is the wishlist page.
type WishlistView struct {
	Lang      string
	Languages []string
	Meta      seo.Meta
	Nav       []nav.RenderedItem
	CSRFToken string
	Names     []string
}

// NoticeView is a short status message swapped into the notice region.
type NoticeView struct {
	Kind    string
	Message string
}

// Page renders the full document.
func (r *Renderer) Page(v PageView) templ.Component { return r.component("page", v) }

// Results renders the results fragment with out-of-band filter controls.
func (r *Renderer) Results(v ResultsView) templ.Component {
	v.OOB = true
	return r.component("results_fragment", v)
}

// Wishlist renders the wishlist page.
func (r *Renderer) Wishlist(v WishlistView) templ.Component { return r.component("wishlist", v) }

// Notice renders a status message.
func (r *Renderer) Notice(v NoticeView) templ.Component { return r.component("notice", v) }

// RenderString renders c to a string. Used by tests and the CLI preview.
func RenderString(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

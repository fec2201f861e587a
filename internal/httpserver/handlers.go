package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"finitefield.org/travel-web/internal/catalog"
	"finitefield.org/travel-web/internal/i18n"
	custommw "finitefield.org/travel-web/internal/middleware"
	"finitefield.org/travel-web/internal/nav"
	"finitefield.org/travel-web/internal/observability"
	"finitefield.org/travel-web/internal/render"
	"finitefield.org/travel-web/internal/share"
)

type handlers struct {
	store    *catalog.Store
	loader   Reloader
	renderer *render.Renderer
	bundle   *i18n.Bundle
	siteName string
	baseURL  string
}

// Healthz reports liveness.
func (h *handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// Readyz reports 200 only once the dataset is loaded.
func (h *handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if snap.Phase != catalog.PhaseLoaded {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_, _ = w.Write([]byte(snap.Phase.String()))
}

// Home renders the full page for the view in the query string.
func (h *handlers) Home(w http.ResponseWriter, r *http.Request) {
	view := catalog.ViewFromQuery(r.URL.Query())
	lang := custommw.Lang(r)
	snap := h.store.Snapshot()

	page := render.PageView{
		Lang:      lang,
		Languages: h.bundle.Supported(),
		Meta:      h.pageMeta(lang, view, snap),
		Nav:       nav.BuildMain(r.URL.Path),
		CSRFToken: custommw.CSRFToken(r),
		Query:     view.Query,
		Results:   h.results(r, lang, snap, view),
	}
	templ.Handler(h.renderer.Page(page)).ServeHTTP(w, r)
}

// AllFragment renders the union view.
func (h *handlers) AllFragment(w http.ResponseWriter, r *http.Request) {
	h.fragment(w, r, catalog.All())
}

// CategoryFragment renders one category. Unknown categories render the empty message.
func (h *handlers) CategoryFragment(w http.ResponseWriter, r *http.Request) {
	c, _ := catalog.ParseCategory(chi.URLParam(r, "category"))
	h.fragment(w, r, catalog.InCategory(c))
}

// SearchFragment renders the search view; a blank query shows the union.
func (h *handlers) SearchFragment(w http.ResponseWriter, r *http.Request) {
	h.fragment(w, r, catalog.Searching(r.URL.Query().Get("q")))
}

// ClearSearch resets to the union view and tells the client to clear the input.
func (h *handlers) ClearSearch(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("HX-Trigger", "search:cleared")
	h.fragment(w, r, catalog.All())
}

// Reload retries the dataset load and renders the resulting state for the current view.
func (h *handlers) Reload(w http.ResponseWriter, r *http.Request) {
	view := catalog.ViewFromQuery(r.URL.Query())
	if _, err := h.loader.Load(r.Context()); err != nil {
		observability.FromContext(r.Context()).Warn("reload failed", zap.Error(err))
	}
	h.fragment(w, r, view)
}

func (h *handlers) fragment(w http.ResponseWriter, r *http.Request, view catalog.View) {
	if !custommw.IsHTMX(r.Context()) {
		http.Redirect(w, r, view.PagePath(), http.StatusSeeOther)
		return
	}
	lang := custommw.Lang(r)
	w.Header().Set("HX-Push-Url", view.PagePath())
	results := h.results(r, lang, h.store.Snapshot(), view)
	templ.Handler(h.renderer.Results(results)).ServeHTTP(w, r)
}

func (h *handlers) results(r *http.Request, lang string, snap catalog.Snapshot, view catalog.View) render.ResultsView {
	_, span := observability.Tracer().Start(r.Context(), "catalog.view", trace.WithAttributes(
		attribute.String("view.kind", view.Kind.String()),
		attribute.String("view.category", string(view.Category)),
		attribute.String("view.query", view.Query),
		attribute.String("catalog.phase", snap.Phase.String()),
	))
	defer span.End()
	out := h.renderer.BuildResults(lang, snap, view)
	span.SetAttributes(attribute.Int("results.count", len(out.Cards)))
	return out
}

type apiView struct {
	Kind     string `json:"kind"`
	Category string `json:"category,omitempty"`
	Query    string `json:"query,omitempty"`
}

type apiResponse struct {
	Phase        string                `json:"phase"`
	View         apiView               `json:"view"`
	Count        int                   `json:"count"`
	Destinations []catalog.Destination `json:"destinations"`
	Message      string                `json:"message,omitempty"`
	LoadedAt     time.Time             `json:"loadedAt"`
}

// APIRecommendations returns the current view result as JSON.
func (h *handlers) APIRecommendations(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	lang := custommw.Lang(r)
	switch snap.Phase {
	case catalog.PhaseLoading:
		custommw.WriteJSONError(w, r, http.StatusServiceUnavailable, "loading", h.bundle.T(lang, "results.loading"))
		return
	case catalog.PhaseError:
		custommw.WriteJSONError(w, r, http.StatusServiceUnavailable, "load_failed", h.bundle.T(lang, "error.load"))
		return
	}

	view := catalog.ViewFromQuery(r.URL.Query())
	res := catalog.Apply(snap.Catalog, view)
	out := apiResponse{
		Phase:        snap.Phase.String(),
		View:         apiView{Kind: view.Kind.String(), Category: string(view.Category), Query: view.Query},
		Count:        len(res.Destinations),
		Destinations: res.Destinations,
		LoadedAt:     snap.LoadedAt,
	}
	if out.Destinations == nil {
		out.Destinations = []catalog.Destination{}
	}
	if res.Empty != catalog.EmptyNone {
		out.Message = h.renderer.BuildResults(lang, snap, view).Empty
	}
	custommw.WriteJSON(w, http.StatusOK, out)
}

// WishlistPage lists the names saved in the session.
func (h *handlers) WishlistPage(w http.ResponseWriter, r *http.Request) {
	lang := custommw.Lang(r)
	meta := h.baseMeta(lang, "/wishlist")
	meta.Title = h.bundle.T(lang, "wishlist.title") + " | " + h.siteName
	meta.Robots = "noindex"
	page := render.WishlistView{
		Lang:      lang,
		Languages: h.bundle.Supported(),
		Meta:      meta,
		Nav:       nav.BuildMain(r.URL.Path),
		CSRFToken: custommw.CSRFToken(r),
		Names:     custommw.GetSession(r).Wishlist,
	}
	templ.Handler(h.renderer.Wishlist(page)).ServeHTTP(w, r)
}

// AddToWishlist saves a destination name in the session and confirms it.
func (h *handlers) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	lang := custommw.Lang(r)
	name, ok := h.destinationName(r)
	if !ok {
		h.notice(w, r, http.StatusBadRequest, "error", h.bundle.T(lang, "wishlist.invalid"))
		return
	}
	if custommw.GetSession(r).AddWishlist(name) {
		observability.FromContext(r.Context()).Info("wishlist add", zap.String("destination", name))
	}
	if !custommw.IsHTMX(r.Context()) {
		http.Redirect(w, r, "/wishlist", http.StatusSeeOther)
		return
	}
	w.Header().Set("HX-Trigger", "wishlist:updated")
	h.notice(w, r, http.StatusOK, "success", h.bundle.Format(lang, "wishlist.added", "name", name))
}

// Share picks a share strategy from the reported capabilities and hands the payload to
// the client in an event fired after the provisional notice is swapped in.
func (h *handlers) Share(w http.ResponseWriter, r *http.Request) {
	lang := custommw.Lang(r)
	name, ok := h.destinationName(r)
	if !ok {
		h.notice(w, r, http.StatusBadRequest, "error", h.bundle.T(lang, "share.invalid"))
		return
	}
	caps := share.Capabilities{
		Native:    share.ParseFlag(r.FormValue("native")),
		Clipboard: share.ParseFlag(r.FormValue("clipboard")),
	}
	out := share.Plan(h.bundle, lang, name, h.shareURL(r), caps)
	trigger, err := json.Marshal(map[string]share.Outcome{"share:ready": out})
	if err != nil {
		custommw.WriteError(w, r, http.StatusInternalServerError, "share_failed", err.Error())
		return
	}
	w.Header().Set("HX-Trigger-After-Swap", asciiJSON(trigger))
	h.notice(w, r, http.StatusOK, string(out.Strategy), h.bundle.T(lang, out.MessageKey))
}

// asciiJSON escapes non-ASCII runes so the payload survives as a header value;
// browsers decode response headers as Latin-1.
func asciiJSON(b []byte) string {
	var sb strings.Builder
	for _, r := range string(b) {
		switch {
		case r < utf8.RuneSelf:
			sb.WriteRune(r)
		case r > 0xFFFF:
			r1, r2 := utf16.EncodeRune(r)
			fmt.Fprintf(&sb, "\\u%04x\\u%04x", r1, r2)
		default:
			fmt.Fprintf(&sb, "\\u%04x", r)
		}
	}
	return sb.String()
}

func (h *handlers) notice(w http.ResponseWriter, r *http.Request, status int, kind, msg string) {
	templ.Handler(h.renderer.Notice(render.NoticeView{Kind: kind, Message: msg}), templ.WithStatus(status)).ServeHTTP(w, r)
}

// destinationName reads the name form field. Names longer than MaxWishlistName are
// rejected, and once the dataset is loaded only known destinations are accepted.
func (h *handlers) destinationName(r *http.Request) (string, bool) {
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" || utf8.RuneCountInString(name) > custommw.MaxWishlistName {
		return "", false
	}
	snap := h.store.Snapshot()
	if snap.Phase != catalog.PhaseLoaded {
		return name, true
	}
	known := slices.ContainsFunc(catalog.Union(snap.Catalog), func(d catalog.Destination) bool {
		return d.Name == name
	})
	return name, known
}

func (h *handlers) shareURL(r *http.Request) string {
	if cur := custommw.HTMXInfoFromContext(r.Context()).CurrentURL; cur != "" {
		if u, err := url.Parse(cur); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
			return u.String()
		}
	}
	if h.baseURL != "" {
		return h.baseURL + "/"
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/"
}

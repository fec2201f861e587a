package httpserver

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"finitefield.org/travel-web/internal/catalog"
	custommw "finitefield.org/travel-web/internal/middleware"
	"finitefield.org/travel-web/internal/render"
	"finitefield.org/travel-web/public"
)

// Reloader runs the dataset load procedure. *loader.Loader satisfies it.
type Reloader interface {
	Load(ctx context.Context) (catalog.Snapshot, error)
}

// Config holds runtime options and dependencies for the web server.
type Config struct {
	Address      string
	SiteName     string
	BaseURL      string
	Store        *catalog.Store
	Loader       Reloader
	Renderer     *render.Renderer
	Logger       *zap.Logger
	Session      custommw.SessionConfig
	CSRF         custommw.CSRFConfig
	Static       fs.FS
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// New constructs the HTTP server with the middleware stack and embedded assets.
func New(cfg Config) (*http.Server, error) {
	if cfg.Store == nil || cfg.Loader == nil || cfg.Renderer == nil {
		return nil, errors.New("httpserver: store, loader and renderer are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	static := cfg.Static
	if static == nil {
		sub, err := public.StaticFS()
		if err != nil {
			return nil, err
		}
		static = sub
	}
	if cfg.Session.Logger == nil {
		cfg.Session.Logger = logger
	}

	bundle := cfg.Renderer.Bundle()
	h := &handlers{
		store:    cfg.Store,
		loader:   cfg.Loader,
		renderer: cfg.Renderer,
		bundle:   bundle,
		siteName: firstNonEmpty(cfg.SiteName, bundle.T(bundle.Fallback(), "brand.name")),
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(custommw.Logger(logger))
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(30 * time.Second))

	router.Get("/healthz", h.Healthz)
	router.Get("/readyz", h.Readyz)
	router.Handle("/assets/*", custommw.AssetsWithCache(static, "/assets"))

	router.Group(func(r chi.Router) {
		r.Use(custommw.HTMX())
		r.Use(custommw.NoStore())
		r.Use(custommw.Session(cfg.Session))
		r.Use(custommw.Locale(bundle))
		r.Use(custommw.CSRF(cfg.CSRF))

		r.Get("/", h.Home)
		r.Get("/recommendations", h.AllFragment)
		r.Get("/recommendations/{category}", h.CategoryFragment)
		r.Get("/search", h.SearchFragment)
		r.Get("/search/clear", h.ClearSearch)
		r.Post("/data/reload", h.Reload)
		r.Get("/api/recommendations", h.APIRecommendations)
		r.Get("/wishlist", h.WishlistPage)
		r.Post("/wishlist", h.AddToWishlist)
		r.With(custommw.RequireHTMX()).Post("/share", h.Share)
	})

	return &http.Server{
		Addr:              cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       orDefault(cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      orDefault(cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       orDefault(cfg.IdleTimeout, 60*time.Second),
	}, nil
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

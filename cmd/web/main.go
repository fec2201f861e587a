package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"finitefield.org/travel-web/internal/catalog"
	"finitefield.org/travel-web/internal/config"
	"finitefield.org/travel-web/internal/httpserver"
	"finitefield.org/travel-web/internal/i18n"
	"finitefield.org/travel-web/internal/loader"
	custommw "finitefield.org/travel-web/internal/middleware"
	"finitefield.org/travel-web/internal/observability"
	"finitefield.org/travel-web/internal/render"
	"finitefield.org/travel-web/locales"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger); err != nil {
		logger.Fatal("web server exited", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			logger.Error("invalid configuration", zap.Strings("fields", verr.Fields()))
		}
		return err
	}

	bundle, err := loadBundle(cfg)
	if err != nil {
		return err
	}
	renderOpts := render.Options{Bundle: bundle}
	if cfg.Server.Dev && cfg.Server.TemplatesDir != "" {
		renderOpts.FS = os.DirFS(cfg.Server.TemplatesDir)
		renderOpts.Reload = true
	}
	renderer, err := render.New(renderOpts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := catalog.NewStore()
	ld := loader.New(cfg.Data.Source, store, loader.OptionsFromConfig(cfg, logger)...)
	// serve the loading placeholder while the first fetch runs
	go func() {
		_, _ = ld.Load(ctx)
	}()

	srv, err := httpserver.New(httpserver.Config{
		Address:  cfg.Server.Addr,
		SiteName: cfg.Site.Name,
		BaseURL:  cfg.Site.BaseURL,
		Store:    store,
		Loader:   ld,
		Renderer: renderer,
		Logger:   logger,
		Session: custommw.SessionConfig{
			SigningKey: []byte(cfg.Session.SigningKey),
			Secure:     cfg.Session.Secure,
		},
		CSRF:         custommw.CSRFConfig{Secure: cfg.Session.Secure},
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Info("web listening",
		zap.String("addr", cfg.Server.Addr),
		zap.String("env", cfg.Server.Environment),
		zap.Bool("dev", cfg.Server.Dev),
		zap.String("source", ld.Source()),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	logger.Info("web server stopped")
	return nil
}

func loadBundle(cfg config.Config) (*i18n.Bundle, error) {
	if cfg.Server.Dev {
		return i18n.Load(cfg.Site.LocalesDir, cfg.Site.DefaultLang, cfg.Site.Languages)
	}
	return i18n.LoadFS(locales.FS, cfg.Site.DefaultLang, cfg.Site.Languages)
}

package main

import (
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"peptidology.com/storefront/internal/catalog"
	"peptidology.com/storefront/internal/cms"
	"peptidology.com/storefront/internal/config"
	"peptidology.com/storefront/internal/headless"
	mw "peptidology.com/storefront/internal/middleware"
	"peptidology.com/storefront/internal/observability"
	"peptidology.com/storefront/internal/page"
	"peptidology.com/storefront/internal/shortcode"
	"peptidology.com/storefront/internal/theme"
)

// site wires stores, hooks and templates for the HTTP handlers.
type site struct {
	cfg        config.Config
	logger     *zap.Logger
	fields     cms.Store
	catalog    catalog.Store
	renderer   *theme.Renderer
	hooks      *page.Hooks
	resolver   *headless.Resolver
	shortcodes *shortcode.Registry
}

func newSite(cfg config.Config, logger *zap.Logger, fields cms.Store, products catalog.Store, renderer *theme.Renderer) *site {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &site{
		cfg:      cfg,
		logger:   logger,
		fields:   fields,
		catalog:  products,
		renderer: renderer,
		hooks:    &page.Hooks{},
		resolver: headless.New(cfg.Headless, renderer),
		shortcodes: shortcode.Defaults(shortcode.Site{
			Name: cfg.Theme.SiteName,
			URL:  cfg.Theme.SiteURL,
		}),
	}
	s.resolver.Register(s.hooks)
	return s
}

func (s *site) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// RealIP trusts X-Forwarded-For; deploy behind a proxy that overwrites it.
	r.Use(chimw.RealIP)
	r.Use(chimw.StripSlashes)
	r.Use(observability.InjectLoggerMiddleware(s.logger))
	r.Use(observability.RequestLoggerMiddleware())
	r.Use(observability.RecoveryMiddleware(s.logger, http.HandlerFunc(s.serverError)))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})
	r.Handle("/assets/*", mw.AssetsWithCache(filepath.Join(s.cfg.Theme.PublicDir, "assets"), "/assets", s.cfg.Theme.DevMode))

	r.Get("/", s.handleFront)
	r.Get("/search", s.handleSearch)
	r.Get("/search/{term}", s.handleSearch)
	r.Get("/shop", s.handleArchive)
	r.Get("/shop/page/{paged}", s.handleArchive)
	r.Get("/product-category/*", s.handleArchive)
	r.Get("/product-tag/{slug}", s.handleArchive)
	r.Get("/product-tag/{slug}/page/{paged}", s.handleArchive)
	r.Get("/product/{slug}", s.handleProduct)
	r.Get("/cart", s.handleTransactional)
	r.Get("/checkout", s.handleTransactional)
	r.Get("/checkout/*", s.handleTransactional)
	r.Get("/my-account", s.handleTransactional)
	r.Get("/my-account/*", s.handleTransactional)
	r.Get("/{slug}", s.handlePage)
	r.NotFound(s.handleNotFound)
	return r
}

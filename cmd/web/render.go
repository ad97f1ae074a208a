package main

import (
	"bytes"
	"context"
	"net/http"

	"go.uber.org/zap"

	"peptidology.com/storefront/internal/cms"
	"peptidology.com/storefront/internal/fields"
	"peptidology.com/storefront/internal/headless"
	"peptidology.com/storefront/internal/nav"
	"peptidology.com/storefront/internal/page"
	"peptidology.com/storefront/internal/requestctx"
	"peptidology.com/storefront/internal/seo"
	"peptidology.com/storefront/internal/views"
)

// pageData is what a handler contributes to the layout.
type pageData struct {
	Context   page.Context
	Template  string
	Title     string
	Summary   string
	Image     string
	Options   fields.Set
	Content   any
	Status    int
	CrumbName string
	JSONLD    []any
}

// resolveTemplate picks the hierarchy template for pc and runs template_include.
func (s *site) resolveTemplate(ctx context.Context, pc page.Context) (string, bool) {
	original := s.renderer.First(pc.TemplateCandidates()...)
	resolved := s.hooks.TemplateInclude.Apply(ctx, original, pc)
	return resolved, headless.IsShell(resolved)
}

func (s *site) options(ctx context.Context) fields.Set {
	return cms.FieldsOrEmpty(ctx, s.fields, fields.OptionsScope)
}

func (s *site) render(w http.ResponseWriter, r *http.Request, d pageData) {
	ctx := r.Context()
	if d.Template == "" {
		d.Template, _ = s.resolveTemplate(ctx, d.Context)
	}
	requestctx.RenderInfo(ctx).Set(string(d.Context.Type), d.Template, headless.IsShell(d.Template))
	classes := s.hooks.BodyClass.Apply(ctx, d.Context.BodyClasses(), page.Resolved{Context: d.Context, Template: d.Template})

	siteName := s.cfg.Theme.SiteName
	if name := d.Options.String("site_name"); name != "" {
		siteName = name
	}
	layout := views.Layout{
		Title:       views.DocumentTitle(d.Title, siteName),
		SiteName:    siteName,
		SiteURL:     s.cfg.Theme.SiteURL,
		Path:        r.URL.Path,
		Template:    d.Template,
		BodyClass:   views.BodyClassAttr(classes),
		Breadcrumbs: nav.Breadcrumbs(r.URL.Path, d.CrumbName),
		Footer: views.BuildFooter(ctx, d.Options, views.FooterInput{
			HomeURL:     s.homeURL(),
			CurrentPath: r.URL.Path,
			Shortcodes:  s.shortcodes,
		}),
		Content: d.Content,
	}
	if menu, ok := nav.Build(d.Options, nav.Primary, "primary-menu", "menu", r.URL.Path); ok {
		layout.PrimaryMenu = &menu
	}
	layout.Meta = s.meta(d, layout.Breadcrumbs)

	var buf bytes.Buffer
	if err := s.renderer.Render(ctx, &buf, d.Template, layout); err != nil {
		requestctx.Logger(ctx).Error("render failed", zap.String("template", d.Template), zap.Error(err))
		s.serverError(w, r)
		return
	}
	status := d.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *site) meta(d pageData, crumbs []nav.Crumb) seo.Meta {
	m := seo.Meta{OGType: "website", Description: d.Summary, OGImage: d.Image}
	if s.cfg.Theme.SiteURL != "" {
		m.Canonical = s.cfg.Theme.SiteURL + d.Context.Path
	}
	if d.Context.IsTransactional() || d.Context.IsSearch || d.Context.Is404 {
		m.Robots = "noindex, follow"
	}
	if len(crumbs) > 1 {
		items := make([]seo.BreadcrumbItem, 0, len(crumbs))
		for _, c := range crumbs {
			items = append(items, seo.BreadcrumbItem{Name: c.Label, Item: s.cfg.Theme.SiteURL + c.Href})
		}
		m.JSONLD = append(m.JSONLD, seo.JSON(seo.BreadcrumbList(items)))
	}
	for _, v := range d.JSONLD {
		m.JSONLD = append(m.JSONLD, seo.JSON(v))
	}
	return m
}

func (s *site) homeURL() string {
	if s.cfg.Theme.SiteURL != "" {
		return s.cfg.Theme.SiteURL + "/"
	}
	return "/"
}

func (s *site) serverError(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

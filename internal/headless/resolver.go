// Package headless decides when product listings and product pages are served as
// client-rendered shells instead of the traditional templates.
package headless

import (
	"context"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"peptidology.com/storefront/internal/config"
	"peptidology.com/storefront/internal/hooks"
	"peptidology.com/storefront/internal/page"
	"peptidology.com/storefront/internal/requestctx"
)

// Shell template names, relative to the templates directory without extension.
const (
	ArchiveShell = "headless/archive-product"
	ProductShell = "headless/single-product"
)

// Hook registration names and priorities. The template filter runs late so other
// template_include callbacks see the hierarchy name first.
const (
	hookName         = "peptidology_headless"
	templatePriority = 99
)

const meterName = "peptidology.com/storefront/headless"

// Resolution outcomes recorded on the storefront.headless.resolutions counter.
const (
	outcomeShell    = "shell"
	outcomeFallback = "fallback"
	outcomeOriginal = "original"
)

// Locator reports whether a template can be rendered.
type Locator interface {
	Exists(name string) bool
}

// Resolver chooses between headless shells and original templates.
type Resolver struct {
	Enabled   bool
	BodyClass string
	Templates Locator

	resolutions metric.Int64Counter
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithMeter records resolution outcomes on m instead of the global meter provider.
func WithMeter(m metric.Meter) Option {
	return func(r *Resolver) {
		r.resolutions = newCounter(m)
	}
}

// New builds a Resolver from configuration.
func New(cfg config.HeadlessConfig, templates Locator, opts ...Option) *Resolver {
	r := &Resolver{Enabled: cfg.Enabled, BodyClass: cfg.BodyClass, Templates: templates}
	for _, opt := range opts {
		opt(r)
	}
	if r.resolutions == nil {
		r.resolutions = newCounter(otel.GetMeterProvider().Meter(meterName))
	}
	return r
}

func newCounter(m metric.Meter) metric.Int64Counter {
	counter, err := m.Int64Counter(
		"storefront.headless.resolutions",
		metric.WithDescription("Template resolutions by outcome and page type"),
	)
	if err != nil {
		return nil
	}
	return counter
}

func (r *Resolver) record(ctx context.Context, pc page.Context, outcome string) {
	if r.resolutions == nil {
		return
	}
	r.resolutions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("page_type", string(pc.Type)),
	))
}

// Resolve returns the template to render and whether it is a headless shell.
// Checkout, cart and account requests always keep the original template.
func (r *Resolver) Resolve(ctx context.Context, pc page.Context, original string) (string, bool) {
	if !r.Enabled || pc.IsTransactional() {
		r.record(ctx, pc, outcomeOriginal)
		return original, false
	}
	var shell string
	switch {
	case pc.IsProductListing():
		shell = ArchiveShell
	case pc.IsProduct:
		shell = ProductShell
	default:
		r.record(ctx, pc, outcomeOriginal)
		return original, false
	}
	if r.Templates == nil || !r.Templates.Exists(shell) {
		requestctx.Logger(ctx).Debug("headless shell missing, using original template",
			zap.String("shell", shell), zap.String("template", original))
		r.record(ctx, pc, outcomeFallback)
		return original, false
	}
	r.record(ctx, pc, outcomeShell)
	return shell, true
}

// IsShell reports whether name is one of the headless shells.
func IsShell(name string) bool {
	return name == ArchiveShell || name == ProductShell
}

// BodyClasses appends the headless marker when the resolved template is a shell.
func (r *Resolver) BodyClasses(classes []string, template string) []string {
	if !IsShell(template) || r.BodyClass == "" || slices.Contains(classes, r.BodyClass) {
		return classes
	}
	return append(classes, r.BodyClass)
}

// LimitQuery caps the shop's main query at one product.
func (r *Resolver) LimitQuery(q page.MainQuery) {
	if !r.Enabled || q.Query == nil || !q.Query.Main {
		return
	}
	if q.Context.IsTransactional() || !q.Context.IsShop {
		return
	}
	q.Query.PerPage = 1
}

// Register attaches the resolver to the site's extension points.
func (r *Resolver) Register(h *page.Hooks) {
	h.TemplateInclude.Add(hookName, templatePriority, func(ctx context.Context, name string, pc page.Context) string {
		resolved, _ := r.Resolve(ctx, pc, name)
		return resolved
	})
	h.BodyClass.Add(hookName, hooks.DefaultPriority, func(_ context.Context, classes []string, res page.Resolved) []string {
		return r.BodyClasses(classes, res.Template)
	})
	h.PreGetPosts.Add(hookName, hooks.DefaultPriority, func(_ context.Context, q page.MainQuery) {
		r.LimitQuery(q)
	})
}

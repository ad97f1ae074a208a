// Package requestctx carries per-request state through context.Context: the scoped
// logger and a record of how the page was rendered.
package requestctx

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type (
	loggerKey struct{}
	renderKey struct{}
)

var nop = zap.NewNop()

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = nop
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// Logger returns the request logger, or a no-op logger when none was attached.
func Logger(ctx context.Context) *zap.Logger {
	if logger, ok := loggerFrom(ctx); ok {
		return logger
	}
	return nop
}

// HasLogger reports whether ctx carries a logger.
func HasLogger(ctx context.Context) bool {
	_, ok := loggerFrom(ctx)
	return ok
}

func loggerFrom(ctx context.Context) (*zap.Logger, bool) {
	if ctx == nil {
		return nil, false
	}
	logger, ok := ctx.Value(loggerKey{}).(*zap.Logger)
	return logger, ok && logger != nil && logger != nop
}

// Render records the page type and template chosen for a request. Handlers fill it in
// and the access log reads it once the response is written.
type Render struct {
	mu       sync.Mutex
	pageType string
	template string
	headless bool
}

// WithRender attaches an empty Render to ctx.
func WithRender(ctx context.Context) (context.Context, *Render) {
	if ctx == nil {
		ctx = context.Background()
	}
	r := &Render{}
	return context.WithValue(ctx, renderKey{}, r), r
}

// RenderInfo returns the Render attached to ctx, or nil.
func RenderInfo(ctx context.Context) *Render {
	if ctx == nil {
		return nil
	}
	r, _ := ctx.Value(renderKey{}).(*Render)
	return r
}

// Set stores the outcome of template resolution. Safe on a nil receiver.
func (r *Render) Set(pageType, template string, headless bool) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.pageType, r.template, r.headless = pageType, template, headless
	r.mu.Unlock()
}

// Fields returns log fields for the recorded outcome; none when nothing was rendered.
func (r *Render) Fields() []zap.Field {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.template == "" {
		return nil
	}
	return []zap.Field{
		zap.String("page_type", r.pageType),
		zap.String("template", r.template),
		zap.Bool("headless", r.headless),
	}
}

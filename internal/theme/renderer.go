package theme

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"peptidology.com/storefront/internal/observability"
	"peptidology.com/storefront/internal/requestctx"
)

// ErrUnknownTemplate is returned when rendering a page template that does not exist.
var ErrUnknownTemplate = errors.New("theme: unknown template")

// Renderer owns the current template set. In dev mode the set is swapped by the
// watcher whenever a template changes.
type Renderer struct {
	dir string
	dev bool

	mu  sync.RWMutex
	set *Set
}

// NewRenderer parses the templates under dir.
func NewRenderer(dir string, dev bool) (*Renderer, error) {
	r := &Renderer{dir: dir, dev: dev}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Dir returns the templates directory.
func (r *Renderer) Dir() string { return r.dir }

// DevMode reports whether templates are watched for changes.
func (r *Renderer) DevMode() bool { return r.dev }

// Reload reparses the templates. On error the previous set stays active.
func (r *Renderer) Reload() error {
	set, err := Parse(os.DirFS(r.dir))
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.set = set
	r.mu.Unlock()
	return nil
}

func (r *Renderer) current() *Set {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.set
}

// Exists reports whether the page template name is defined.
func (r *Renderer) Exists(name string) bool {
	return r.current().Exists(name)
}

// First returns the first existing candidate.
func (r *Renderer) First(candidates ...string) string {
	return r.current().First(candidates...)
}

// Names lists page templates.
func (r *Renderer) Names() []string {
	return r.current().Names()
}

// Render executes the base layout with the page template name. Output is buffered so
// a failing template never produces a partial page.
func (r *Renderer) Render(ctx context.Context, w io.Writer, name string, data any) (err error) {
	ctx, span := observability.StartSpan(ctx, "theme.Render", attribute.String("template", name))
	defer func() { observability.EndSpan(span, err) }()

	t, ok := r.current().lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, BaseTemplate, data); err != nil {
		requestctx.Logger(ctx).Error("template execution failed", zap.String("template", name), zap.Error(err))
		return fmt.Errorf("theme: execute %s: %w", name, err)
	}
	_, err = buf.WriteTo(w)
	return err
}

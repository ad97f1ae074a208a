// Package shortcode expands bracketed placeholders such as [year] in editor-supplied text.
package shortcode

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Handler produces the replacement text for one shortcode occurrence.
type Handler func(ctx context.Context, attrs map[string]string) string

var (
	tagPattern  = regexp.MustCompile(`(\[?)\[([a-zA-Z_][a-zA-Z0-9_-]*)((?:\s+[a-zA-Z_][a-zA-Z0-9_-]*="[^"\]]*")*)\s*/?\](\]?)`)
	attrPattern = regexp.MustCompile(`([a-zA-Z_][a-zA-Z0-9_-]*)="([^"]*)"`)
)

// Registry maps shortcode names to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

// Site describes the values exposed by the built-in shortcodes.
type Site struct {
	Name string
	URL  string
	Now  func() time.Time
}

// Defaults registers [year], [site_name] and [site_url].
func Defaults(site Site) *Registry {
	now := site.Now
	if now == nil {
		now = time.Now
	}
	r := New()
	r.Register("year", func(context.Context, map[string]string) string {
		return strconv.Itoa(now().Year())
	})
	r.Register("site_name", func(context.Context, map[string]string) string { return site.Name })
	r.Register("site_url", func(context.Context, map[string]string) string { return site.URL })
	return r
}

// Register adds or replaces a handler. Names are case-insensitive.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[strings.ToLower(name)] = h
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[strings.ToLower(name)]
	return ok
}

// Expand replaces every registered shortcode in text. Unknown shortcodes are left as
// written and doubled brackets ([[year]]) escape to the literal tag.
func (r *Registry) Expand(ctx context.Context, text string) string {
	if r == nil || !strings.Contains(text, "[") {
		return text
	}
	return tagPattern.ReplaceAllStringFunc(text, func(match string) string {
		m := tagPattern.FindStringSubmatch(match)
		open, name, rawAttrs, closing := m[1], strings.ToLower(m[2]), m[3], m[4]
		r.mu.RLock()
		h, ok := r.handlers[name]
		r.mu.RUnlock()
		if !ok {
			return match
		}
		if open == "[" && closing == "]" {
			return match[1 : len(match)-1]
		}
		return open + h(ctx, parseAttrs(rawAttrs)) + closing
	})
}

func parseAttrs(raw string) map[string]string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	attrs := map[string]string{}
	for _, m := range attrPattern.FindAllStringSubmatch(raw, -1) {
		attrs[strings.ToLower(m[1])] = m[2]
	}
	return attrs
}

// Package theme loads the html/template set and renders pages through the shared base
// layout. Files under layouts/ and partials/ are shared; every other .tmpl file is a
// page template named by its path without extension ("single-product",
// "headless/single-product").
package theme

import (
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

// BaseTemplate is the layout entry point every page executes.
const BaseTemplate = "base"

const ext = ".tmpl"

var sharedDirs = []string{"layouts", "partials"}

// Set is a parsed template set: one clone of the shared templates per page.
type Set struct {
	pages map[string]*template.Template
}

// Funcs returns the template helpers available to every page.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"now":  time.Now,
		"join": strings.Join,
		"add":  func(a, b int) int { return a + b },
		"dict": dict,
	}
}

// Parse discovers and parses templates from fsys.
func Parse(fsys fs.FS) (*Set, error) {
	var shared, pages []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ext) {
			return nil
		}
		if isShared(p) {
			shared = append(shared, p)
		} else {
			pages = append(pages, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("theme: walk templates: %w", err)
	}
	if len(shared) == 0 || len(pages) == 0 {
		return nil, fmt.Errorf("theme: no layout or page templates found")
	}
	sort.Strings(shared)
	sort.Strings(pages)

	root, err := template.New("_root").Funcs(Funcs()).ParseFS(fsys, shared...)
	if err != nil {
		return nil, fmt.Errorf("theme: parse shared templates: %w", err)
	}
	if root.Lookup(BaseTemplate) == nil {
		return nil, fmt.Errorf("theme: %q template not defined", BaseTemplate)
	}
	set := &Set{pages: make(map[string]*template.Template, len(pages))}
	for _, p := range pages {
		clone, err := root.Clone()
		if err != nil {
			return nil, fmt.Errorf("theme: clone for %s: %w", p, err)
		}
		if _, err := clone.ParseFS(fsys, p); err != nil {
			return nil, fmt.Errorf("theme: parse %s: %w", p, err)
		}
		set.pages[strings.TrimSuffix(p, ext)] = clone
	}
	return set, nil
}

func isShared(p string) bool {
	dir, _, _ := strings.Cut(path.Clean(p), "/")
	for _, s := range sharedDirs {
		if dir == s {
			return true
		}
	}
	return false
}

// Exists reports whether a page template is defined.
func (s *Set) Exists(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.pages[name]
	return ok
}

// First returns the first candidate that exists, or "" when none does.
func (s *Set) First(candidates ...string) string {
	for _, c := range candidates {
		if s.Exists(c) {
			return c
		}
	}
	return ""
}

// Names lists page templates in sorted order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.pages))
	for n := range s.pages {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (s *Set) lookup(name string) (*template.Template, bool) {
	if s == nil {
		return nil, false
	}
	t, ok := s.pages[name]
	return t, ok
}

func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
		}
		m[k] = kv[i+1]
	}
	return m, nil
}

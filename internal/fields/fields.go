// Package fields models CMS field sets: the site-wide Option set and the per-post field
// groups attached to products and pages. Raw values (decoded from YAML, JSON or SQLite)
// are normalised once here so view builders only deal with typed optionals.
package fields

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Scope identifies a field set. OptionsScope is the site-wide Option set; "post:<id>"
// scopes belong to products and "page:<slug>" scopes to static pages.
type Scope string

// OptionsScope is the site-wide configuration scope.
const OptionsScope Scope = "options"

// PostScope returns the scope for a post or product identifier.
func PostScope(id int64) Scope {
	return Scope("post:" + strconv.FormatInt(id, 10))
}

// PageScope returns the scope for a static page slug.
func PageScope(slug string) Scope {
	return Scope("page:" + strings.Trim(strings.TrimSpace(strings.ToLower(slug)), "/"))
}

// PageSlug extracts the slug of a page scope.
func (s Scope) PageSlug() (string, bool) {
	slug, ok := strings.CutPrefix(string(s), "page:")
	if !ok || !validSlug(slug) {
		return "", false
	}
	return slug, true
}

// PostID extracts the identifier of a per-post scope.
func (s Scope) PostID() (int64, bool) {
	raw, ok := strings.CutPrefix(string(s), "post:")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ParseScope validates a scope string ("options", "post:<id>" or "page:<slug>").
func ParseScope(raw string) (Scope, error) {
	s := Scope(strings.TrimSpace(strings.ToLower(raw)))
	if s == OptionsScope {
		return s, nil
	}
	if _, ok := s.PostID(); ok {
		return s, nil
	}
	if _, ok := s.PageSlug(); ok {
		return s, nil
	}
	return "", fmt.Errorf("fields: invalid scope %q", raw)
}

func validSlug(slug string) bool {
	if slug == "" || len(slug) > 200 {
		return false
	}
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// Set is a read-only view over one field group.
type Set struct {
	values map[string]any
}

// New wraps raw decoded values. Nested maps are normalised to map[string]any so YAML
// and JSON sources behave the same.
func New(values map[string]any) Set {
	if len(values) == 0 {
		return Set{}
	}
	out := make(map[string]any, len(values))
	for k, v := range values {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		out[key] = normalize(v)
	}
	return Set{values: out}
}

// Empty reports whether the set holds no fields.
func (s Set) Empty() bool { return len(s.values) == 0 }

// Keys returns the field names in sorted order.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Raw returns a shallow copy of the underlying values.
func (s Set) Raw() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Has reports whether key holds a non-empty value.
func (s Set) Has(key string) bool {
	v, ok := s.values[key]
	return ok && !isEmpty(v)
}

// String returns the trimmed string form of a scalar field; non-scalars yield "".
func (s Set) String(key string) string {
	switch v := s.values[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Int returns an integer field, accepting numeric strings.
func (s Set) Int(key string) (int64, bool) {
	switch v := s.values[key].(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// Bool returns a boolean field; ACF true/false fields arrive as bools, "1" or "0".
func (s Set) Bool(key string) bool {
	switch v := s.values[key].(type) {
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true
		}
	}
	return false
}

// Group returns a nested field group.
func (s Set) Group(key string) Set {
	if m, ok := s.values[key].(map[string]any); ok {
		return Set{values: m}
	}
	return Set{}
}

// List returns a repeater field as ordered rows. Rows that are not objects are skipped.
func (s Set) List(key string) []Set {
	items, ok := s.values[key].([]any)
	if !ok || len(items) == 0 {
		return nil
	}
	rows := make([]Set, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		rows = append(rows, Set{values: m})
	}
	return rows
}

// Strings returns a list field of scalars (or of single-key rows) as strings.
func (s Set) Strings(key string) []string {
	items, ok := s.values[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		row := Set{values: map[string]any{"v": item}}
		if v := row.String("v"); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Image returns the image stored at key. ACF image fields may be returned as an array
// (url/alt/width/height) or as a bare URL; anything else is treated as absent.
func (s Set) Image(key string) (Image, bool) {
	return imageFrom(s.values[key])
}

// Link returns the link stored at key (ACF link array or bare URL).
func (s Set) Link(key string) (Link, bool) {
	switch v := s.values[key].(type) {
	case string:
		u := strings.TrimSpace(v)
		if u == "" {
			return Link{}, false
		}
		return Link{URL: u}, true
	case map[string]any:
		row := Set{values: v}
		u := row.String("url")
		if u == "" {
			return Link{}, false
		}
		return Link{URL: u, Title: row.String("title"), Target: row.String("target")}, true
	}
	return Link{}, false
}

// Image is a validated image reference.
type Image struct {
	URL    string
	Alt    string
	Width  int
	Height int
}

// Link is a validated link reference.
type Link struct {
	URL    string
	Title  string
	Target string
}

func imageFrom(v any) (Image, bool) {
	switch img := v.(type) {
	case string:
		u := strings.TrimSpace(img)
		if u == "" {
			return Image{}, false
		}
		return Image{URL: u}, true
	case map[string]any:
		row := Set{values: img}
		u := row.String("url")
		if u == "" {
			return Image{}, false
		}
		w, _ := row.Int("width")
		h, _ := row.Int("height")
		return Image{URL: u, Alt: row.String("alt"), Width: int(w), Height: int(h)}, true
	}
	return Image{}, false
}

func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	default:
		return v
	}
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	case bool:
		return !val
	}
	return false
}

package cms

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"peptidology.com/storefront/internal/fields"
)

const (
	defaultContentDir = "content"
	fieldsSubdir      = "fields"
)

// FileStore reads field sets from a content directory:
//
//	<dir>/fields/options.yaml
//	<dir>/fields/post-<id>.yaml
//	<dir>/fields/page-<slug>.yaml | page-<slug>.md
//
// Markdown files carry their fields as YAML front matter; the body is exposed as the
// "content" field with "content_format" set to "markdown".
type FileStore struct {
	dir string
}

// NewFileStore constructs a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = defaultContentDir
	}
	return &FileStore{dir: dir}
}

// Dir returns the configured content directory.
func (s *FileStore) Dir() string { return s.dir }

// Fields implements Store.
func (s *FileStore) Fields(_ context.Context, scope fields.Scope) (fields.Set, error) {
	base, err := scopeFileBase(scope)
	if err != nil {
		return fields.Set{}, err
	}
	root := filepath.Join(s.dir, fieldsSubdir)
	for _, ext := range []string{".yaml", ".yml", ".md"} {
		set, err := readFieldFile(filepath.Join(root, base+ext))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return set, err
	}
	return fields.Set{}, ErrNotFound
}

// Scopes lists every scope present in the content directory.
func (s *FileStore) Scopes() ([]fields.Scope, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, fieldsSubdir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	seen := map[fields.Scope]bool{}
	var scopes []fields.Scope
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		switch ext {
		case ".yaml", ".yml", ".md":
		default:
			continue
		}
		scope, ok := scopeFromFileBase(strings.TrimSuffix(name, ext))
		if !ok || seen[scope] {
			continue
		}
		seen[scope] = true
		scopes = append(scopes, scope)
	}
	return scopes, nil
}

func scopeFileBase(scope fields.Scope) (string, error) {
	if scope == fields.OptionsScope {
		return "options", nil
	}
	if id, ok := scope.PostID(); ok {
		return "post-" + strconv.FormatInt(id, 10), nil
	}
	if slug, ok := scope.PageSlug(); ok {
		return "page-" + slug, nil
	}
	return "", fmt.Errorf("cms: unsupported scope %q", scope)
}

func scopeFromFileBase(base string) (fields.Scope, bool) {
	switch {
	case base == "options":
		return fields.OptionsScope, true
	case strings.HasPrefix(base, "post-"):
		scope, err := fields.ParseScope("post:" + strings.TrimPrefix(base, "post-"))
		return scope, err == nil
	case strings.HasPrefix(base, "page-"):
		scope, err := fields.ParseScope("page:" + strings.TrimPrefix(base, "page-"))
		return scope, err == nil
	}
	return "", false
}

func readFieldFile(path string) (fields.Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fields.Set{}, ErrNotFound
		}
		return fields.Set{}, err
	}

	raw := map[string]any{}
	if filepath.Ext(path) == ".md" {
		fm, body := splitFrontMatter(string(data))
		if strings.TrimSpace(fm) != "" {
			if err := yaml.Unmarshal([]byte(fm), &raw); err != nil {
				return fields.Set{}, fmt.Errorf("cms: parse front matter %s: %w", path, err)
			}
		}
		if strings.TrimSpace(body) != "" {
			raw["content"] = body
			raw["content_format"] = "markdown"
		}
		return fields.New(raw), nil
	}

	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fields.Set{}, fmt.Errorf("cms: parse %s: %w", path, err)
	}
	return fields.New(raw), nil
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if len(lines) == 0 {
		return "", ""
	}
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

package cms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"peptidology.com/storefront/internal/fields"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestFileStoreReadsYAMLAndMarkdown(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "fields", "options.yaml"), `
contact_number: "+1 555 0100"
footer_logo:
  url: /media/logo.svg
  alt: Peptidology
policy_highlight:
  - text: Free shipping
  - text: Lab tested
`)
	writeFile(t, filepath.Join(dir, "fields", "page-our-company.md"), `---
banner_title: Our Company
---
We make **research peptides**.
`)
	writeFile(t, filepath.Join(dir, "fields", "post-42.yml"), "competition_choice: Common\n")
	writeFile(t, filepath.Join(dir, "fields", "notes.txt"), "ignored")

	store := NewFileStore(dir)
	ctx := context.Background()

	opts, err := store.Fields(ctx, fields.OptionsScope)
	require.NoError(t, err)
	require.Equal(t, "+1 555 0100", opts.String("contact_number"))
	logo, ok := opts.Image("footer_logo")
	require.True(t, ok)
	require.Equal(t, "/media/logo.svg", logo.URL)
	require.Len(t, opts.List("policy_highlight"), 2)

	page, err := store.Fields(ctx, fields.PageScope("our-company"))
	require.NoError(t, err)
	require.Equal(t, "Our Company", page.String("banner_title"))
	require.Equal(t, "We make **research peptides**.", page.String("content"))
	require.Equal(t, "markdown", page.String("content_format"))

	post, err := store.Fields(ctx, fields.PostScope(42))
	require.NoError(t, err)
	require.Equal(t, "Common", post.String("competition_choice"))

	_, err = store.Fields(ctx, fields.PostScope(7))
	require.ErrorIs(t, err, ErrNotFound)

	scopes, err := store.Scopes()
	require.NoError(t, err)
	require.ElementsMatch(t, []fields.Scope{fields.OptionsScope, fields.PageScope("our-company"), fields.PostScope(42)}, scopes)
}

func TestFileStoreReportsParseErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "fields", "options.yaml"), "footer_logo: [unclosed\n")
	_, err := NewFileStore(dir).Fields(context.Background(), fields.OptionsScope)
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNotFound))
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "fields.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.Fields(ctx, fields.OptionsScope)
	require.ErrorIs(t, err, ErrNotFound)

	set := fields.New(map[string]any{
		"quality_tests": []any{
			map[string]any{"title": "Purity"},
			map[string]any{"title": "Sterility"},
		},
		"quality_choice": "Custom",
	})
	require.NoError(t, store.Put(ctx, fields.PostScope(9), set))
	require.NoError(t, store.Put(ctx, fields.OptionsScope, fields.New(map[string]any{"site_name": "Peptidology"})))
	require.NoError(t, store.Put(ctx, fields.OptionsScope, fields.New(map[string]any{"site_name": "Peptidology Labs"})))

	got, err := store.Fields(ctx, fields.PostScope(9))
	require.NoError(t, err)
	rows := got.List("quality_tests")
	require.Len(t, rows, 2)
	require.Equal(t, "Sterility", rows[1].String("title"))

	opts, err := store.Fields(ctx, fields.OptionsScope)
	require.NoError(t, err)
	require.Equal(t, "Peptidology Labs", opts.String("site_name"))

	scopes, err := store.Scopes(ctx)
	require.NoError(t, err)
	require.Equal(t, []fields.Scope{fields.OptionsScope, fields.PostScope(9)}, scopes)
}

func TestClientFetchesFields(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/fields/options":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"scope":  "options",
				"fields": map[string]any{"contact_number": "555", "footer_logo": map[string]any{"url": "/l.png", "width": 120}},
			})
		case "/api/fields/post:5":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL+"/api/", time.Second)
	ctx := context.Background()

	set, err := client.Fields(ctx, fields.OptionsScope)
	require.NoError(t, err)
	require.Equal(t, "555", set.String("contact_number"))
	logo, ok := set.Image("footer_logo")
	require.True(t, ok)
	require.Equal(t, 120, logo.Width)

	_, err = client.Fields(ctx, fields.PostScope(6))
	require.ErrorIs(t, err, ErrNotFound)

	_, err = client.Fields(ctx, fields.PostScope(5))
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNotFound))
}

func TestCachedStoreHonoursTTL(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	inner := StoreFunc(func(_ context.Context, scope fields.Scope) (fields.Set, error) {
		calls.Add(1)
		if scope == fields.PostScope(1) {
			return fields.Set{}, errors.New("backend down")
		}
		return fields.New(map[string]any{"n": int(calls.Load())}), nil
	})

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := Cached(inner, time.Minute).(*cachedStore)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	first, err := store.Fields(ctx, fields.OptionsScope)
	require.NoError(t, err)
	second, err := store.Fields(ctx, fields.OptionsScope)
	require.NoError(t, err)
	require.Equal(t, first.String("n"), second.String("n"))
	require.EqualValues(t, 1, calls.Load())

	now = now.Add(2 * time.Minute)
	third, err := store.Fields(ctx, fields.OptionsScope)
	require.NoError(t, err)
	require.Equal(t, "2", third.String("n"))

	_, err = store.Fields(ctx, fields.PostScope(1))
	require.Error(t, err)
	_, err = store.Fields(ctx, fields.PostScope(1))
	require.Error(t, err)
	require.EqualValues(t, 4, calls.Load(), "errors must not be cached")

	files := NewFileStore(t.TempDir())
	require.Same(t, files, Cached(files, 0))
}

func TestFieldsOrEmptyDegrades(t *testing.T) {
	t.Parallel()

	failing := StoreFunc(func(context.Context, fields.Scope) (fields.Set, error) {
		return fields.Set{}, errors.New("boom")
	})
	require.True(t, FieldsOrEmpty(context.Background(), failing, fields.OptionsScope).Empty())
	require.True(t, FieldsOrEmpty(context.Background(), nil, fields.OptionsScope).Empty())
}

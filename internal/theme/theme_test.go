package theme

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const baseLayout = `{{define "base"}}<body class="{{.Class}}">{{template "content" .}}{{template "footer" .}}</body>{{end}}`

func sampleFS() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.tmpl":             {Data: []byte(baseLayout)},
		"partials/footer.tmpl":          {Data: []byte(`{{define "footer"}}<footer>{{add 1 2}}</footer>{{end}}`)},
		"archive-product.tmpl":          {Data: []byte(`{{define "content"}}<ul class="products"></ul>{{end}}`)},
		"headless/archive-product.tmpl": {Data: []byte(`{{define "content"}}<div id="peptidology-products"></div>{{end}}`)},
		"page.tmpl":                     {Data: []byte(`{{define "content"}}{{with dict "a" .Class}}{{.a}}{{end}}{{end}}`)},
		"README.md":                     {Data: []byte("ignored")},
	}
}

func TestParseClonesPerPage(t *testing.T) {
	set, err := Parse(sampleFS())
	require.NoError(t, err)
	require.Equal(t, []string{"archive-product", "headless/archive-product", "page"}, set.Names())
	require.True(t, set.Exists("headless/archive-product"))
	require.False(t, set.Exists("headless/single-product"))
	require.False(t, set.Exists("layouts/base"))
	require.Equal(t, "page", set.First("page-our-company", "page", "index"))
	require.Empty(t, set.First("missing"))

	var nilSet *Set
	require.False(t, nilSet.Exists("page"))
}

func TestParseRequiresLayout(t *testing.T) {
	_, err := Parse(fstest.MapFS{"page.tmpl": {Data: []byte(`{{define "content"}}x{{end}}`)}})
	require.Error(t, err)

	_, err = Parse(fstest.MapFS{
		"layouts/other.tmpl": {Data: []byte(`{{define "other"}}{{end}}`)},
		"page.tmpl":          {Data: []byte(`{{define "content"}}x{{end}}`)},
	})
	require.ErrorContains(t, err, `"base" template not defined`)
}

func writeTree(t *testing.T, dir string, files fstest.MapFS) {
	t.Helper()
	for name, f := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, f.Data, 0o600))
	}
}

func TestRendererRendersThroughBase(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, sampleFS())
	r, err := NewRenderer(dir, false)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(context.Background(), &buf, "headless/archive-product", map[string]any{"Class": "archive"}))
	require.Equal(t, `<body class="archive"><div id="peptidology-products"></div><footer>3</footer></body>`, buf.String())

	buf.Reset()
	require.NoError(t, r.Render(context.Background(), &buf, "page", map[string]any{"Class": "x<y"}))
	require.Contains(t, buf.String(), "x&lt;y")

	err = r.Render(context.Background(), &buf, "nope", nil)
	require.True(t, errors.Is(err, ErrUnknownTemplate))
}

func TestRendererKeepsPreviousSetOnReloadError(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, sampleFS())
	r, err := NewRenderer(dir, true)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.tmpl"), []byte(`{{define "content"}}{{.Broken`), 0o600))
	require.Error(t, r.Reload())
	require.True(t, r.Exists("page"))
}

func TestWatchReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeTree(t, dir, sampleFS())
	r, err := NewRenderer(dir, true)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Watch(ctx, nil) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "headless", "single-product.tmpl"), []byte(`{{define "content"}}shell{{end}}`), 0o600))

	require.Eventually(t, func() bool { return r.Exists("headless/single-product") }, 5*time.Second, 50*time.Millisecond)

	var buf bytes.Buffer
	require.NoError(t, r.Render(context.Background(), &buf, "headless/single-product", map[string]any{"Class": ""}))
	require.True(t, strings.Contains(buf.String(), "shell"))

	cancel()
	require.NoError(t, <-done)
}

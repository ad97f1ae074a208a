package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"peptidology.com/storefront/internal/cms"
	"peptidology.com/storefront/internal/config"
	"peptidology.com/storefront/internal/fields"
)

func execute(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	if env == nil {
		env = map[string]string{}
	}
	if _, ok := env["STOREFRONT_LOG_LEVEL"]; !ok {
		env["STOREFRONT_LOG_LEVEL"] = "error"
	}
	cmd := newRootCmd(config.WithEnvMap(env), config.WithoutSystemEnv(), config.WithEnvFile(""))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSeedCopiesContentIntoSQLite(t *testing.T) {
	db := filepath.Join(t.TempDir(), "fields.db")

	out, err := execute(t, nil, "seed", "--content", "../../content", "--db", db)
	require.NoError(t, err)
	require.Equal(t, "seeded 5 scopes into "+db+"\n", out)

	store, err := cms.OpenSQLite(context.Background(), db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	scopes, err := store.Scopes(context.Background())
	require.NoError(t, err)
	require.Equal(t, []fields.Scope{"options", "page:home", "page:our-company", "post:101", "post:102"}, scopes)

	company, err := store.Fields(context.Background(), fields.PageScope("our-company"))
	require.NoError(t, err)
	require.Equal(t, "Science first", company.String("banner_title"))
	require.Equal(t, "markdown", company.String("content_format"))
	require.Len(t, company.List("content_blocks"), 4)
}

func TestFieldsPrintsYAMLFromConfiguredDriver(t *testing.T) {
	db := filepath.Join(t.TempDir(), "fields.db")
	_, err := execute(t, nil, "seed", "--content", "../../content", "--db", db)
	require.NoError(t, err)

	env := map[string]string{"STOREFRONT_CMS_DRIVER": "sqlite", "STOREFRONT_CMS_SQLITE_PATH": db}
	out, err := execute(t, env, "fields", "post:101")
	require.NoError(t, err)
	require.Contains(t, out, "competition_choice: Common\n")
	require.Contains(t, out, "quality_choice: Custom\n")

	out, err = execute(t, map[string]string{"STOREFRONT_CMS_CONTENT_DIR": "../../content"}, "fields", "options")
	require.NoError(t, err)
	require.Contains(t, out, "site_name: Peptidology\n")

	_, err = execute(t, env, "fields", "post:999")
	require.ErrorContains(t, err, "no fields stored for post:999")

	_, err = execute(t, env, "fields", "page:../etc")
	require.Error(t, err)
}

func TestResolveReportsTemplateAndBodyClass(t *testing.T) {
	cases := []struct {
		name     string
		env      map[string]string
		path     string
		template string
		shell    bool
		marker   bool
		perPage  string
	}{
		{name: "shop", path: "/shop/", template: "headless/archive-product", shell: true, marker: true, perPage: "1"},
		{name: "category", path: "/product-category/peptides/page/2", template: "headless/archive-product", shell: true, marker: true, perPage: "12"},
		{name: "product", path: "/product/bpc-157", template: "headless/single-product", shell: true, marker: true},
		{name: "checkout", path: "/checkout", template: "page-checkout"},
		{name: "search", path: "/?s=water", template: "search", perPage: "12"},
		{name: "disabled", env: map[string]string{"STOREFRONT_HEADLESS_ENABLED": "false"}, path: "/shop", template: "archive-product", perPage: "12"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := execute(t, tc.env, "resolve", "--templates", "../../templates", tc.path)
			require.NoError(t, err)

			lines := map[string]string{}
			for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
				key, value, _ := strings.Cut(line, ":")
				lines[key] = strings.TrimSpace(value)
			}
			require.Equal(t, tc.template, lines["template"])
			if tc.shell {
				require.Equal(t, "true", lines["shell"])
			} else {
				require.Equal(t, "false", lines["shell"])
			}
			require.Equal(t, tc.marker, strings.Contains(lines["body_class"], "peptidology-headless-mode"))
			require.Equal(t, tc.perPage, lines["per_page"])
		})
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"peptidology.com/storefront/internal/catalog"
	"peptidology.com/storefront/internal/cms"
	"peptidology.com/storefront/internal/config"
	"peptidology.com/storefront/internal/fields"
	"peptidology.com/storefront/internal/headless"
	"peptidology.com/storefront/internal/observability"
	"peptidology.com/storefront/internal/page"
	"peptidology.com/storefront/internal/requestctx"
	"peptidology.com/storefront/internal/theme"
)

type cli struct {
	envFile  string
	loadOpts []config.Option
	cfg      config.Config
}

func newRootCmd(loadOpts ...config.Option) *cobra.Command {
	c := &cli{loadOpts: loadOpts}
	root := &cobra.Command{
		Use:   "storectl",
		Short: "Inspect and seed storefront content",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			opts := append([]config.Option{config.WithEnvFile(c.envFile)}, c.loadOpts...)
			cfg, err := config.Load(ctx, opts...)
			if err != nil {
				return err
			}
			c.cfg = cfg
			logger, err := observability.NewLogger(cfg.Log.Level, observability.Console())
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			cmd.SetContext(requestctx.WithLogger(ctx, logger.Named("storectl")))
			return nil
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "path to a .env file with local overrides")

	root.AddCommand(c.seedCmd(), c.fieldsCmd(), c.resolveCmd())
	return root
}

func (c *cli) seedCmd() *cobra.Command {
	var contentDir, dbPath string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Copy file-based field sets into the SQLite store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if contentDir == "" {
				contentDir = c.cfg.CMS.ContentDir
			}
			if dbPath == "" {
				dbPath = c.cfg.CMS.SQLitePath
			}
			files := cms.NewFileStore(contentDir)
			scopes, err := files.Scopes()
			if err != nil {
				return fmt.Errorf("list scopes: %w", err)
			}
			db, err := cms.OpenSQLite(ctx, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			logger := requestctx.Logger(ctx)
			for _, scope := range scopes {
				set, err := files.Fields(ctx, scope)
				if err != nil {
					return fmt.Errorf("read %s: %w", scope, err)
				}
				if err := db.Put(ctx, scope, set); err != nil {
					return err
				}
				logger.Debug("seeded scope", zap.String("scope", string(scope)), zap.Int("fields", len(set.Keys())))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d scopes into %s\n", len(scopes), dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&contentDir, "content", "", "content directory (defaults to STOREFRONT_CMS_CONTENT_DIR)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (defaults to STOREFRONT_CMS_SQLITE_PATH)")
	return cmd
}

func (c *cli) fieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields <scope>",
		Short: "Print a field set (options, post:<id> or page:<slug>) as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := fields.ParseScope(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store, closer, err := cms.Open(ctx, c.cfg.CMS)
			if err != nil {
				return err
			}
			defer closer.Close()

			set, err := store.Fields(ctx, scope)
			if errors.Is(err, cms.ErrNotFound) {
				return fmt.Errorf("no fields stored for %s", scope)
			}
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(set.Raw()); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func (c *cli) resolveCmd() *cobra.Command {
	var templatesDir string
	cmd := &cobra.Command{
		Use:   "resolve <path>",
		Short: "Show the template and body classes a request path resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := url.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parse path: %w", err)
			}
			if templatesDir == "" {
				templatesDir = c.cfg.Theme.TemplatesDir
			}
			renderer, err := theme.NewRenderer(templatesDir, false)
			if err != nil {
				return err
			}
			hooks := &page.Hooks{}
			headless.New(c.cfg.Headless, renderer).Register(hooks)

			pc := page.Classify(u.Path, u.Query())
			original := renderer.First(pc.TemplateCandidates()...)
			resolved := hooks.TemplateInclude.Apply(ctx, original, pc)
			classes := hooks.BodyClass.Apply(ctx, pc.BodyClasses(), page.Resolved{Context: pc, Template: resolved})

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "type:       %s\n", pc.Type)
			fmt.Fprintf(out, "candidates: %s\n", strings.Join(pc.TemplateCandidates(), ", "))
			fmt.Fprintf(out, "template:   %s\n", resolved)
			fmt.Fprintf(out, "shell:      %t\n", headless.IsShell(resolved))
			fmt.Fprintf(out, "body_class: %s\n", strings.Join(classes, " "))
			if pc.IsProductListing() || pc.IsSearch {
				q := catalog.Query{Page: pc.CurrentPage(), PerPage: c.cfg.Catalog.PerPage, Main: true}
				hooks.PreGetPosts.Do(ctx, page.MainQuery{Context: pc, Query: &q})
				fmt.Fprintf(out, "per_page:   %d\n", q.PerPage)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&templatesDir, "templates", "", "templates directory (defaults to STOREFRONT_TEMPLATES_DIR)")
	return cmd
}

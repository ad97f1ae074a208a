package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"peptidology.com/storefront/internal/catalog"
	"peptidology.com/storefront/internal/cms"
	"peptidology.com/storefront/internal/config"
	"peptidology.com/storefront/internal/observability"
	"peptidology.com/storefront/internal/theme"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "web: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	envFile := flag.String("env-file", ".env", "path to a .env file with local overrides")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, config.WithEnvFile(*envFile))
	if err != nil {
		return err
	}

	var logOpts []observability.LoggerOption
	if cfg.Theme.DevMode {
		logOpts = append(logOpts, observability.Console())
	}
	logger, err := observability.NewLogger(cfg.Log.Level, logOpts...)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	fieldStore, closer, err := cms.Open(ctx, cfg.CMS)
	if err != nil {
		return fmt.Errorf("open cms: %w", err)
	}
	defer closer.Close()

	products, err := catalog.Open(cfg.Catalog)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}

	renderer, err := theme.NewRenderer(cfg.Theme.TemplatesDir, cfg.Theme.DevMode)
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	if cfg.Theme.DevMode {
		go func() {
			if err := renderer.Watch(ctx, logger.Named("theme")); err != nil {
				logger.Warn("template watcher stopped", zap.Error(err))
			}
		}()
	}

	s := newSite(cfg, logger, fieldStore, products, renderer)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           s.routes(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("web listening",
			zap.String("addr", srv.Addr),
			zap.Bool("dev_mode", cfg.Theme.DevMode),
			zap.Bool("headless", cfg.Headless.Enabled),
			zap.String("cms_driver", cfg.CMS.Driver),
			zap.String("catalog_driver", cfg.Catalog.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

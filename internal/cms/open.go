package cms

import (
	"context"
	"fmt"
	"io"

	"peptidology.com/storefront/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the Store selected by cfg. The returned closer releases driver resources.
func Open(ctx context.Context, cfg config.CMSConfig) (Store, io.Closer, error) {
	var (
		store  Store
		closer io.Closer = nopCloser{}
	)
	switch cfg.Driver {
	case "", "yaml":
		store = NewFileStore(cfg.ContentDir)
	case "sqlite":
		db, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		store, closer = db, db
	case "remote":
		store = NewClient(cfg.BaseURL, cfg.Timeout)
	default:
		return nil, nil, fmt.Errorf("cms: unknown driver %q", cfg.Driver)
	}
	return Cached(store, cfg.CacheTTL), closer, nil
}

package catalog

import (
	"fmt"

	"peptidology.com/storefront/internal/config"
)

// Open builds the Store selected by cfg.
func Open(cfg config.CatalogConfig) (Store, error) {
	switch cfg.Driver {
	case "", "static":
		return LoadStatic(cfg.FixturePath)
	case "woocommerce":
		return NewWooClient(cfg.BaseURL, cfg.ConsumerKey, cfg.ConsumerSecret), nil
	default:
		return nil, fmt.Errorf("catalog: unknown driver %q", cfg.Driver)
	}
}

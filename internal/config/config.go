package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile           = ".env"
	defaultPort              = "8080"
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 15 * time.Second
	defaultIdleTimeout       = 60 * time.Second
	defaultReadHeaderTimeout = 10 * time.Second
	defaultTemplatesDir      = "templates"
	defaultPublicDir         = "public"
	defaultSiteName          = "Peptidology"
	defaultCurrency          = "USD"
	defaultHeadlessBodyClass = "peptidology-headless-mode"
	defaultHeadlessAPIBase   = "/wp-json/wc/store/v1"
	defaultCMSDriver         = "yaml"
	defaultCMSContentDir     = "content"
	defaultCMSSQLitePath     = "storefront.db"
	defaultCMSTimeout        = 5 * time.Second
	defaultCatalogDriver     = "static"
	defaultCatalogFixture    = "content/catalog.yaml"
	defaultCatalogPerPage    = 12
	defaultRelatedLimit      = 4
	defaultLogLevel          = "info"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig
	Theme    ThemeConfig
	Headless HeadlessConfig
	CMS      CMSConfig
	Catalog  CatalogConfig
	Log      LogConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
}

// Addr returns the listen address for the configured port.
func (s ServerConfig) Addr() string {
	if strings.HasPrefix(s.Port, ":") {
		return s.Port
	}
	return ":" + s.Port
}

// ThemeConfig locates templates and public assets.
type ThemeConfig struct {
	TemplatesDir string
	PublicDir    string
	DevMode      bool
	SiteName     string
	SiteURL      string
	Currency     string
}

// HeadlessConfig toggles the headless shells.
type HeadlessConfig struct {
	Enabled   bool
	BodyClass string
	APIBase   string
}

// CMSConfig selects the field store backing Option sets and per-post fields.
type CMSConfig struct {
	Driver     string
	ContentDir string
	SQLitePath string
	BaseURL    string
	Timeout    time.Duration
	CacheTTL   time.Duration
}

// CatalogConfig selects the product catalog source.
type CatalogConfig struct {
	Driver         string
	FixturePath    string
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	PerPage        int
	RelatedLimit   int
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level string
}

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env overrides
// and environment variables.
func Load(_ context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	// Cloud Run injects PORT; the prefixed key wins when both are set.
	port := stringWithDefault(lookup, "PORT", defaultPort)

	cfg := Config{
		Server: ServerConfig{
			Port:              stringWithDefault(lookup, "STOREFRONT_PORT", port),
			ReadTimeout:       durationWithDefault(lookup, "STOREFRONT_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:      durationWithDefault(lookup, "STOREFRONT_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:       durationWithDefault(lookup, "STOREFRONT_IDLE_TIMEOUT", defaultIdleTimeout),
			ReadHeaderTimeout: durationWithDefault(lookup, "STOREFRONT_READ_HEADER_TIMEOUT", defaultReadHeaderTimeout),
		},
		Theme: ThemeConfig{
			TemplatesDir: stringWithDefault(lookup, "STOREFRONT_TEMPLATES_DIR", defaultTemplatesDir),
			PublicDir:    stringWithDefault(lookup, "STOREFRONT_PUBLIC_DIR", defaultPublicDir),
			DevMode:      boolWithDefault(lookup, "STOREFRONT_DEV", false),
			SiteName:     stringWithDefault(lookup, "STOREFRONT_SITE_NAME", defaultSiteName),
			SiteURL:      strings.TrimRight(stringWithDefault(lookup, "STOREFRONT_SITE_URL", ""), "/"),
			Currency:     strings.ToUpper(stringWithDefault(lookup, "STOREFRONT_CURRENCY", defaultCurrency)),
		},
		Headless: HeadlessConfig{
			Enabled:   boolWithDefault(lookup, "STOREFRONT_HEADLESS_ENABLED", true),
			BodyClass: stringWithDefault(lookup, "STOREFRONT_HEADLESS_BODY_CLASS", defaultHeadlessBodyClass),
			APIBase:   stringWithDefault(lookup, "STOREFRONT_HEADLESS_API_BASE", defaultHeadlessAPIBase),
		},
		CMS: CMSConfig{
			Driver:     strings.ToLower(stringWithDefault(lookup, "STOREFRONT_CMS_DRIVER", defaultCMSDriver)),
			ContentDir: stringWithDefault(lookup, "STOREFRONT_CMS_CONTENT_DIR", defaultCMSContentDir),
			SQLitePath: stringWithDefault(lookup, "STOREFRONT_CMS_SQLITE_PATH", defaultCMSSQLitePath),
			BaseURL:    strings.TrimRight(stringWithDefault(lookup, "STOREFRONT_CMS_BASE_URL", ""), "/"),
			Timeout:    durationWithDefault(lookup, "STOREFRONT_CMS_TIMEOUT", defaultCMSTimeout),
			CacheTTL:   durationWithDefault(lookup, "STOREFRONT_CMS_CACHE_TTL", 0),
		},
		Catalog: CatalogConfig{
			Driver:         strings.ToLower(stringWithDefault(lookup, "STOREFRONT_CATALOG_DRIVER", defaultCatalogDriver)),
			FixturePath:    stringWithDefault(lookup, "STOREFRONT_CATALOG_FIXTURE", defaultCatalogFixture),
			BaseURL:        strings.TrimRight(stringWithDefault(lookup, "STOREFRONT_WOO_BASE_URL", ""), "/"),
			ConsumerKey:    stringWithDefault(lookup, "STOREFRONT_WOO_CONSUMER_KEY", ""),
			ConsumerSecret: stringWithDefault(lookup, "STOREFRONT_WOO_CONSUMER_SECRET", ""),
			PerPage:        intWithDefault(lookup, "STOREFRONT_CATALOG_PER_PAGE", defaultCatalogPerPage),
			RelatedLimit:   intWithDefault(lookup, "STOREFRONT_RELATED_LIMIT", defaultRelatedLimit),
		},
		Log: LogConfig{
			Level: strings.ToLower(stringWithDefault(lookup, "STOREFRONT_LOG_LEVEL", defaultLogLevel)),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var invalid []string
	if strings.TrimSpace(cfg.Server.Port) == "" {
		invalid = append(invalid, "Server.Port")
	}
	if strings.TrimSpace(cfg.Theme.TemplatesDir) == "" {
		invalid = append(invalid, "Theme.TemplatesDir")
	}
	if cfg.Headless.Enabled && strings.TrimSpace(cfg.Headless.BodyClass) == "" {
		invalid = append(invalid, "Headless.BodyClass")
	}
	switch cfg.CMS.Driver {
	case "yaml":
		if strings.TrimSpace(cfg.CMS.ContentDir) == "" {
			invalid = append(invalid, "CMS.ContentDir")
		}
	case "sqlite":
		if strings.TrimSpace(cfg.CMS.SQLitePath) == "" {
			invalid = append(invalid, "CMS.SQLitePath")
		}
	case "remote":
		if cfg.CMS.BaseURL == "" {
			invalid = append(invalid, "CMS.BaseURL")
		}
	default:
		invalid = append(invalid, "CMS.Driver")
	}
	if cfg.CMS.CacheTTL < 0 {
		invalid = append(invalid, "CMS.CacheTTL")
	}
	switch cfg.Catalog.Driver {
	case "static":
		if strings.TrimSpace(cfg.Catalog.FixturePath) == "" {
			invalid = append(invalid, "Catalog.FixturePath")
		}
	case "woocommerce":
		if cfg.Catalog.BaseURL == "" {
			invalid = append(invalid, "Catalog.BaseURL")
		}
	default:
		invalid = append(invalid, "Catalog.Driver")
	}
	if cfg.Catalog.PerPage <= 0 {
		invalid = append(invalid, "Catalog.PerPage")
	}
	if cfg.Catalog.RelatedLimit < 0 {
		invalid = append(invalid, "Catalog.RelatedLimit")
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return &ValidationError{fields: invalid}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		values[key] = strings.Trim(value, "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

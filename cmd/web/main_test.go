package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"peptidology.com/storefront/internal/catalog"
	"peptidology.com/storefront/internal/cms"
	"peptidology.com/storefront/internal/config"
	"peptidology.com/storefront/internal/fields"
	"peptidology.com/storefront/internal/testutil"
	"peptidology.com/storefront/internal/theme"
)

const headlessMarker = "peptidology-headless-mode"

type testOptions struct {
	templatesDir string
	fields       cms.Store
	catalog      catalog.Store
	configure    func(*config.Config)
}

func testConfig() config.Config {
	return config.Config{
		Theme: config.ThemeConfig{
			TemplatesDir: "../../templates",
			PublicDir:    "../../public",
			SiteName:     "Peptidology",
			SiteURL:      "https://peptidology.example",
			Currency:     "USD",
		},
		Headless: config.HeadlessConfig{
			Enabled:   true,
			BodyClass: headlessMarker,
			APIBase:   "/wp-json/wc/store/v1",
		},
		CMS: config.CMSConfig{Driver: "yaml", ContentDir: "../../content"},
		Catalog: config.CatalogConfig{
			Driver:       "static",
			FixturePath:  "../../content/catalog.yaml",
			PerPage:      12,
			RelatedLimit: 4,
		},
	}
}

// newTestRouter builds the router main() serves, against the real templates and content.
func newTestRouter(t *testing.T, opts testOptions) http.Handler {
	t.Helper()
	cfg := testConfig()
	if opts.configure != nil {
		opts.configure(&cfg)
	}
	if opts.templatesDir != "" {
		cfg.Theme.TemplatesDir = opts.templatesDir
	}
	renderer, err := theme.NewRenderer(cfg.Theme.TemplatesDir, false)
	require.NoError(t, err)
	products := opts.catalog
	if products == nil {
		products, err = catalog.Open(cfg.Catalog)
		require.NoError(t, err)
	}
	store := opts.fields
	if store == nil {
		store = cms.NewFileStore(cfg.CMS.ContentDir)
	}
	return newSite(cfg, nil, store, products, renderer).routes()
}

func get(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, *goquery.Document) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec, testutil.ParseHTML(t, rec.Body.Bytes())
}

func bodyClasses(doc *goquery.Document) []string {
	class, _ := doc.Find("body").Attr("class")
	return strings.Fields(class)
}

func TestHealthzOK(t *testing.T) {
	srv := newTestRouter(t, testOptions{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", strings.TrimSpace(rec.Body.String()))
}

func TestShopServesHeadlessShell(t *testing.T) {
	srv := newTestRouter(t, testOptions{})
	for _, target := range []string{"/shop/", "/product-category/peptides/", "/product-tag/bestseller"} {
		rec, doc := get(t, srv, target)
		require.Equal(t, http.StatusOK, rec.Code, target)

		shell := doc.Find("#peptidology-products.peptidology-headless-archive")
		require.Equal(t, 1, shell.Length(), target)
		endpoint, _ := shell.Attr("data-endpoint")
		require.Equal(t, "/wp-json/wc/store/v1/products", endpoint)
		require.Zero(t, doc.Find("li.product").Length(), "shell must not render products")
		require.Contains(t, bodyClasses(doc), headlessMarker, target)
	}

	_, doc := get(t, srv, "/product-category/peptides")
	category, _ := doc.Find("#peptidology-products").Attr("data-category")
	require.Equal(t, "peptides", category)
}

func TestShopFallsBackWhenShellMissing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.CopyFS(dir, os.DirFS("../../templates")))
	require.NoError(t, os.Remove(filepath.Join(dir, "headless", "archive-product.tmpl")))

	srv := newTestRouter(t, testOptions{templatesDir: dir})
	rec, doc := get(t, srv, "/shop")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, doc.Find("#peptidology-products").Length())
	// The shop query limit still applies while headless mode is on.
	require.Equal(t, 1, doc.Find("ul.products li.product").Length())
	require.NotContains(t, bodyClasses(doc), headlessMarker)
	tmpl, _ := doc.Find("body").Attr("data-template")
	require.Equal(t, "archive-product", tmpl)

	// The product shell still exists in the copy.
	_, doc = get(t, srv, "/product/tb-500")
	require.Equal(t, 1, doc.Find(".peptidology-headless-product").Length())
}

func TestTraditionalArchiveWithPagination(t *testing.T) {
	srv := newTestRouter(t, testOptions{configure: func(c *config.Config) {
		c.Headless.Enabled = false
		c.Catalog.PerPage = 2
	}})

	rec, doc := get(t, srv, "/shop")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2, doc.Find("ul.products li.product").Length())
	require.NotContains(t, bodyClasses(doc), headlessMarker)
	require.Equal(t, []string{"/shop/page/2/"}, testutil.Attrs(doc, "a.next", "href"))
	require.Equal(t, "1", strings.TrimSpace(doc.Find(".page-numbers.current").Text()))

	rec, doc = get(t, srv, "/shop/page/2/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2, doc.Find("ul.products li.product").Length())
	require.Equal(t, []string{"/shop/"}, testutil.Attrs(doc, "a.prev", "href"))

	rec, _ = get(t, srv, "/shop/page/9")
	require.Equal(t, http.StatusNotFound, rec.Code)

	_, doc = get(t, srv, "/product-tag/bestseller")
	require.Equal(t, "Bestseller", strings.TrimSpace(doc.Find("h1.page-title").Text()))
	require.Contains(t, testutil.Texts(doc, "li.product .price ins"), "$44.00")
}

func TestUnknownTermsAndProductsAre404(t *testing.T) {
	srv := newTestRouter(t, testOptions{})
	for _, target := range []string{"/product-category/capsules", "/product-tag/nope", "/product/missing", "/no-such-page", "/a/b/c"} {
		rec, doc := get(t, srv, target)
		require.Equal(t, http.StatusNotFound, rec.Code, target)
		require.Equal(t, 1, doc.Find("section.error-404").Length(), target)
		require.Contains(t, bodyClasses(doc), "error404", target)
	}
}

func TestProductShellWithCommonComparison(t *testing.T) {
	srv := newTestRouter(t, testOptions{})
	rec, doc := get(t, srv, "/product/bpc-157/")
	require.Equal(t, http.StatusOK, rec.Code)

	shell := doc.Find("#product-101")
	require.Equal(t, 1, shell.Length())
	require.True(t, shell.HasClass("product-101"))
	require.True(t, shell.HasClass("peptidology-headless-product"))
	id, _ := shell.Attr("data-product-id")
	require.Equal(t, "101", id)
	require.Zero(t, doc.Find(".product_title").Length(), "shell must not render product details")
	require.Contains(t, bodyClasses(doc), headlessMarker)

	// Policy highlights come from the Option set; rows without an icon use the default.
	require.Equal(t, 3, doc.Find(".policy-item").Length())
	require.Equal(t, "/assets/img/policy-default.svg", testutil.Attrs(doc, ".policy-item img", "src")[1])
	require.Equal(t, "Unopened vials can be returned within 30 days.", testutil.Attrs(doc, ".policy-item", "data-tooltip")[2])

	// competition_choice is Common, so the shared comparison renders.
	section := doc.Find(".competition-section")
	require.Equal(t, "options", section.AttrOr("data-source", ""))
	require.Equal(t, "Peptidology vs. the rest", strings.TrimSpace(section.Find(".competition-title").Text()))
	require.Equal(t,
		[]string{"feature feature-pink", "feature feature-sky", "feature feature-orange", "feature feature-blue", "feature feature-blue"},
		testutil.Attrs(doc, ".competition-us li", "class"))

	// quality_choice is Custom: two numbered tests from the product's own fields.
	require.Equal(t, "BPC-157 lab results", strings.TrimSpace(doc.Find(".quality-title").Text()))
	require.Equal(t, []string{"1", "2"}, testutil.Texts(doc, ".accordion-number"))

	// Explicit related product first, then category siblings.
	require.Equal(t, []string{"Bacteriostatic Water 10ml", "TB-500 5mg", "GHK-Cu 50mg"}, testutil.Texts(doc, ".related .woocommerce-loop-product__title"))

	// Section order is fixed.
	html, err := doc.Html()
	require.NoError(t, err)
	positions := []int{
		strings.Index(html, "peptidology-headless-product"),
		strings.Index(html, "policy-highlights"),
		strings.Index(html, "competition-section"),
		strings.Index(html, "quality-section"),
		strings.Index(html, "related products"),
	}
	for i := 1; i < len(positions); i++ {
		require.Greater(t, positions[i], positions[i-1], "section %d out of order", i)
	}
}

func TestProductCustomComparisonCommonQuality(t *testing.T) {
	srv := newTestRouter(t, testOptions{})
	_, doc := get(t, srv, "/product/tb-500")

	require.Equal(t, "post", doc.Find(".competition-section").AttrOr("data-source", ""))
	require.Equal(t, "TB-500 compared", strings.TrimSpace(doc.Find(".competition-title").Text()))
	require.Equal(t, []string{"Unknown fill weight"}, testutil.Texts(doc, ".competition-them li"))
	require.Equal(t, "options", doc.Find(".quality-section").AttrOr("data-source", ""))
	require.Equal(t, []string{"1", "2", "3"}, testutil.Texts(doc, ".accordion-number"))
}

func TestProductWithoutFieldsOmitsSections(t *testing.T) {
	srv := newTestRouter(t, testOptions{})
	_, doc := get(t, srv, "/product/ghk-cu")

	// No per-post fields: the flags are absent, so the empty post fields are used.
	require.Zero(t, doc.Find(".competition-section").Length())
	require.Zero(t, doc.Find(".quality-section").Length())
	require.Equal(t, 3, doc.Find(".policy-item").Length())
}

func TestTraditionalProductPage(t *testing.T) {
	srv := newTestRouter(t, testOptions{configure: func(c *config.Config) { c.Headless.Enabled = false }})
	rec, doc := get(t, srv, "/product/bpc-157")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, doc.Find(".peptidology-headless-product").Length())
	require.Equal(t, "BPC-157 5mg", strings.TrimSpace(doc.Find("h1.product_title").Text()))
	require.Equal(t, "$49.00", strings.TrimSpace(doc.Find(".summary .price del").Text()))
	require.Equal(t, 1, doc.Find(".competition-section").Length())
	require.NotContains(t, bodyClasses(doc), headlessMarker)

	var ld []string
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		ld = append(ld, s.Text())
	})
	require.Len(t, ld, 2)
	require.Contains(t, ld[1], `"@type":"Product"`)
}

func TestTransactionalPagesKeepOriginalTemplate(t *testing.T) {
	srv := newTestRouter(t, testOptions{})
	cases := map[string]string{
		"/cart":                       "page-cart",
		"/checkout":                   "page-checkout",
		"/checkout/order-received/55": "page-checkout",
		"/my-account/orders":          "page-my-account",
	}
	for target, want := range cases {
		rec, doc := get(t, srv, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		require.Equal(t, want, doc.Find("body").AttrOr("data-template", ""), target)
		require.NotContains(t, bodyClasses(doc), headlessMarker, target)
		require.Equal(t, "noindex, follow", doc.Find(`meta[name="robots"]`).AttrOr("content", ""), target)
	}
}

func TestFooterRendersOptionSet(t *testing.T) {
	srv := newTestRouter(t, testOptions{})
	_, doc := get(t, srv, "/")

	footer := doc.Find("footer#colophon")
	require.Equal(t, "/assets/img/logo-white.svg", footer.Find(".footer-logo img").AttrOr("src", ""))
	require.Equal(t, "https://peptidology.example/", footer.Find("a.footer-logo").AttrOr("href", ""))
	require.Equal(t, "tel:+15125550147", footer.Find(".footer-phone a").AttrOr("href", ""))
	require.Equal(t, "mailto:support@peptidology.example", footer.Find(".footer-email a").AttrOr("href", ""))
	require.Equal(t, "footer-menu", footer.Find("ul#footer-menu-1").AttrOr("class", ""))
	require.Equal(t, 3, footer.Find("ul#footer-menu-2 li").Length())
	copyright := strings.TrimSpace(footer.Find(".footer-copyright").Text())
	require.Equal(t, "© "+strconv.Itoa(time.Now().Year())+" Peptidology. All rights reserved.", copyright)
}

func TestFooterWithoutLogo(t *testing.T) {
	files := cms.NewFileStore("../../content")
	noLogo := cms.StoreFunc(func(ctx context.Context, scope fields.Scope) (fields.Set, error) {
		set, err := files.Fields(ctx, scope)
		if err != nil || scope != fields.OptionsScope {
			return set, err
		}
		raw := set.Raw()
		delete(raw, "footer_logo")
		return fields.New(raw), nil
	})
	srv := newTestRouter(t, testOptions{fields: noLogo})
	rec, doc := get(t, srv, "/our-company")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, doc.Find(".footer-logo").Length())
	require.Zero(t, doc.Find("footer img").Not(".footer-social img").Length())
	require.Equal(t, 1, doc.Find(".footer-text").Length())
}

func TestCompanyPageAlternatesBlocks(t *testing.T) {
	srv := newTestRouter(t, testOptions{})
	rec, doc := get(t, srv, "/our-company/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "page-our-company", doc.Find("body").AttrOr("data-template", ""))
	require.Equal(t, "Science first", strings.TrimSpace(doc.Find(".banner-title").Text()))
	require.Equal(t,
		[]string{"company-block left-block", "company-block right-block", "company-block left-block", "company-block right-block"},
		testutil.Attrs(doc, "section.company-block", "class"))
	require.Contains(t, doc.Find(".entry-content").Text(), "research-grade")
	require.Equal(t, 1, doc.Find(".company-block.right-block img").Length())
}

func TestSearchResults(t *testing.T) {
	srv := newTestRouter(t, testOptions{})
	for _, target := range []string{"/?s=water", "/search/water"} {
		rec, doc := get(t, srv, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		items := doc.Find("article.search-result")
		require.Equal(t, 1, items.Length(), target)
		require.Equal(t, "Bacteriostatic Water 10ml", strings.TrimSpace(items.Find(".entry-title").Text()))
		require.Equal(t, "Product", strings.TrimSpace(items.Find(".search-type").Text()))
		require.Equal(t, "Sterile diluent for reconstitution.", strings.TrimSpace(items.Find(".entry-summary").Text()))
		require.Contains(t, bodyClasses(doc), "search-results")
		require.NotContains(t, bodyClasses(doc), headlessMarker)
	}

	_, doc := get(t, srv, "/?s=zzz")
	require.Equal(t, 1, doc.Find(".no-results").Length())
}

func TestFrontPage(t *testing.T) {
	srv := newTestRouter(t, testOptions{})
	rec, doc := get(t, srv, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, doc.Find(".front-intro h2").Text(), "Research peptides you can trust")
	require.Equal(t, 4, doc.Find(".front-products li.product").Length())
	require.Equal(t, "Peptidology", doc.Find("title").Text())
	require.Contains(t, bodyClasses(doc), "home")
	require.Equal(t, []string{"/shop/", "/our-company/"}, testutil.Attrs(doc, "#primary-menu a", "href"))
}

func TestAssetsServed(t *testing.T) {
	srv := newTestRouter(t, testOptions{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/img/policy-default.svg", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("ETag"))
}

func TestTitleFromSlug(t *testing.T) {
	cases := map[string]string{
		"our-company":  "Our Company",
		"lab_supplies": "Lab Supplies",
		"bpc-157":      "Bpc 157",
		"":             "",
	}
	for slug, want := range cases {
		require.Equal(t, want, titleFromSlug(slug), slug)
	}
}

// unavailableCatalog fails every listing, like a WooCommerce outage.
type unavailableCatalog struct {
	catalog.Store
}

func (unavailableCatalog) Products(context.Context, catalog.Query) (catalog.Result, error) {
	return catalog.Result{}, errors.New("woocommerce: 503 Service Unavailable")
}

func TestCatalogOutageKeepsFooter(t *testing.T) {
	files := cms.NewFileStore("../../content")
	// Reads like the remote and SQLite stores: slow, and aborted when ctx is cancelled.
	slowFields := cms.StoreFunc(func(ctx context.Context, scope fields.Scope) (fields.Set, error) {
		select {
		case <-time.After(20 * time.Millisecond):
		case <-ctx.Done():
			return fields.Set{}, ctx.Err()
		}
		return files.Fields(ctx, scope)
	})
	static, err := catalog.LoadStatic("../../content/catalog.yaml")
	require.NoError(t, err)

	srv := newTestRouter(t, testOptions{
		fields:    slowFields,
		catalog:   unavailableCatalog{Store: static},
		configure: func(c *config.Config) { c.Headless.Enabled = false },
	})
	rec, doc := get(t, srv, "/shop/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, doc.Find("li.product").Length())
	require.Equal(t, 1, doc.Find(".woocommerce-info").Length())
	require.Equal(t, 1, doc.Find(".footer-logo").Length())
	require.Equal(t, 1, doc.Find(".footer-contact").Length())
	require.Equal(t, 1, doc.Find("ul#footer-menu-1").Length())
}

// Package page classifies storefront requests into page types. The predicates mirror the
// conditional tags a theme branches on; each is an independent flag so callers can test
// combinations (a checkout endpoint nested under a product URL, for example).
package page

import (
	"net/url"
	"path"
	"strconv"
	"strings"
)

// Type is the primary page type of a request.
type Type string

const (
	TypeFront           Type = "front"
	TypeShop            Type = "shop"
	TypeProductCategory Type = "product_category"
	TypeProductTag      Type = "product_tag"
	TypeProduct         Type = "product"
	TypeCart            Type = "cart"
	TypeCheckout        Type = "checkout"
	TypeAccount         Type = "account"
	TypeSearch          Type = "search"
	TypePage            Type = "page"
	TypeNotFound        Type = "404"
)

// Context holds the page-type predicates for one request.
type Context struct {
	Type   Type
	Path   string
	Slug   string
	Search string
	Paged  int

	IsFrontPage       bool
	IsShop            bool
	IsProductCategory bool
	IsProductTag      bool
	IsProduct         bool
	IsCart            bool
	IsCheckout        bool
	IsAccount         bool
	IsSearch          bool
	IsPage            bool
	Is404             bool
}

// IsTransactional reports whether the request belongs to checkout, cart or account flows.
func (c Context) IsTransactional() bool {
	return c.IsCheckout || c.IsCart || c.IsAccount
}

// IsProductListing reports whether the request lists products (shop, category or tag).
func (c Context) IsProductListing() bool {
	return c.IsShop || c.IsProductCategory || c.IsProductTag
}

// CurrentPage returns the 1-based page number.
func (c Context) CurrentPage() int {
	if c.Paged < 1 {
		return 1
	}
	return c.Paged
}

// New builds a Context of the given type with the matching predicate set.
func New(t Type, slug string) Context {
	c := Context{Type: t, Slug: slug}
	switch t {
	case TypeFront:
		c.IsFrontPage = true
	case TypeShop:
		c.IsShop = true
	case TypeProductCategory:
		c.IsProductCategory = true
	case TypeProductTag:
		c.IsProductTag = true
	case TypeProduct:
		c.IsProduct = true
	case TypeCart:
		c.IsCart, c.IsPage = true, true
	case TypeCheckout:
		c.IsCheckout, c.IsPage = true, true
	case TypeAccount:
		c.IsAccount, c.IsPage = true, true
	case TypeSearch:
		c.IsSearch = true
	case TypePage:
		c.IsPage = true
	case TypeNotFound:
		c.Is404 = true
	}
	return c
}

// Classify maps a request path and query onto a Context using WooCommerce's default
// permalink structure.
func Classify(rawPath string, query url.Values) Context {
	clean := path.Clean("/" + strings.TrimSpace(rawPath))
	parts := strings.Split(strings.Trim(clean, "/"), "/")
	if len(parts) == 1 && parts[0] == "" {
		parts = nil
	}
	paged, parts := splitPaged(parts)
	if p, err := strconv.Atoi(query.Get("paged")); err == nil && p > 0 {
		paged = p
	}

	var c Context
	switch {
	case len(parts) == 0 && strings.TrimSpace(query.Get("s")) != "":
		c = New(TypeSearch, "")
		c.Search = strings.TrimSpace(query.Get("s"))
	case len(parts) == 0:
		c = New(TypeFront, "")
	case parts[0] == "search" && len(parts) <= 2:
		c = New(TypeSearch, "")
		c.Search = strings.TrimSpace(query.Get("s"))
		if len(parts) == 2 {
			c.Search = strings.ReplaceAll(parts[1], "+", " ")
		}
	case parts[0] == "shop" && len(parts) == 1:
		c = New(TypeShop, "")
	case parts[0] == "product-category" && len(parts) >= 2:
		// Nested categories resolve to the deepest slug.
		c = New(TypeProductCategory, parts[len(parts)-1])
	case parts[0] == "product-tag" && len(parts) == 2:
		c = New(TypeProductTag, parts[1])
	case parts[0] == "product" && len(parts) == 2:
		c = New(TypeProduct, parts[1])
	case parts[0] == "cart" && len(parts) == 1:
		c = New(TypeCart, "cart")
	case parts[0] == "checkout":
		c = New(TypeCheckout, "checkout")
	case parts[0] == "my-account":
		c = New(TypeAccount, "my-account")
	case len(parts) == 1 && validSlug(parts[0]):
		c = New(TypePage, parts[0])
	default:
		c = New(TypeNotFound, "")
	}
	c.Path = clean
	c.Paged = paged
	return c
}

// TemplateCandidates lists template names from most to least specific.
func (c Context) TemplateCandidates() []string {
	switch c.Type {
	case TypeFront:
		return []string{"front-page", "index"}
	case TypeShop:
		return []string{"archive-product", "index"}
	case TypeProductCategory:
		return []string{"taxonomy-product_cat-" + c.Slug, "taxonomy-product_cat", "archive-product", "index"}
	case TypeProductTag:
		return []string{"taxonomy-product_tag-" + c.Slug, "taxonomy-product_tag", "archive-product", "index"}
	case TypeProduct:
		return []string{"single-product", "index"}
	case TypeCart, TypeCheckout, TypeAccount, TypePage:
		return []string{"page-" + c.Slug, "page", "index"}
	case TypeSearch:
		return []string{"search", "index"}
	default:
		return []string{"404", "index"}
	}
}

// BodyClasses returns the base body classes for the page type.
func (c Context) BodyClasses() []string {
	classes := []string{}
	switch c.Type {
	case TypeFront:
		classes = append(classes, "home")
	case TypeShop:
		classes = append(classes, "archive", "post-type-archive", "post-type-archive-product", "woocommerce-shop")
	case TypeProductCategory:
		classes = append(classes, "archive", "tax-product_cat", "term-"+c.Slug)
	case TypeProductTag:
		classes = append(classes, "archive", "tax-product_tag", "term-"+c.Slug)
	case TypeProduct:
		classes = append(classes, "single", "single-product", "postid-"+c.Slug)
	case TypeSearch:
		classes = append(classes, "search", "search-results")
	case TypeNotFound:
		classes = append(classes, "error404")
	}
	if c.IsPage {
		classes = append(classes, "page", "page-"+c.Slug)
	}
	if c.IsCart {
		classes = append(classes, "woocommerce-cart")
	}
	if c.IsCheckout {
		classes = append(classes, "woocommerce-checkout")
	}
	if c.IsAccount {
		classes = append(classes, "woocommerce-account")
	}
	if c.IsProductListing() || c.IsProduct || c.IsTransactional() {
		classes = append(classes, "woocommerce", "woocommerce-page")
	}
	if c.Paged > 1 {
		classes = append(classes, "paged", "paged-"+strconv.Itoa(c.Paged))
	}
	return classes
}

func splitPaged(parts []string) (int, []string) {
	n := len(parts)
	if n >= 2 && parts[n-2] == "page" {
		if p, err := strconv.Atoi(parts[n-1]); err == nil && p > 0 {
			return p, parts[:n-2]
		}
	}
	return 0, parts
}

func validSlug(slug string) bool {
	if slug == "" {
		return false
	}
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

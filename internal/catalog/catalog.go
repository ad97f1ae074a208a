// Package catalog provides read access to the product catalog that backs the
// traditional shop templates and the related-products section.
package catalog

import (
	"context"
	"errors"
	"strings"

	"peptidology.com/storefront/internal/fields"
)

// ErrNotFound is returned when a product cannot be located.
var ErrNotFound = errors.New("catalog: not found")

// Product is the storefront view of a catalog product.
type Product struct {
	ID               int64
	Slug             string
	Name             string
	Type             string
	Permalink        string
	Price            string
	RegularPrice     string
	SalePrice        string
	StockStatus      string
	ShortDescription string
	Description      string
	Image            fields.Image
	HasImage         bool
	Categories       []Term
	Tags             []Term
	RelatedIDs       []int64
}

// OnSale reports whether a sale price is active.
func (p Product) OnSale() bool {
	return p.SalePrice != "" && p.SalePrice != p.RegularPrice
}

// InStock reports whether the product can be purchased.
func (p Product) InStock() bool {
	return p.StockStatus == "" || p.StockStatus == "instock"
}

// InCategory reports whether the product is assigned to the category slug.
func (p Product) InCategory(slug string) bool {
	return hasTerm(p.Categories, slug)
}

// HasTag reports whether the product carries the tag slug.
func (p Product) HasTag(slug string) bool {
	return hasTerm(p.Tags, slug)
}

// Term is a product category or tag.
type Term struct {
	ID   int64
	Slug string
	Name string
}

// Query selects a page of products. Zero values mean "no filter".
type Query struct {
	Category string
	Tag      string
	Search   string
	Page     int
	PerPage  int
	// Main marks the request's primary listing query.
	Main bool
}

// Normalize clamps paging values.
func (q Query) Normalize(defaultPerPage int) Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage <= 0 {
		q.PerPage = defaultPerPage
	}
	if q.PerPage <= 0 {
		q.PerPage = 12
	}
	q.Category = strings.TrimSpace(strings.ToLower(q.Category))
	q.Tag = strings.TrimSpace(strings.ToLower(q.Tag))
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Result is one page of products.
type Result struct {
	Products   []Product
	Total      int
	TotalPages int
	Page       int
}

// Store reads products.
type Store interface {
	ProductBySlug(ctx context.Context, slug string) (Product, error)
	Products(ctx context.Context, q Query) (Result, error)
	Related(ctx context.Context, productID int64, limit int) ([]Product, error)
}

func hasTerm(terms []Term, slug string) bool {
	slug = strings.TrimSpace(strings.ToLower(slug))
	for _, t := range terms {
		if t.Slug == slug {
			return true
		}
	}
	return false
}

func totalPages(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

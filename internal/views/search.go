package views

import (
	"peptidology.com/storefront/internal/catalog"
	"peptidology.com/storefront/internal/fields"
	"peptidology.com/storefront/internal/richtext"
)

// SearchItem is one search result.
type SearchItem struct {
	Title     string
	Permalink string
	Thumbnail *fields.Image
	TypeLabel string
	Excerpt   string
}

// typeLabels maps content types to their singular display names.
var typeLabels = map[string]string{
	"simple":   "Product",
	"variable": "Product",
	"grouped":  "Product",
	"external": "Product",
	"page":     "Page",
	"post":     "Post",
}

// TypeLabel returns the display label for a content type.
func TypeLabel(kind string) string {
	if label, ok := typeLabels[kind]; ok {
		return label
	}
	return "Product"
}

// BuildSearchItem maps a product to a search result. The excerpt prefers the short
// description and falls back to the full description.
func BuildSearchItem(p catalog.Product) SearchItem {
	item := SearchItem{
		Title:     p.Name,
		Permalink: p.Permalink,
		TypeLabel: TypeLabel(p.Type),
	}
	src := p.ShortDescription
	if richtext.Text(src) == "" {
		src = p.Description
	}
	item.Excerpt = richtext.Excerpt(src, richtext.DefaultExcerptWords)
	if p.HasImage {
		img := p.Image
		if img.Alt == "" {
			img.Alt = p.Name
		}
		item.Thumbnail = &img
	}
	return item
}

// Search is the search results page.
type Search struct {
	Query      string
	Total      int
	Items      []SearchItem
	Pagination *Pagination
}

// BuildSearch maps a catalog result to the search page.
func BuildSearch(query string, res catalog.Result, link PageLinker) Search {
	s := Search{Query: query, Total: res.Total}
	for _, p := range res.Products {
		s.Items = append(s.Items, BuildSearchItem(p))
	}
	if pg, ok := BuildPagination(res.Page, res.TotalPages, link); ok {
		s.Pagination = &pg
	}
	return s
}

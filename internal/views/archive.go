package views

import (
	"html/template"
	"strings"

	"peptidology.com/storefront/internal/catalog"
)

// Archive is the product listing for the shop, a category or a tag.
type Archive struct {
	Title       string
	Description template.HTML
	Headless    bool
	Shell       ArchiveShell
	Products    []ProductCard
	Pagination  *Pagination
}

// ArchiveShell carries the data attributes the client-side renderer reads.
type ArchiveShell struct {
	Endpoint string
	Category string
	Tag      string
}

// ArchiveInput collects what BuildArchive needs from the request.
type ArchiveInput struct {
	Title       string
	Description template.HTML
	Headless    bool
	APIBase     string
	Category    string
	Tag         string
	Result      catalog.Result
	Currency    string
	Link        PageLinker
}

// BuildArchive builds the listing view. Headless listings carry no products.
func BuildArchive(in ArchiveInput) Archive {
	a := Archive{
		Title:       in.Title,
		Description: in.Description,
		Headless:    in.Headless,
		Shell: ArchiveShell{
			Endpoint: strings.TrimSuffix(in.APIBase, "/") + "/products",
			Category: in.Category,
			Tag:      in.Tag,
		},
	}
	if in.Headless {
		return a
	}
	a.Products = BuildProductCards(in.Result.Products, in.Currency)
	if pg, ok := BuildPagination(in.Result.Page, in.Result.TotalPages, in.Link); ok {
		a.Pagination = &pg
	}
	return a
}

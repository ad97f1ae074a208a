package views

import (
	"html/template"

	"peptidology.com/storefront/internal/catalog"
	"peptidology.com/storefront/internal/fields"
	"peptidology.com/storefront/internal/richtext"
)

// Home is the front page: editor intro, policy strip and the newest products.
type Home struct {
	Intro    template.HTML
	Policies []PolicyHighlight
	Products []ProductCard
}

// BuildHome builds the front page from the Option set, the home page fields and a
// product listing.
func BuildHome(options, post fields.Set, products []catalog.Product, currency string) Home {
	return Home{
		Intro:    richtext.Render(post.String("content"), post.String("content_format")),
		Policies: BuildPolicyHighlights(options),
		Products: BuildProductCards(products, currency),
	}
}

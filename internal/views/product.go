package views

import (
	"html/template"
	"strconv"

	"peptidology.com/storefront/internal/catalog"
	"peptidology.com/storefront/internal/fields"
	"peptidology.com/storefront/internal/richtext"
)

// DefaultPolicyIcon is shown when a policy highlight has no icon of its own.
const DefaultPolicyIcon = "/assets/img/policy-default.svg"

// featureColors is the rotation applied to the "us" column; positions past the end
// reuse the last colour.
var featureColors = []string{"pink", "sky", "orange", "blue"}

// PolicyHighlight is one entry of the policy strip.
type PolicyHighlight struct {
	Icon    fields.Image
	Text    string
	Tooltip string
}

// BuildPolicyHighlights reads the policy_highlight repeater from the Option set in
// stored order. Rows without text are skipped.
func BuildPolicyHighlights(options fields.Set) []PolicyHighlight {
	rows := options.List("policy_highlight")
	out := make([]PolicyHighlight, 0, len(rows))
	for _, row := range rows {
		text := row.String("text")
		if text == "" {
			continue
		}
		icon, ok := row.Image("icon")
		if !ok {
			icon = fields.Image{URL: DefaultPolicyIcon}
		}
		if icon.Alt == "" {
			icon.Alt = text
		}
		out = append(out, PolicyHighlight{
			Icon:    icon,
			Text:    text,
			Tooltip: richtext.Text(row.String("description")),
		})
	}
	return out
}

// Comparison is the "us versus them" table.
type Comparison struct {
	Source fields.Source
	Title  string
	Image  fields.Image
	Logo   *fields.Image
	Us     Column
	Them   Column
}

// Column is one side of the comparison table.
type Column struct {
	Title    string
	Features []Feature
}

// Feature is one comparison row. Color is empty for the competitor column.
type Feature struct {
	Text  string
	Color string
}

// FeatureColor returns the colour for the 0-based position i.
func FeatureColor(i int) string {
	if i < 0 {
		i = 0
	}
	if i >= len(featureColors) {
		i = len(featureColors) - 1
	}
	return featureColors[i]
}

// BuildComparison resolves the comparison source from competition_choice and returns
// false unless both the title and the image are present.
func BuildComparison(options, post fields.Set) (Comparison, bool) {
	src, source := fields.Select(options, post, "competition_choice")
	title := src.String("competition_title")
	img, ok := src.Image("competition_image")
	if title == "" || !ok {
		return Comparison{}, false
	}
	c := Comparison{
		Source: source,
		Title:  title,
		Image:  img,
		Us:     Column{Title: src.String("competition_us_title")},
		Them:   Column{Title: src.String("competition_them_title")},
	}
	if logo, ok := src.Image("competition_logo"); ok {
		c.Logo = &logo
	}
	c.Us.Features = featureRows(src, "competition_us_features", true)
	c.Them.Features = featureRows(src, "competition_them_features", false)
	return c, true
}

// featureRows accepts both repeater rows ({feature: ...}) and plain string lists. Blank
// rows are skipped but keep their slot, so colours follow the position in the stored list.
func featureRows(src fields.Set, key string, colored bool) []Feature {
	items, _ := src.Raw()[key].([]any)
	var out []Feature
	for i, item := range items {
		var text string
		switch v := item.(type) {
		case map[string]any:
			text = fields.New(v).String("feature")
		default:
			text = fields.New(map[string]any{"feature": v}).String("feature")
		}
		if text == "" {
			continue
		}
		f := Feature{Text: text}
		if colored {
			f.Color = FeatureColor(i)
		}
		out = append(out, f)
	}
	return out
}

// Quality is the quality-test section: an optional header and a numbered accordion.
type Quality struct {
	Source fields.Source
	Header *QualityHeader
	Tests  []QualityTest
}

// QualityHeader is shown only when title and image are both present.
type QualityHeader struct {
	Title       string
	Image       fields.Image
	Description template.HTML
}

// QualityTest is one accordion panel; Number is 1-based in source order.
type QualityTest struct {
	Number      int
	ID          string
	Title       string
	Description template.HTML
}

// BuildQuality resolves the quality source from quality_choice. It returns false when
// neither the header nor any test would render.
func BuildQuality(options, post fields.Set) (Quality, bool) {
	src, source := fields.Select(options, post, "quality_choice")
	q := Quality{Source: source}
	title := src.String("quality_title")
	if img, ok := src.Image("quality_image"); ok && title != "" {
		q.Header = &QualityHeader{
			Title:       title,
			Image:       img,
			Description: richtext.Sanitize(src.String("quality_description")),
		}
	}
	for _, row := range src.List("quality_tests") {
		n := len(q.Tests) + 1
		q.Tests = append(q.Tests, QualityTest{
			Number:      n,
			ID:          "quality-test-" + strconv.Itoa(n),
			Title:       row.String("title"),
			Description: richtext.Sanitize(row.String("description")),
		})
	}
	return q, q.Header != nil || len(q.Tests) > 0
}

// ProductCard is the grid representation of a product.
type ProductCard struct {
	ID           int64
	Name         string
	Permalink    string
	Image        *fields.Image
	Price        string
	RegularPrice string
	OnSale       bool
	InStock      bool
}

// BuildProductCard maps a catalog product to a card.
func BuildProductCard(p catalog.Product, currency string) ProductCard {
	c := ProductCard{
		ID:        p.ID,
		Name:      p.Name,
		Permalink: p.Permalink,
		Price:     FormatPrice(p.Price, currency),
		OnSale:    p.OnSale(),
		InStock:   p.InStock(),
	}
	if c.OnSale {
		c.RegularPrice = FormatPrice(p.RegularPrice, currency)
	}
	if p.HasImage {
		img := p.Image
		if img.Alt == "" {
			img.Alt = p.Name
		}
		c.Image = &img
	}
	return c
}

// BuildProductCards maps products in order.
func BuildProductCards(products []catalog.Product, currency string) []ProductCard {
	if len(products) == 0 {
		return nil
	}
	out := make([]ProductCard, 0, len(products))
	for _, p := range products {
		out = append(out, BuildProductCard(p, currency))
	}
	return out
}

// ProductSections are the server-rendered blocks shown under a product, in order.
type ProductSections struct {
	Policies   []PolicyHighlight
	Comparison *Comparison
	Quality    *Quality
	Related    []ProductCard
}

// BuildProductSections assembles every optional product section.
func BuildProductSections(options, post fields.Set, related []catalog.Product, currency string) ProductSections {
	s := ProductSections{
		Policies: BuildPolicyHighlights(options),
		Related:  BuildProductCards(related, currency),
	}
	if c, ok := BuildComparison(options, post); ok {
		s.Comparison = &c
	}
	if q, ok := BuildQuality(options, post); ok {
		s.Quality = &q
	}
	return s
}

// ProductDetail is the traditional single-product body.
type ProductDetail struct {
	Card             ProductCard
	ShortDescription template.HTML
	Description      template.HTML
	Categories       []catalog.Term
	Tags             []catalog.Term
}

// BuildProductDetail maps the catalog product for the traditional template.
func BuildProductDetail(p catalog.Product, currency string) ProductDetail {
	return ProductDetail{
		Card:             BuildProductCard(p, currency),
		ShortDescription: richtext.Sanitize(p.ShortDescription),
		Description:      richtext.Sanitize(p.Description),
		Categories:       p.Categories,
		Tags:             p.Tags,
	}
}

// ProductPage is the view model for both product templates.
type ProductPage struct {
	ID       int64
	Headless bool
	Detail   ProductDetail
	Sections ProductSections
}

package views

import (
	"html/template"

	"peptidology.com/storefront/internal/fields"
	"peptidology.com/storefront/internal/richtext"
)

// Block layout classes alternate starting on the left.
const (
	LayoutLeft  = "left-block"
	LayoutRight = "right-block"
)

// Company is the "our company" page.
type Company struct {
	Title   string
	Banner  *Banner
	Content template.HTML
	Blocks  []CompanyBlock
}

// Banner is the optional page hero.
type Banner struct {
	Title string
	Image *fields.Image
	Text  template.HTML
}

// CompanyBlock is one entry of content_blocks.
type CompanyBlock struct {
	Position    int
	Layout      string
	Title       string
	Description template.HTML
	Image       *fields.Image
}

// BlockLayout returns the layout class for a 1-based position.
func BlockLayout(position int) string {
	if position%2 == 1 {
		return LayoutLeft
	}
	return LayoutRight
}

// BuildCompany builds the company page from its page field set.
func BuildCompany(post fields.Set, title string) Company {
	c := Company{
		Title:   title,
		Content: richtext.Render(post.String("content"), post.String("content_format")),
	}
	bannerTitle := post.String("banner_title")
	bannerImg, hasImg := post.Image("banner_image")
	bannerText := richtext.Sanitize(post.String("banner_text"))
	if bannerTitle != "" || hasImg || bannerText != "" {
		c.Banner = &Banner{Title: bannerTitle, Text: bannerText}
		if hasImg {
			c.Banner.Image = &bannerImg
		}
	}
	for _, row := range post.List("content_blocks") {
		pos := len(c.Blocks) + 1
		b := CompanyBlock{
			Position:    pos,
			Layout:      BlockLayout(pos),
			Title:       row.String("title"),
			Description: richtext.Sanitize(row.String("description")),
		}
		if img, ok := row.Image("image"); ok {
			if img.Alt == "" {
				img.Alt = b.Title
			}
			b.Image = &img
		}
		c.Blocks = append(c.Blocks, b)
	}
	return c
}

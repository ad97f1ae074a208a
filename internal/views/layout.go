package views

import (
	"strings"

	"peptidology.com/storefront/internal/nav"
	"peptidology.com/storefront/internal/seo"
)

// Layout is the data passed to the base template. Content holds the page-specific view
// model (Archive, ProductPage, Company, Search or nil).
type Layout struct {
	Title       string
	SiteName    string
	SiteURL     string
	Path        string
	Template    string
	BodyClass   string
	Meta        seo.Meta
	PrimaryMenu *nav.Menu
	Breadcrumbs []nav.Crumb
	Footer      Footer
	Content     any
}

// BodyClassAttr joins classes for the body element, dropping blanks and duplicates
// while keeping first-seen order.
func BodyClassAttr(classes []string) string {
	seen := make(map[string]struct{}, len(classes))
	out := make([]string, 0, len(classes))
	for _, c := range classes {
		for _, part := range strings.Fields(c) {
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	return strings.Join(out, " ")
}

// DocumentTitle formats "<page> – <site>", or just the site name on the front page.
func DocumentTitle(page, site string) string {
	page = strings.TrimSpace(page)
	if page == "" || page == site {
		return site
	}
	if site == "" {
		return page
	}
	return page + " – " + site
}

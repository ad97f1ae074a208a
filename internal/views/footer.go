// Package views builds the typed view models handed to templates. Builders are pure
// functions over field sets and catalog products; every block is optional and a missing
// field simply omits its markup.
package views

import (
	"context"
	"html/template"
	"net/url"
	"strings"

	"peptidology.com/storefront/internal/fields"
	"peptidology.com/storefront/internal/nav"
	"peptidology.com/storefront/internal/richtext"
	"peptidology.com/storefront/internal/shortcode"
)

// Footer is the site footer rendered on every page.
type Footer struct {
	Logo      *Logo
	Text      template.HTML
	Phone     *ContactLink
	Email     *ContactLink
	Address   template.HTML
	Social    []SocialLink
	Menus     []nav.Menu
	Copyright template.HTML
}

// Logo links an image to the home page.
type Logo struct {
	Href  string
	Image fields.Image
}

// ContactLink is a tel: or mailto: link. Href is pre-built from validated parts so the
// template does not rewrite the tel: scheme.
type ContactLink struct {
	Label string
	Href  template.URL
}

// SocialLink is one entry of the social_links repeater.
type SocialLink struct {
	Label string
	URL   string
	Icon  *fields.Image
}

// FooterInput carries request-level values the footer needs besides the Option set.
type FooterInput struct {
	HomeURL     string
	CurrentPath string
	Shortcodes  *shortcode.Registry
}

var footerMenus = []struct{ location, id string }{
	{nav.FooterPrimary, "footer-menu-1"},
	{nav.FooterSecondary, "footer-menu-2"},
}

// BuildFooter assembles the footer from the Option set.
func BuildFooter(ctx context.Context, options fields.Set, in FooterInput) Footer {
	var f Footer
	if img, ok := options.Image("footer_logo"); ok {
		if img.Alt == "" {
			img.Alt = options.String("site_name")
		}
		home := in.HomeURL
		if home == "" {
			home = "/"
		}
		f.Logo = &Logo{Href: home, Image: img}
	}
	f.Text = richtext.Sanitize(options.String("footer_text"))
	if phone := options.String("contact_number"); phone != "" {
		f.Phone = &ContactLink{Label: phone, Href: template.URL("tel:" + telDigits(phone))} //nolint:gosec // digits only
	}
	if email := options.String("contact_email"); email != "" {
		f.Email = &ContactLink{Label: email, Href: template.URL("mailto:" + url.PathEscape(email))} //nolint:gosec // escaped
	}
	f.Address = richtext.Sanitize(strings.ReplaceAll(options.String("address"), "\n", "<br>"))
	for _, row := range options.List("social_links") {
		link, ok := row.Link("url")
		if !ok {
			continue
		}
		s := SocialLink{Label: row.String("label"), URL: link.URL}
		if s.Label == "" {
			s.Label = link.Title
		}
		if icon, ok := row.Image("icon"); ok {
			s.Icon = &icon
		}
		f.Social = append(f.Social, s)
	}
	for _, m := range footerMenus {
		if menu, ok := nav.Build(options, m.location, m.id, "footer-menu", in.CurrentPath); ok {
			f.Menus = append(f.Menus, menu)
		}
	}
	if c := options.String("copyright"); c != "" {
		f.Copyright = richtext.Sanitize(in.Shortcodes.Expand(ctx, c))
	}
	return f
}

// telDigits keeps the characters a tel: URI accepts.
func telDigits(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

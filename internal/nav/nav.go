// Package nav builds menus assigned to theme locations and breadcrumb trails.
package nav

import (
	"path"
	"strings"

	"peptidology.com/storefront/internal/fields"
)

// Footer menu locations.
const (
	FooterPrimary   = "footer-menu-1"
	FooterSecondary = "footer-menu-2"
	Primary         = "primary"
)

// Item is one menu entry as stored in the Option set.
type Item struct {
	Label    string
	URL      string
	Target   string
	Children []Item
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	Label    string
	Target   string
	Active   bool
	Children []RenderedItem
}

// Menu is a rendered menu for one location. ID and Class land on the <ul>.
type Menu struct {
	Location string
	ID       string
	Class    string
	Items    []RenderedItem
}

// Crumb is a breadcrumb entry.
type Crumb struct {
	Href   string
	Label  string
	Active bool
}

// Locations reads the "menus" group of the Option set: location name to item list.
func Locations(options fields.Set) map[string][]Item {
	group := options.Group("menus")
	if group.Empty() {
		return nil
	}
	out := make(map[string][]Item, len(group.Keys()))
	for _, loc := range group.Keys() {
		if items := itemsFrom(group.List(loc)); len(items) > 0 {
			out[loc] = items
		}
	}
	return out
}

func itemsFrom(rows []fields.Set) []Item {
	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		label := row.String("label")
		href := row.String("url")
		if label == "" || href == "" {
			continue
		}
		items = append(items, Item{
			Label:    label,
			URL:      href,
			Target:   row.String("target"),
			Children: itemsFrom(row.List("children")),
		})
	}
	return items
}

// Build renders the menu assigned to location. ok is false when no items are assigned.
func Build(options fields.Set, location, id, class, currentPath string) (Menu, bool) {
	items := Locations(options)[location]
	if len(items) == 0 {
		return Menu{}, false
	}
	return Menu{
		Location: location,
		ID:       id,
		Class:    class,
		Items:    render(items, currentPath),
	}, true
}

func render(items []Item, currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	out := make([]RenderedItem, 0, len(items))
	for _, it := range items {
		out = append(out, RenderedItem{
			Href:     it.URL,
			Label:    it.Label,
			Target:   it.Target,
			Active:   isActive(it.URL, currentPath),
			Children: render(it.Children, currentPath),
		})
	}
	return out
}

func isActive(itemPath, currentPath string) bool {
	if strings.Contains(itemPath, "://") {
		return false
	}
	itemPath = strings.TrimSuffix(itemPath, "/")
	currentPath = strings.TrimSuffix(currentPath, "/")
	if itemPath == "" {
		return currentPath == ""
	}
	// match exact or prefix boundary: "/shop" or "/shop/..."
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}

// Breadcrumbs builds entries from Home through each path segment. The last crumb uses
// title when given, otherwise a prettified segment.
func Breadcrumbs(currentPath, title string) []Crumb {
	if currentPath == "" {
		currentPath = "/"
	}
	crumbs := []Crumb{{Href: "/", Label: "Home", Active: currentPath == "/"}}
	clean := path.Clean(currentPath)
	if clean == "/" || clean == "." {
		return crumbs
	}
	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")
	href := ""
	for i, seg := range parts {
		href += "/" + seg
		last := i == len(parts)-1
		label := titleFromSegment(seg)
		if last && title != "" {
			label = title
		}
		if seg == "product" || seg == "product-category" || seg == "product-tag" {
			// taxonomy bases have no page of their own
			crumbs = append(crumbs, Crumb{Href: "/shop", Label: "Shop"})
			continue
		}
		crumbs = append(crumbs, Crumb{Href: href, Label: label, Active: last})
	}
	return crumbs
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	s := strings.ReplaceAll(seg, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}

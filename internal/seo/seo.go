// Package seo builds page metadata and schema.org JSON-LD payloads.
package seo

import (
	"encoding/json"
	"html/template"
	"strings"
)

// Meta is rendered into the document head.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OGType      string
	OGImage     string
	JSONLD      []template.JS
}

// JSON marshals v for a <script type="application/ld+json"> block. It returns an empty
// value on error.
func JSON(v any) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return template.JS(b) //nolint:gosec // json.Marshal escapes <, > and &
}

// Organization returns a minimal Organization schema.
func Organization(name, url, logoURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if logoURL != "" {
		m["logo"] = logoURL
	}
	return m
}

// WebSite returns a WebSite schema with a SearchAction pointing at the ?s= endpoint.
func WebSite(name, url string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
		m["potentialAction"] = map[string]any{
			"@type":       "SearchAction",
			"target":      strings.TrimSuffix(url, "/") + "/?s={search_term_string}",
			"query-input": "required name=search_term_string",
		}
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// Offer is the price block of a Product schema.
type Offer struct {
	Price        string
	Currency     string
	Availability string
}

// Product returns a product schema payload. The offer is omitted without a price.
func Product(name, description, url, imageURL string, offer Offer) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Product",
		"name":     name,
	}
	if description != "" {
		m["description"] = description
	}
	if url != "" {
		m["url"] = url
	}
	if imageURL != "" {
		m["image"] = imageURL
	}
	if offer.Price != "" {
		o := map[string]any{
			"@type":         "Offer",
			"price":         offer.Price,
			"priceCurrency": offer.Currency,
		}
		if offer.Availability != "" {
			o["availability"] = "https://schema.org/" + offer.Availability
		}
		m["offers"] = o
	}
	return m
}

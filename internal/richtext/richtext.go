// Package richtext turns CMS rich-text fields into safe HTML and plain-text excerpts.
package richtext

import (
	"bytes"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
)

// Formats accepted by Render.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// DefaultExcerptWords matches the storefront's search-result excerpt length.
const DefaultExcerptWords = 55

const ellipsis = "…"

// Raw HTML in markdown is escaped; sanitising happens afterwards anyway.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Linkify, extension.Strikethrough, extension.Table),
	goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps()),
)

var (
	contentPolicy = newContentPolicy()
	textPolicy    = bluemonday.StrictPolicy()
)

func newContentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("class").OnElements("figure", "figcaption", "p", "span", "ul", "li")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// Sanitize cleans editor HTML down to the content policy.
func Sanitize(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	return template.HTML(strings.TrimSpace(contentPolicy.Sanitize(src))) //nolint:gosec // sanitised above
}

// Markdown renders markdown and sanitises the result.
func Markdown(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src)) //nolint:gosec // escaped
	}
	return Sanitize(buf.String())
}

// Render dispatches on format; anything other than markdown is treated as HTML.
func Render(src, format string) template.HTML {
	if strings.EqualFold(strings.TrimSpace(format), FormatMarkdown) {
		return Markdown(src)
	}
	return Sanitize(src)
}

// Text strips all markup and collapses whitespace. Used for attribute values such as
// tooltips where only text is allowed.
func Text(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	return strings.Join(strings.Fields(html.UnescapeString(textPolicy.Sanitize(src))), " ")
}

// Excerpt returns the first n words of the visible text of src, followed by an ellipsis
// when truncated. Script and style contents are dropped.
func Excerpt(src string, n int) string {
	if n <= 0 {
		n = DefaultExcerptWords
	}
	words := strings.Fields(visibleText(src))
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + ellipsis
}

// Truncate shortens plain text to at most max runes on a word boundary.
func Truncate(text string, max int) string {
	text = strings.TrimSpace(text)
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:max])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + ellipsis
}

func visibleText(src string) string {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return Text(src)
	}
	var sb strings.Builder
	collectText(doc, &sb, 0)
	return sb.String()
}

func collectText(n *html.Node, sb *strings.Builder, depth int) {
	if depth > 64 {
		return
	}
	block := false
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "iframe", "svg", "template":
			return
		case "p", "div", "br", "li", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6", "tr", "td", "th", "blockquote":
			block = true
		}
	}
	if block {
		sb.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb, depth+1)
	}
	if block {
		sb.WriteByte(' ')
	}
}

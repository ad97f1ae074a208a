package views

// Pagination window sizes: pages kept at each end and around the current page.
const (
	endSize = 1
	midSize = 2
)

// PageLinker returns the URL of page n (1-based).
type PageLinker func(n int) string

// Pagination is a numbered pager with previous/next links.
type Pagination struct {
	Current int
	Total   int
	Prev    *PageLink
	Next    *PageLink
	Links   []PageLink
}

// PageLink is a numbered link or a gap marker when Dots is set.
type PageLink struct {
	Number  int
	Href    string
	Current bool
	Dots    bool
}

// BuildPagination returns false when there is a single page or none.
func BuildPagination(current, total int, link PageLinker) (Pagination, bool) {
	if total <= 1 || link == nil {
		return Pagination{}, false
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}
	p := Pagination{Current: current, Total: total}
	if current > 1 {
		p.Prev = &PageLink{Number: current - 1, Href: link(current - 1)}
	}
	if current < total {
		p.Next = &PageLink{Number: current + 1, Href: link(current + 1)}
	}
	dots := false
	for n := 1; n <= total; n++ {
		switch {
		case n == current:
			p.Links = append(p.Links, PageLink{Number: n, Href: link(n), Current: true})
			dots = true
		case n <= endSize || n > total-endSize || (n >= current-midSize && n <= current+midSize):
			p.Links = append(p.Links, PageLink{Number: n, Href: link(n)})
			dots = true
		case dots:
			p.Links = append(p.Links, PageLink{Dots: true})
			dots = false
		}
	}
	return p, true
}

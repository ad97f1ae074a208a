package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"peptidology.com/storefront/internal/fields"
)

// Static is an in-memory catalog, typically loaded from a YAML fixture.
type Static struct {
	products []Product
	bySlug   map[string]int
	byID     map[int64]int
	terms    map[string]bool
}

type fixtureFile struct {
	Products []fixtureProduct `yaml:"products"`
}

type fixtureProduct struct {
	ID               int64          `yaml:"id"`
	Slug             string         `yaml:"slug"`
	Name             string         `yaml:"name"`
	Type             string         `yaml:"type"`
	Price            string         `yaml:"price"`
	RegularPrice     string         `yaml:"regular_price"`
	SalePrice        string         `yaml:"sale_price"`
	StockStatus      string         `yaml:"stock_status"`
	ShortDescription string         `yaml:"short_description"`
	Description      string         `yaml:"description"`
	Image            map[string]any `yaml:"image"`
	Categories       []fixtureTerm  `yaml:"categories"`
	Tags             []fixtureTerm  `yaml:"tags"`
	Related          []int64        `yaml:"related"`
}

type fixtureTerm struct {
	ID   int64  `yaml:"id"`
	Slug string `yaml:"slug"`
	Name string `yaml:"name"`
}

// LoadStatic reads a YAML fixture file.
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read fixture %s: %w", path, err)
	}
	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("catalog: parse fixture %s: %w", path, err)
	}
	products := make([]Product, 0, len(file.Products))
	for _, fp := range file.Products {
		p := Product{
			ID:               fp.ID,
			Slug:             strings.TrimSpace(strings.ToLower(fp.Slug)),
			Name:             strings.TrimSpace(fp.Name),
			Type:             firstNonEmpty(fp.Type, "simple"),
			Price:            firstNonEmpty(fp.Price, fp.SalePrice, fp.RegularPrice),
			RegularPrice:     fp.RegularPrice,
			SalePrice:        fp.SalePrice,
			StockStatus:      fp.StockStatus,
			ShortDescription: fp.ShortDescription,
			Description:      fp.Description,
			RelatedIDs:       fp.Related,
		}
		p.Image, p.HasImage = fields.New(map[string]any{"image": fp.Image}).Image("image")
		for _, c := range fp.Categories {
			p.Categories = append(p.Categories, Term(c))
		}
		for _, tag := range fp.Tags {
			p.Tags = append(p.Tags, Term(tag))
		}
		products = append(products, p)
	}
	return NewStatic(products)
}

// NewStatic builds a catalog from products. IDs and slugs must be unique.
func NewStatic(products []Product) (*Static, error) {
	s := &Static{
		products: make([]Product, 0, len(products)),
		bySlug:   make(map[string]int, len(products)),
		byID:     make(map[int64]int, len(products)),
		terms:    map[string]bool{},
	}
	for _, p := range products {
		if p.ID <= 0 || p.Slug == "" {
			return nil, fmt.Errorf("catalog: product %q requires id and slug", p.Name)
		}
		if _, dup := s.byID[p.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate product id %d", p.ID)
		}
		if _, dup := s.bySlug[p.Slug]; dup {
			return nil, fmt.Errorf("catalog: duplicate product slug %q", p.Slug)
		}
		if p.Permalink == "" {
			p.Permalink = "/product/" + p.Slug + "/"
		}
		for _, c := range p.Categories {
			s.terms["product_cat:"+c.Slug] = true
		}
		for _, t := range p.Tags {
			s.terms["product_tag:"+t.Slug] = true
		}
		s.byID[p.ID] = len(s.products)
		s.bySlug[p.Slug] = len(s.products)
		s.products = append(s.products, p)
	}
	return s, nil
}

// ProductBySlug implements Store.
func (s *Static) ProductBySlug(_ context.Context, slug string) (Product, error) {
	idx, ok := s.bySlug[strings.TrimSpace(strings.ToLower(slug))]
	if !ok {
		return Product{}, ErrNotFound
	}
	return s.products[idx], nil
}

// Products implements Store. Filtering by a category or tag no product carries
// returns ErrNotFound.
func (s *Static) Products(_ context.Context, q Query) (Result, error) {
	q = q.Normalize(12)
	if q.Category != "" && !s.terms["product_cat:"+q.Category] {
		return Result{}, ErrNotFound
	}
	if q.Tag != "" && !s.terms["product_tag:"+q.Tag] {
		return Result{}, ErrNotFound
	}
	var matched []Product
	for _, p := range s.products {
		if q.Category != "" && !p.InCategory(q.Category) {
			continue
		}
		if q.Tag != "" && !p.HasTag(q.Tag) {
			continue
		}
		if q.Search != "" && !matchesSearch(p, q.Search) {
			continue
		}
		matched = append(matched, p)
	}
	res := Result{Total: len(matched), TotalPages: totalPages(len(matched), q.PerPage), Page: q.Page}
	start := (q.Page - 1) * q.PerPage
	if start >= len(matched) {
		return res, nil
	}
	end := start + q.PerPage
	if end > len(matched) {
		end = len(matched)
	}
	res.Products = append([]Product(nil), matched[start:end]...)
	return res, nil
}

// Related implements Store. Explicit related IDs win; otherwise products sharing a
// category are used, in catalog order.
func (s *Static) Related(_ context.Context, productID int64, limit int) ([]Product, error) {
	idx, ok := s.byID[productID]
	if !ok {
		return nil, ErrNotFound
	}
	if limit <= 0 {
		return nil, nil
	}
	self := s.products[idx]
	var out []Product
	seen := map[int64]bool{productID: true}
	add := func(p Product) bool {
		if seen[p.ID] {
			return len(out) < limit
		}
		seen[p.ID] = true
		out = append(out, p)
		return len(out) < limit
	}
	for _, id := range self.RelatedIDs {
		if i, ok := s.byID[id]; ok && !add(s.products[i]) {
			return out, nil
		}
	}
	for _, p := range s.products {
		shared := false
		for _, c := range self.Categories {
			if p.InCategory(c.Slug) {
				shared = true
				break
			}
		}
		if shared && !add(p) {
			return out, nil
		}
	}
	return out, nil
}

func matchesSearch(p Product, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.ShortDescription), term) ||
		strings.Contains(strings.ToLower(p.Description), term)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"peptidology.com/storefront/internal/fields"
)

// WooClient reads products from the WooCommerce REST API (wc/v3).
type WooClient struct {
	baseURL string
	key     string
	secret  string
	http    *http.Client
}

// NewWooClient constructs a client for the store at baseURL.
func NewWooClient(baseURL, consumerKey, consumerSecret string) *WooClient {
	return &WooClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		key:     consumerKey,
		secret:  consumerSecret,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type wooProduct struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Slug             string     `json:"slug"`
	Permalink        string     `json:"permalink"`
	Type             string     `json:"type"`
	Status           string     `json:"status"`
	Price            string     `json:"price"`
	RegularPrice     string     `json:"regular_price"`
	SalePrice        string     `json:"sale_price"`
	StockStatus      string     `json:"stock_status"`
	Description      string     `json:"description"`
	ShortDescription string     `json:"short_description"`
	Images           []wooImage `json:"images"`
	Categories       []wooTerm  `json:"categories"`
	Tags             []wooTerm  `json:"tags"`
	RelatedIDs       []int64    `json:"related_ids"`
}

type wooImage struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

type wooTerm struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (p wooProduct) toProduct() Product {
	out := Product{
		ID:               p.ID,
		Slug:             p.Slug,
		Name:             html.UnescapeString(p.Name),
		Type:             p.Type,
		Permalink:        p.Permalink,
		Price:            p.Price,
		RegularPrice:     p.RegularPrice,
		SalePrice:        p.SalePrice,
		StockStatus:      p.StockStatus,
		ShortDescription: p.ShortDescription,
		Description:      p.Description,
		RelatedIDs:       p.RelatedIDs,
	}
	if len(p.Images) > 0 && p.Images[0].Src != "" {
		out.Image = fields.Image{URL: p.Images[0].Src, Alt: p.Images[0].Alt}
		out.HasImage = true
	}
	for _, c := range p.Categories {
		out.Categories = append(out.Categories, Term{ID: c.ID, Slug: c.Slug, Name: html.UnescapeString(c.Name)})
	}
	for _, t := range p.Tags {
		out.Tags = append(out.Tags, Term{ID: t.ID, Slug: t.Slug, Name: html.UnescapeString(t.Name)})
	}
	return out
}

// ProductBySlug implements Store.
func (c *WooClient) ProductBySlug(ctx context.Context, slug string) (Product, error) {
	q := url.Values{}
	q.Set("slug", strings.TrimSpace(slug))
	q.Set("status", "publish")
	var products []wooProduct
	if _, err := c.get(ctx, "products", q, &products); err != nil {
		return Product{}, err
	}
	if len(products) == 0 {
		return Product{}, ErrNotFound
	}
	return products[0].toProduct(), nil
}

// Products implements Store.
func (c *WooClient) Products(ctx context.Context, query Query) (Result, error) {
	query = query.Normalize(12)
	q := url.Values{}
	q.Set("status", "publish")
	q.Set("page", strconv.Itoa(query.Page))
	q.Set("per_page", strconv.Itoa(query.PerPage))
	if query.Search != "" {
		q.Set("search", query.Search)
	}
	if query.Category != "" {
		id, err := c.termID(ctx, "products/categories", query.Category)
		if err != nil {
			return Result{Page: query.Page}, err
		}
		q.Set("category", strconv.FormatInt(id, 10))
	}
	if query.Tag != "" {
		id, err := c.termID(ctx, "products/tags", query.Tag)
		if err != nil {
			return Result{Page: query.Page}, err
		}
		q.Set("tag", strconv.FormatInt(id, 10))
	}

	var products []wooProduct
	header, err := c.get(ctx, "products", q, &products)
	if err != nil {
		return Result{Page: query.Page}, err
	}
	res := Result{Page: query.Page}
	for _, p := range products {
		res.Products = append(res.Products, p.toProduct())
	}
	res.Total, _ = strconv.Atoi(header.Get("X-WP-Total"))
	res.TotalPages, _ = strconv.Atoi(header.Get("X-WP-TotalPages"))
	if res.TotalPages == 0 {
		res.TotalPages = totalPages(res.Total, query.PerPage)
	}
	return res, nil
}

// Related implements Store using the product's related_ids.
func (c *WooClient) Related(ctx context.Context, productID int64, limit int) ([]Product, error) {
	if limit <= 0 {
		return nil, nil
	}
	var product wooProduct
	if _, err := c.get(ctx, "products/"+strconv.FormatInt(productID, 10), nil, &product); err != nil {
		return nil, err
	}
	ids := product.RelatedIDs
	if len(ids) > limit {
		ids = ids[:limit]
	}
	if len(ids) == 0 {
		return nil, nil
	}
	include := make([]string, len(ids))
	for i, id := range ids {
		include[i] = strconv.FormatInt(id, 10)
	}
	q := url.Values{}
	q.Set("include", strings.Join(include, ","))
	q.Set("orderby", "include")
	q.Set("per_page", strconv.Itoa(len(ids)))
	var products []wooProduct
	if _, err := c.get(ctx, "products", q, &products); err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		out = append(out, p.toProduct())
	}
	return out, nil
}

func (c *WooClient) termID(ctx context.Context, resource, slug string) (int64, error) {
	q := url.Values{}
	q.Set("slug", slug)
	var terms []wooTerm
	if _, err := c.get(ctx, resource, q, &terms); err != nil {
		return 0, err
	}
	if len(terms) == 0 {
		return 0, ErrNotFound
	}
	return terms[0].ID, nil
}

func (c *WooClient) get(ctx context.Context, resource string, q url.Values, out any) (http.Header, error) {
	endpoint, err := url.JoinPath(c.baseURL, "wp-json", "wc", "v3", resource)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if len(q) > 0 {
		req.URL.RawQuery = q.Encode()
	}
	req.Header.Set("Accept", "application/json")
	if c.key != "" {
		req.SetBasicAuth(c.key, c.secret)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: woocommerce %s: %w", resource, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("catalog: woocommerce %s status %d", resource, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", resource, err)
	}
	return resp.Header, nil
}

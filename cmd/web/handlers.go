package main

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"peptidology.com/storefront/internal/catalog"
	"peptidology.com/storefront/internal/cms"
	"peptidology.com/storefront/internal/fields"
	"peptidology.com/storefront/internal/page"
	"peptidology.com/storefront/internal/requestctx"
	"peptidology.com/storefront/internal/richtext"
	"peptidology.com/storefront/internal/seo"
	"peptidology.com/storefront/internal/views"
)

const homeProductCount = 8

func (s *site) handleFront(w http.ResponseWriter, r *http.Request) {
	if strings.TrimSpace(r.URL.Query().Get("s")) != "" {
		s.handleSearch(w, r)
		return
	}
	ctx := r.Context()
	pc := page.Classify(r.URL.Path, r.URL.Query())

	var (
		options, home fields.Set
		products      []catalog.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		options = s.options(gctx)
		return nil
	})
	g.Go(func() error {
		home = cms.FieldsOrEmpty(gctx, s.fields, fields.PageScope("home"))
		return nil
	})
	g.Go(func() error {
		res, err := s.catalog.Products(gctx, catalog.Query{Page: 1, PerPage: homeProductCount})
		if err != nil {
			requestctx.Logger(ctx).Warn("front page products unavailable", zap.Error(err))
			return nil
		}
		products = res.Products
		return nil
	})
	_ = g.Wait()

	siteName := s.cfg.Theme.SiteName
	s.render(w, r, pageData{
		Context: pc,
		Options: options,
		Summary: richtext.Truncate(richtext.Text(home.String("content")), 160),
		Content: views.BuildHome(options, home, products, s.cfg.Theme.Currency),
		JSONLD: []any{
			seo.WebSite(siteName, s.cfg.Theme.SiteURL),
			seo.Organization(siteName, s.cfg.Theme.SiteURL, logoURL(options)),
		},
	})
}

func (s *site) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pc := page.Classify(r.URL.Path, r.URL.Query())
	if pc.Type != page.TypeSearch {
		pc = page.New(page.TypeSearch, "")
		pc.Path = r.URL.Path
		pc.Search = strings.TrimSpace(r.URL.Query().Get("s"))
	}

	q := catalog.Query{Search: pc.Search, Page: pc.CurrentPage(), PerPage: s.cfg.Catalog.PerPage, Main: true}
	s.hooks.PreGetPosts.Do(ctx, page.MainQuery{Context: pc, Query: &q})

	var res catalog.Result
	if pc.Search != "" {
		var err error
		if res, err = s.catalog.Products(ctx, q); err != nil {
			requestctx.Logger(ctx).Warn("search failed", zap.String("term", pc.Search), zap.Error(err))
			res = catalog.Result{}
		}
	}
	term := pc.Search
	link := func(n int) string {
		v := url.Values{"s": {term}}
		if n > 1 {
			v.Set("paged", strconv.Itoa(n))
		}
		return "/?" + v.Encode()
	}
	title := "Search"
	if term != "" {
		title = "Search results for “" + term + "”"
	}
	s.render(w, r, pageData{
		Context:   pc,
		Title:     title,
		CrumbName: title,
		Options:   s.options(ctx),
		Content:   views.BuildSearch(term, res, link),
	})
}

func (s *site) handleArchive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pc := page.Classify(r.URL.Path, r.URL.Query())
	if !pc.IsProductListing() {
		s.handleNotFound(w, r)
		return
	}

	q := catalog.Query{Page: pc.CurrentPage(), PerPage: s.cfg.Catalog.PerPage, Main: true}
	switch {
	case pc.IsProductCategory:
		q.Category = pc.Slug
	case pc.IsProductTag:
		q.Tag = pc.Slug
	}
	s.hooks.PreGetPosts.Do(ctx, page.MainQuery{Context: pc, Query: &q})
	tmpl, shell := s.resolveTemplate(ctx, pc)

	var (
		options fields.Set
		res     catalog.Result
		listErr error
	)
	// Both loads return nil so a catalog failure never cancels the Option set read.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		options = s.options(gctx)
		return nil
	})
	g.Go(func() error {
		res, listErr = s.catalog.Products(gctx, q)
		return nil
	})
	_ = g.Wait()
	if listErr != nil {
		if errors.Is(listErr, catalog.ErrNotFound) {
			s.handleNotFound(w, r)
			return
		}
		requestctx.Logger(ctx).Warn("catalog listing unavailable", zap.Error(listErr))
		res = catalog.Result{Page: q.Page}
	}
	if !shell && pc.Paged > 1 && res.TotalPages > 0 && pc.Paged > res.TotalPages {
		s.handleNotFound(w, r)
		return
	}

	title := archiveTitle(pc, res.Products)
	s.render(w, r, pageData{
		Context:   pc,
		Template:  tmpl,
		Title:     title,
		CrumbName: title,
		Options:   options,
		Content: views.BuildArchive(views.ArchiveInput{
			Title:    title,
			Headless: shell,
			APIBase:  s.cfg.Headless.APIBase,
			Category: q.Category,
			Tag:      q.Tag,
			Result:   res,
			Currency: s.cfg.Theme.Currency,
			Link:     archiveLinker(pc),
		}),
	})
}

func (s *site) handleProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pc := page.Classify(r.URL.Path, r.URL.Query())
	if !pc.IsProduct {
		s.handleNotFound(w, r)
		return
	}
	product, err := s.catalog.ProductBySlug(ctx, pc.Slug)
	if errors.Is(err, catalog.ErrNotFound) {
		s.handleNotFound(w, r)
		return
	}
	if err != nil {
		requestctx.Logger(ctx).Error("load product failed", zap.String("slug", pc.Slug), zap.Error(err))
		s.serverError(w, r)
		return
	}
	tmpl, shell := s.resolveTemplate(ctx, pc)

	var (
		options, post fields.Set
		related       []catalog.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		options = s.options(gctx)
		return nil
	})
	g.Go(func() error {
		post = cms.FieldsOrEmpty(gctx, s.fields, fields.PostScope(product.ID))
		return nil
	})
	g.Go(func() error {
		if s.cfg.Catalog.RelatedLimit == 0 {
			return nil
		}
		items, err := s.catalog.Related(gctx, product.ID, s.cfg.Catalog.RelatedLimit)
		if err != nil {
			requestctx.Logger(ctx).Warn("related products unavailable", zap.Int64("product_id", product.ID), zap.Error(err))
			return nil
		}
		related = items
		return nil
	})
	_ = g.Wait()

	currency := s.cfg.Theme.Currency
	vm := views.ProductPage{
		ID:       product.ID,
		Headless: shell,
		Detail:   views.BuildProductDetail(product, currency),
		Sections: views.BuildProductSections(options, post, related, currency),
	}
	offer := seo.Offer{Price: product.Price, Currency: currency, Availability: "OutOfStock"}
	if product.InStock() {
		offer.Availability = "InStock"
	}
	image := ""
	if product.HasImage {
		image = product.Image.URL
	}
	summary := richtext.Truncate(richtext.Text(product.ShortDescription), 160)
	s.render(w, r, pageData{
		Context:   pc,
		Template:  tmpl,
		Title:     product.Name,
		Summary:   summary,
		Image:     image,
		CrumbName: product.Name,
		Options:   options,
		Content:   vm,
		JSONLD:    []any{seo.Product(product.Name, summary, s.cfg.Theme.SiteURL+product.Permalink, image, offer)},
	})
}

var transactionalTitles = map[page.Type]string{
	page.TypeCart:     "Cart",
	page.TypeCheckout: "Checkout",
	page.TypeAccount:  "My account",
}

func (s *site) handleTransactional(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pc := page.Classify(r.URL.Path, r.URL.Query())
	title, ok := transactionalTitles[pc.Type]
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	s.render(w, r, pageData{
		Context:   pc,
		Title:     title,
		CrumbName: title,
		Options:   s.options(ctx),
	})
}

func (s *site) handlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pc := page.Classify(r.URL.Path, r.URL.Query())
	if pc.Type != page.TypePage {
		s.handleNotFound(w, r)
		return
	}
	post, err := s.fields.Fields(ctx, fields.PageScope(pc.Slug))
	if errors.Is(err, cms.ErrNotFound) {
		s.handleNotFound(w, r)
		return
	}
	if err != nil {
		requestctx.Logger(ctx).Warn("page fields unavailable", zap.String("slug", pc.Slug), zap.Error(err))
		post = fields.Set{}
	}
	title := post.String("title")
	if title == "" {
		title = titleFromSlug(pc.Slug)
	}
	company := views.BuildCompany(post, title)
	image := ""
	if company.Banner != nil && company.Banner.Image != nil {
		image = company.Banner.Image.URL
	}
	s.render(w, r, pageData{
		Context:   pc,
		Title:     title,
		Summary:   richtext.Truncate(richtext.Text(string(company.Content)), 160),
		Image:     image,
		CrumbName: title,
		Options:   s.options(ctx),
		Content:   company,
	})
}

func (s *site) handleNotFound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pc := page.New(page.TypeNotFound, "")
	pc.Path = r.URL.Path
	s.render(w, r, pageData{
		Context:   pc,
		Title:     "Page not found",
		CrumbName: "Page not found",
		Options:   s.options(ctx),
		Status:    http.StatusNotFound,
	})
}

func archiveTitle(pc page.Context, products []catalog.Product) string {
	var terms []catalog.Term
	switch {
	case pc.IsProductCategory:
		for _, p := range products {
			terms = append(terms, p.Categories...)
		}
	case pc.IsProductTag:
		for _, p := range products {
			terms = append(terms, p.Tags...)
		}
	default:
		return "Shop"
	}
	for _, t := range terms {
		if t.Slug == pc.Slug && t.Name != "" {
			return t.Name
		}
	}
	return titleFromSlug(pc.Slug)
}

func archiveLinker(pc page.Context) views.PageLinker {
	base := "/shop"
	switch {
	case pc.IsProductCategory:
		base = strings.TrimSuffix(pc.Path, "/page/"+strconv.Itoa(pc.Paged))
	case pc.IsProductTag:
		base = "/product-tag/" + pc.Slug
	}
	return func(n int) string {
		if n <= 1 {
			return base + "/"
		}
		return base + "/page/" + strconv.Itoa(n) + "/"
	}
}

func logoURL(options fields.Set) string {
	if img, ok := options.Image("footer_logo"); ok {
		return img.URL
	}
	return ""
}

func titleFromSlug(slug string) string {
	words := strings.Fields(strings.NewReplacer("-", " ", "_", " ").Replace(slug))
	// Casers are stateful; one per call.
	return cases.Title(language.English).String(strings.Join(words, " "))
}

// Package source implements one scraping adapter per upstream site.
// Every adapter fetches a listing page, enumerates candidate entries, loads each
// entry's detail page concurrently and builds domain articles. Candidates missing
// required fields or failing to load are dropped, they never abort the adapter run.
package source

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/newsdesk/pkg/domain"
)

// DefaultMaxConcurrent limits parallel detail page fetches per adapter run
const DefaultMaxConcurrent = 8

// Fetcher loads raw page content
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Adapter scrapes a single upstream site. Scrape fails only if the listing page
// itself can't be loaded, partial results are returned otherwise.
type Adapter interface {
	Name() string
	Scrape(ctx context.Context, listingURL string) ([]domain.Article, error)
}

// Options are shared by all adapters
type Options struct {
	Name          string // source name recorded on articles, adapter default if empty
	BaseURL       string // relative links are resolved against it, listing URL if empty
	MaxConcurrent int
}

func (o Options) maxConcurrent() int {
	if o.MaxConcurrent <= 0 {
		return DefaultMaxConcurrent
	}
	return o.MaxConcurrent
}

func (o Options) name(def string) string {
	if o.Name == "" {
		return def
	}
	return o.Name
}

// baseURL returns the url relative links are resolved against
func (o Options) baseURL(listingURL string) (*url.URL, error) {
	raw := o.BaseURL
	if raw == "" {
		raw = listingURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base URL %q: %w", raw, err)
	}
	return u, nil
}

// collect runs extract for every candidate with at most limit in flight. Each call
// writes only its own slot, nil results (dropped candidates) are filtered once at the end
// and the candidate order is kept.
func collect[C any](ctx context.Context, limit int, candidates []C, extract func(ctx context.Context, c C) *domain.Article) []domain.Article {
	results := make([]*domain.Article, len(candidates))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, c := range candidates {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			results[i] = extract(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	articles := make([]domain.Article, 0, len(candidates))
	for _, a := range results {
		if a != nil {
			articles = append(articles, *a)
		}
	}
	return articles
}

// loadDocument fetches and parses an html page
func loadDocument(ctx context.Context, f Fetcher, pageURL string) (*goquery.Document, error) {
	body, err := f.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse HTML of %s: %w", pageURL, err)
	}
	return doc, nil
}

// build makes an article or logs why the candidate was dropped
func build(source string, p domain.ArticleParams) *domain.Article {
	p.Source = source
	a, err := domain.NewArticle(p)
	if err != nil {
		lgr.Printf("[DEBUG] %s: drop candidate %q (%s): %v", source, p.Title, p.DetailLink, err)
		return nil
	}
	return &a
}

// resolveURL makes ref absolute against base, empty ref stays empty
func resolveURL(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

// paragraphs returns trimmed non-empty texts of the selection joined by blank lines
func paragraphs(sel *goquery.Selection) string {
	parts := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, "\n\n")
}

// text returns the trimmed text of the first matched element
func text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.First().Text())
}

// attr returns the trimmed attribute of the first matched element
func attr(sel *goquery.Selection, name string) string {
	v, _ := sel.First().Attr(name)
	return strings.TrimSpace(v)
}

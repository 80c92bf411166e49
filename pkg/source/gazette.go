package source

import (
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-pkgz/lgr"

	"github.com/umputun/newsdesk/pkg/dates"
	"github.com/umputun/newsdesk/pkg/domain"
)

// Gazette scrapes La Gazette des Comores. The listing carries title, link, image,
// date and category, the detail page only the body.
type Gazette struct {
	fetcher Fetcher
	opts    Options
}

type gazetteEntry struct {
	title, link, image, date, category string
}

// NewGazette makes a Gazette adapter
func NewGazette(fetcher Fetcher, opts Options) *Gazette {
	return &Gazette{fetcher: fetcher, opts: opts}
}

// Name of the source
func (g *Gazette) Name() string { return g.opts.name("gazette") }

// Scrape loads the listing and every linked article
func (g *Gazette) Scrape(ctx context.Context, listingURL string) ([]domain.Article, error) {
	base, err := g.opts.baseURL(listingURL)
	if err != nil {
		return nil, err
	}

	doc, err := loadDocument(ctx, g.fetcher, listingURL)
	if err != nil {
		return nil, fmt.Errorf("load listing: %w", err)
	}

	entries := g.parseListing(doc, base)
	lgr.Printf("[DEBUG] %s: %d entries on %s", g.Name(), len(entries), listingURL)

	return collect(ctx, g.opts.maxConcurrent(), entries, g.article), nil
}

func (g *Gazette) parseListing(doc *goquery.Document, base *url.URL) []gazetteEntry {
	var entries []gazetteEntry
	doc.Find(".actu-mini").Each(func(_ int, s *goquery.Selection) {
		e := gazetteEntry{
			image:    resolveURL(base, attr(s.Find(".actu-mini-img a img"), "src")),
			link:     resolveURL(base, attr(s.Find(".actu-mini-caption a"), "href")),
			title:    text(s.Find(".actu-mini-caption h5")),
			date:     text(s.Find(".actu-mini-footer div > ul > li:nth-child(1)")),
			category: text(s.Find(".actu-mini-footer div > ul > li:nth-child(3) a")),
		}
		if e.image == "" || e.link == "" || e.title == "" {
			lgr.Printf("[DEBUG] %s: skip incomplete listing entry %q", g.Name(), e.title)
			return
		}
		entries = append(entries, e)
	})
	return entries
}

func (g *Gazette) article(ctx context.Context, e gazetteEntry) *domain.Article {
	doc, err := loadDocument(ctx, g.fetcher, e.link)
	if err != nil {
		lgr.Printf("[WARN] %s: failed to load article %s: %v", g.Name(), e.link, err)
		return nil
	}

	// the last paragraph is the site's footer, not part of the article
	body := doc.Find(".article-in div:nth-child(3) .article-content p")
	if n := body.Length(); n > 0 {
		body = body.Slice(0, n-1)
	}

	date, _ := dates.Normalize(dates.ExpandPartialDate(e.date))
	return build(g.Name(), domain.ArticleParams{
		Title:      e.title,
		Body:       paragraphs(body),
		Image:      e.image,
		Category:   e.category,
		Date:       date,
		DetailLink: e.link,
	})
}

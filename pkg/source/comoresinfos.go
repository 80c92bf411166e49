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

// ComoresInfos scrapes Comores Infos. The listing only carries title and link,
// everything else comes from the detail page. Articles without images are kept.
type ComoresInfos struct {
	fetcher Fetcher
	opts    Options
}

type comoresInfosEntry struct {
	title, link string
}

// NewComoresInfos makes a ComoresInfos adapter
func NewComoresInfos(fetcher Fetcher, opts Options) *ComoresInfos {
	return &ComoresInfos{fetcher: fetcher, opts: opts}
}

// Name of the source
func (c *ComoresInfos) Name() string { return c.opts.name("comoresinfos") }

// Scrape loads the listing and every linked article
func (c *ComoresInfos) Scrape(ctx context.Context, listingURL string) ([]domain.Article, error) {
	base, err := c.opts.baseURL(listingURL)
	if err != nil {
		return nil, err
	}

	doc, err := loadDocument(ctx, c.fetcher, listingURL)
	if err != nil {
		return nil, fmt.Errorf("load listing: %w", err)
	}

	entries := c.parseListing(doc, base)
	lgr.Printf("[DEBUG] %s: %d entries on %s", c.Name(), len(entries), listingURL)

	return collect(ctx, c.opts.maxConcurrent(), entries, func(ctx context.Context, e comoresInfosEntry) *domain.Article {
		return c.article(ctx, e, base)
	}), nil
}

func (c *ComoresInfos) parseListing(doc *goquery.Document, base *url.URL) []comoresInfosEntry {
	var entries []comoresInfosEntry
	doc.Find("article").Each(func(_ int, s *goquery.Selection) {
		a := s.Find("div:nth-child(1) a")
		e := comoresInfosEntry{
			link:  resolveURL(base, attr(a, "href")),
			title: attr(a, "title"),
		}
		if e.link == "" || e.title == "" {
			return
		}
		entries = append(entries, e)
	})
	return entries
}

func (c *ComoresInfos) article(ctx context.Context, e comoresInfosEntry, base *url.URL) *domain.Article {
	doc, err := loadDocument(ctx, c.fetcher, e.link)
	if err != nil {
		lgr.Printf("[WARN] %s: failed to load article %q %s: %v", c.Name(), e.title, e.link, err)
		return nil
	}

	date, _ := dates.Normalize(text(doc.Find(".entry-header p span.entry-meta-date a")))
	return build(c.Name(), domain.ArticleParams{
		Title:         e.title,
		Body:          paragraphs(doc.Find(".entry-content p")),
		Image:         resolveURL(base, attr(doc.Find(".entry-content a > img"), "src")),
		Category:      text(doc.Find(".entry-header p span.entry-meta-categories a:nth-child(2)")),
		Date:          date,
		DetailLink:    e.link,
		ImageOptional: true,
	})
}

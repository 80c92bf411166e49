package source

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/go-pkgz/lgr"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"github.com/umputun/newsdesk/pkg/content"
	"github.com/umputun/newsdesk/pkg/dates"
	"github.com/umputun/newsdesk/pkg/domain"
)

// TextExtractor pulls the readable text out of a fetched page
type TextExtractor interface {
	Extract(page []byte, pageURL string) (*content.ExtractResult, error)
}

// Feed scrapes sites publishing an RSS or Atom feed. The feed plays the listing role,
// article bodies are extracted from the linked pages.
type Feed struct {
	fetcher   Fetcher
	extractor TextExtractor
	sanitizer *bluemonday.Policy
	opts      Options
}

// NewFeed makes a Feed adapter
func NewFeed(fetcher Fetcher, extractor TextExtractor, opts Options) *Feed {
	return &Feed{
		fetcher:   fetcher,
		extractor: extractor,
		sanitizer: bluemonday.StrictPolicy(),
		opts:      opts,
	}
}

// Name of the source
func (f *Feed) Name() string { return f.opts.name("feed") }

// Scrape loads the feed and every linked article
func (f *Feed) Scrape(ctx context.Context, feedURL string) ([]domain.Article, error) {
	base, err := f.opts.baseURL(feedURL)
	if err != nil {
		return nil, err
	}

	body, err := f.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("load feed: %w", err)
	}

	// parser isn't safe for concurrent use, one per run
	parsed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}
	lgr.Printf("[DEBUG] %s: %d items in %s", f.Name(), len(parsed.Items), feedURL)

	return collect(ctx, f.opts.maxConcurrent(), parsed.Items, func(ctx context.Context, item *gofeed.Item) *domain.Article {
		return f.article(ctx, item, base)
	}), nil
}

func (f *Feed) article(ctx context.Context, item *gofeed.Item, base *url.URL) *domain.Article {
	if item == nil {
		return nil
	}
	link := resolveURL(base, item.Link)
	title := strings.TrimSpace(item.Title)
	if link == "" || title == "" {
		return nil
	}

	page, err := f.fetcher.Fetch(ctx, link)
	if err != nil {
		lgr.Printf("[WARN] %s: failed to load article %s: %v", f.Name(), link, err)
		return nil
	}

	var body, extractedImage string
	if res, err := f.extractor.Extract(page, link); err == nil {
		body, extractedImage = res.Text, res.Image
	} else {
		lgr.Printf("[DEBUG] %s: extraction failed for %s, using feed text: %v", f.Name(), link, err)
		body = f.plainText(item.Content)
		if body == "" {
			body = f.plainText(item.Description)
		}
	}

	image := feedImage(item)
	if image == "" {
		image = extractedImage
	}

	category := ""
	if len(item.Categories) > 0 {
		category = item.Categories[0]
	}

	return build(f.Name(), domain.ArticleParams{
		Title:      title,
		Body:       body,
		Image:      resolveURL(base, image),
		Category:   category,
		Date:       feedDate(item),
		DetailLink: link,
	})
}

// plainText strips markup from feed provided html
func (f *Feed) plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(f.sanitizer.Sanitize(s)))
}

// feedImage returns the item image or the first image enclosure
func feedImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}

// feedDate prefers the parsed publish time and falls back to normalizing the raw value
func feedDate(item *gofeed.Item) string {
	switch {
	case item.PublishedParsed != nil:
		return dates.Format(*item.PublishedParsed)
	case item.UpdatedParsed != nil:
		return dates.Format(*item.UpdatedParsed)
	}
	raw := item.Published
	if raw == "" {
		raw = item.Updated
	}
	d, _ := dates.Normalize(raw)
	return d
}

package feed

import (
	"encoding/xml"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/umputun/newsdesk/pkg/dates"
	"github.com/umputun/newsdesk/pkg/domain"
)

// Generator creates RSS feeds from the article snapshot
type Generator struct {
	baseURL string
}

// Outline is a scraped source listed in OPML
type Outline struct {
	Title string
	URL   string
	Type  string // "rss" for feed sources, "link" for scraped sites
}

// NewGenerator creates a new feed generator
func NewGenerator(baseURL string) *Generator {
	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// GenerateRSS creates an RSS 2.0 feed of articles. Non-empty category limits the feed
// to articles of that category, compared case-insensitively.
func (g *Generator) GenerateRSS(articles []domain.Article, category string) (string, error) {
	title := "Newsdesk - All Categories"
	selfLink := g.baseURL + "/rss"
	if category != "" {
		title = "Newsdesk - " + category
		selfLink = fmt.Sprintf("%s/rss/%s", g.baseURL, category)
	}

	rssItems := make([]*RSSItem, 0, len(articles))
	for _, a := range articles {
		if category != "" && !strings.EqualFold(a.Category, category) {
			continue
		}
		rssItems = append(rssItems, g.convertToRSSItem(a))
	}

	feed := &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &RSSChannel{
			Title:         title,
			Link:          g.baseURL + "/",
			Description:   "News aggregated from Comorian news sites",
			Language:      "fr",
			AtomLink:      &AtomLink{Href: selfLink, Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: time.Now().Format(time.RFC1123Z),
			Items:         rssItems,
		},
	}

	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}

	return xml.Header + string(output), nil
}

// convertToRSSItem converts an article to an RSS item
func (g *Generator) convertToRSSItem(a domain.Article) *RSSItem {
	item := &RSSItem{
		Title:       a.Title,
		Link:        a.DetailLink,
		GUID:        &RSSGUID{Value: a.ID},
		Description: a.Body,
		Source:      a.Source,
	}
	if a.Category != "" {
		item.Categories = []string{a.Category}
	}
	if a.Date != nil {
		if t, err := time.Parse(dates.Layout, *a.Date); err == nil {
			item.PubDate = t.Format(time.RFC1123Z)
		}
	}
	if a.Image != nil && *a.Image != "" {
		item.Enclosure = &RSSEnclosure{URL: *a.Image, Type: imageType(*a.Image)}
	}
	return item
}

// imageType guesses the mime type from the image url extension
func imageType(imageURL string) string {
	u := imageURL
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	if t := mime.TypeByExtension(strings.ToLower(path.Ext(u))); strings.HasPrefix(t, "image/") {
		return t
	}
	return "image/jpeg"
}

// GenerateOPML creates an OPML file listing the scraped sources
func (g *Generator) GenerateOPML(sources []Outline) (string, error) {
	type outline struct {
		XMLName xml.Name `xml:"outline"`
		Text    string   `xml:"text,attr"`
		Title   string   `xml:"title,attr"`
		Type    string   `xml:"type,attr"`
		XMLUrl  string   `xml:"xmlUrl,attr,omitempty"`
		HTMLUrl string   `xml:"htmlUrl,attr,omitempty"`
	}

	type body struct {
		XMLName  xml.Name  `xml:"body"`
		Outlines []outline `xml:"outline"`
	}

	type head struct {
		XMLName     xml.Name `xml:"head"`
		Title       string   `xml:"title"`
		DateCreated string   `xml:"dateCreated"`
	}

	type opml struct {
		XMLName xml.Name `xml:"opml"`
		Version string   `xml:"version,attr"`
		Head    head     `xml:"head"`
		Body    body     `xml:"body"`
	}

	outlines := make([]outline, 0, len(sources)+1)
	outlines = append(outlines, outline{Text: "Newsdesk", Title: "Newsdesk", Type: "rss", XMLUrl: g.baseURL + "/rss"})
	for _, src := range sources {
		o := outline{Text: src.Title, Title: src.Title, Type: src.Type}
		if src.Type == "rss" {
			o.XMLUrl = src.URL
		} else {
			o.HTMLUrl = src.URL
		}
		outlines = append(outlines, o)
	}

	doc := opml{
		Version: "2.0",
		Head: head{
			Title:       "Newsdesk Sources",
			DateCreated: time.Now().Format(time.RFC1123Z),
		},
		Body: body{
			Outlines: outlines,
		},
	}

	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal OPML: %w", err)
	}

	return xml.Header + string(output), nil
}

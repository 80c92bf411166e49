package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/newsdesk/pkg/content"
)

type fakeExtractor struct {
	results map[string]*content.ExtractResult
}

func (f *fakeExtractor) Extract(_ []byte, pageURL string) (*content.ExtractResult, error) {
	if r, ok := f.results[pageURL]; ok {
		return r, nil
	}
	return nil, errors.New("nothing to extract")
}

const testRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>Al-Watwan</title>
	<link>https://alwatwan.example.org/</link>
	<item>
		<title>Sommet regional a Moroni</title>
		<link>https://alwatwan.example.org/sommet</link>
		<category>Politique</category>
		<pubDate>Wed, 29 Nov 2023 10:15:00 +0300</pubDate>
		<enclosure url="https://alwatwan.example.org/img/sommet.jpg" type="image/jpeg" length="100"/>
	</item>
	<item>
		<title>Saison de la vanille</title>
		<link>/vanille</link>
		<category>Economie</category>
		<description>&lt;p&gt;Les &lt;b&gt;prix&lt;/b&gt; montent.&lt;/p&gt;</description>
		<enclosure url="/img/vanille.jpg" type="image/jpeg" length="100"/>
	</item>
	<item>
		<title>Coupe regionale</title>
		<link>https://alwatwan.example.org/sport</link>
		<pubDate>not a date</pubDate>
	</item>
	<item>
		<title>No image anywhere</title>
		<link>https://alwatwan.example.org/noimage</link>
	</item>
	<item>
		<title>Unreachable</title>
		<link>https://alwatwan.example.org/down</link>
		<enclosure url="https://alwatwan.example.org/img/down.jpg" type="image/jpeg" length="100"/>
	</item>
	<item>
		<title></title>
		<link>https://alwatwan.example.org/untitled</link>
	</item>
</channel>
</rss>`

func TestFeed_Scrape(t *testing.T) {
	f := &fakeFetcher{
		pages: map[string]string{
			"https://alwatwan.example.org/rss":     testRSS,
			"https://alwatwan.example.org/sommet":  "<html>sommet</html>",
			"https://alwatwan.example.org/vanille": "<html>vanille</html>",
			"https://alwatwan.example.org/sport":   "<html>sport</html>",
			"https://alwatwan.example.org/noimage": "<html>noimage</html>",
		},
		errs: map[string]error{"https://alwatwan.example.org/down": errors.New("503")},
	}
	ex := &fakeExtractor{results: map[string]*content.ExtractResult{
		"https://alwatwan.example.org/sommet":  {Text: "Les chefs d'Etat se reunissent."},
		"https://alwatwan.example.org/sport":   {Text: "Victoire 2-1.", Image: "https://alwatwan.example.org/img/sport.jpg"},
		"https://alwatwan.example.org/noimage": {Text: "Texte sans image."},
	}}

	fd := NewFeed(f, ex, Options{Name: "alwatwan"})
	assert.Equal(t, "alwatwan", fd.Name())

	articles, err := fd.Scrape(context.Background(), "https://alwatwan.example.org/rss")
	require.NoError(t, err)
	require.Len(t, articles, 3)

	t.Run("enclosure image and published date", func(t *testing.T) {
		a := articles[0]
		assert.Equal(t, "Sommet regional a Moroni", a.Title)
		assert.Equal(t, "Les chefs d'Etat se reunissent.", a.Body)
		assert.Equal(t, "https://alwatwan.example.org/img/sommet.jpg", a.ImageValue())
		assert.Equal(t, "Politique", a.Category)
		assert.Equal(t, "2023-11-29", a.DateValue())
		assert.Equal(t, "alwatwan", a.Source)
	})

	t.Run("description fallback and relative urls", func(t *testing.T) {
		a := articles[1]
		assert.Equal(t, "https://alwatwan.example.org/vanille", a.DetailLink)
		assert.Equal(t, "https://alwatwan.example.org/img/vanille.jpg", a.ImageValue())
		assert.Equal(t, "Les prix montent.", a.Body)
		assert.Nil(t, a.Date)
	})

	t.Run("extracted image and unparseable date", func(t *testing.T) {
		a := articles[2]
		assert.Equal(t, "Coupe regionale", a.Title)
		assert.Equal(t, "https://alwatwan.example.org/img/sport.jpg", a.ImageValue())
		assert.Empty(t, a.Category)
		assert.Nil(t, a.Date)
	})
}

func TestFeed_ScrapeErrors(t *testing.T) {
	t.Run("feed not reachable", func(t *testing.T) {
		_, err := NewFeed(&fakeFetcher{}, &fakeExtractor{}, Options{}).Scrape(context.Background(), "https://alwatwan.example.org/rss")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load feed")
	})

	t.Run("not a feed", func(t *testing.T) {
		f := &fakeFetcher{pages: map[string]string{"https://alwatwan.example.org/rss": "just some text"}}
		_, err := NewFeed(f, &fakeExtractor{}, Options{}).Scrape(context.Background(), "https://alwatwan.example.org/rss")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse feed")
	})
}

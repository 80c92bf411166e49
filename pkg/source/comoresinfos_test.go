package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const comoresInfosListing = `<html><body>
<article><div><a href="https://comoresinfos.example.net/2023/11/port" title="Le port de Mutsamudu">x</a></div></article>
<article><div><a href="/2023/11/budget" title="Budget 2024 adopte">x</a></div></article>
<article><div><a href="/2023/11/untitled">no title attribute</a></div></article>
<article><div><a href="/2023/11/broken" title="Broken page">x</a></div></article>
</body></html>`

const comoresInfosDetail = `<html><body>
<header class="entry-header"><p>
	<span class="entry-meta-date"><a>30 novembre 2023</a></span>
	<span class="entry-meta-categories"><a>A la une</a><a>Economie</a></span>
</p></header>
<div class="entry-content">
	<p><a href="/wp-content/port.jpg"><img src="/wp-content/port.jpg"></a></p>
	<p>Le port rouvre apres travaux.</p>
	<p>Les navires sont attendus lundi.</p>
</div>
</body></html>`

const comoresInfosDetailNoImage = `<html><body>
<header class="entry-header"><p>
	<span class="entry-meta-date"><a>Nov 29, 2023</a></span>
	<span class="entry-meta-categories"><a>A la une</a><a>Politique</a></span>
</p></header>
<div class="entry-content"><p>Vote a l'assemblee.</p></div>
</body></html>`

func TestComoresInfos_Scrape(t *testing.T) {
	f := &fakeFetcher{
		pages: map[string]string{
			"https://comoresinfos.example.net/":               comoresInfosListing,
			"https://comoresinfos.example.net/2023/11/port":   comoresInfosDetail,
			"https://comoresinfos.example.net/2023/11/budget": comoresInfosDetailNoImage,
		},
		errs: map[string]error{
			"https://comoresinfos.example.net/2023/11/broken": errors.New("boom"),
		},
	}

	c := NewComoresInfos(f, Options{MaxConcurrent: 1})
	assert.Equal(t, "comoresinfos", c.Name())

	articles, err := c.Scrape(context.Background(), "https://comoresinfos.example.net/")
	require.NoError(t, err)
	require.Len(t, articles, 2)

	a := articles[0]
	assert.Equal(t, "Le port de Mutsamudu", a.Title)
	assert.Equal(t, "https://comoresinfos.example.net/2023/11/port", a.DetailLink)
	assert.Equal(t, "Le port rouvre apres travaux.\n\nLes navires sont attendus lundi.", a.Body)
	require.NotNil(t, a.Image)
	assert.Equal(t, "https://comoresinfos.example.net/wp-content/port.jpg", *a.Image)
	assert.Equal(t, "Economie", a.Category, "second category link is used")
	assert.Equal(t, "2023-11-30", a.DateValue())
	assert.Equal(t, "comoresinfos", a.Source)

	b := articles[1]
	assert.Equal(t, "Budget 2024 adopte", b.Title)
	assert.Nil(t, b.Image, "missing image is kept as null")
	assert.Equal(t, "Politique", b.Category)
	assert.Equal(t, "2023-11-29", b.DateValue())
	assert.Equal(t, "Vote a l'assemblee.", b.Body)

	assert.NotContains(t, f.calls, "https://comoresinfos.example.net/2023/11/untitled")
}

func TestComoresInfos_ScrapeListingFailure(t *testing.T) {
	f := &fakeFetcher{}
	_, err := NewComoresInfos(f, Options{}).Scrape(context.Background(), "https://comoresinfos.example.net/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load listing")
}

func TestComoresInfos_ScrapeEmptyListing(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{"https://comoresinfos.example.net/": "<html><body><p>maintenance</p></body></html>"}}
	articles, err := NewComoresInfos(f, Options{}).Scrape(context.Background(), "https://comoresinfos.example.net/")
	require.NoError(t, err)
	assert.Empty(t, articles)
}

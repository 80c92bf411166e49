package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/newsdesk/pkg/content"
)

const gazetteListing = `<html><body>
<div class="actu-mini">
	<div class="actu-mini-img"><a href="/articles/1.html"><img src="/images/1.jpg"></a></div>
	<div class="actu-mini-caption"><a href="/articles/1.html"><h5>  Le port de Moroni rouvre  </h5></a></div>
	<div class="actu-mini-footer"><div><ul><li>29 novembre 2023</li><li>Redaction</li><li><a>Economie</a></li></ul></div></div>
</div>
<div class="actu-mini">
	<div class="actu-mini-img"><a href="/articles/2.html"><img src="images/2.jpg"></a></div>
	<div class="actu-mini-caption"><a href="/articles/2.html"><h5>Election partielle</h5></a></div>
	<div class="actu-mini-footer"><div><ul><li>29 Nov</li><li>Redaction</li><li><a>Politique</a></li></ul></div></div>
</div>
<div class="actu-mini">
	<div class="actu-mini-caption"><a href="/articles/3.html"><h5>No image here</h5></a></div>
</div>
<div class="actu-mini">
	<div class="actu-mini-img"><a href="/articles/4.html"><img src="/images/4.jpg"></a></div>
	<div class="actu-mini-caption"><a href="/articles/4.html"><h5>Detail unavailable</h5></a></div>
	<div class="actu-mini-footer"><div><ul><li>garbage date</li></ul></div></div>
</div>
<div class="actu-mini">
	<div class="actu-mini-img"><img src="/images/5.jpg"></div>
	<div class="actu-mini-caption"><h5>No link</h5></div>
</div>
</body></html>`

const gazetteDetail = `<html><body>
<div class="article-in">
	<div>breadcrumbs</div>
	<div>share buttons</div>
	<div><div class="article-content">
		<p>Premier paragraphe.</p>
		<p>  Second paragraphe.  </p>
		<p>La Gazette des Comores, tous droits reserves.</p>
	</div></div>
</div>
</body></html>`

func TestGazette_Scrape(t *testing.T) {
	f := &fakeFetcher{
		pages: map[string]string{
			"https://gazette.example.com/":                gazetteListing,
			"https://gazette.example.com/articles/1.html": gazetteDetail,
			"https://gazette.example.com/articles/2.html": `<html><body><div class="article-in"><div></div><div></div><div><div class="article-content"><p>Only footer</p></div></div></div></body></html>`,
		},
		errs: map[string]error{
			"https://gazette.example.com/articles/4.html": errors.New("503 forever"),
		},
	}

	g := NewGazette(f, Options{})
	assert.Equal(t, "gazette", g.Name())

	articles, err := g.Scrape(context.Background(), "https://gazette.example.com/")
	require.NoError(t, err)
	require.Len(t, articles, 2, "entries without image/link and failed details are dropped")

	a := articles[0]
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "Le port de Moroni rouvre", a.Title)
	assert.Equal(t, "https://gazette.example.com/articles/1.html", a.DetailLink)
	assert.Equal(t, "https://gazette.example.com/images/1.jpg", a.ImageValue())
	assert.Equal(t, "Premier paragraphe.\n\nSecond paragraphe.", a.Body, "last paragraph excluded")
	assert.Equal(t, "Economie", a.Category)
	assert.Equal(t, "2023-11-29", a.DateValue())
	assert.Equal(t, "gazette", a.Source)

	b := articles[1]
	assert.Equal(t, "Election partielle", b.Title)
	assert.Equal(t, "https://gazette.example.com/images/2.jpg", b.ImageValue())
	assert.Empty(t, b.Body)
	assert.Equal(t, time.Now().Format("2006")+"-11-29", b.DateValue(), "partial date gets the current year")

	calls := append([]string(nil), f.calls...)
	sort.Strings(calls)
	assert.Equal(t, []string{
		"https://gazette.example.com/",
		"https://gazette.example.com/articles/1.html",
		"https://gazette.example.com/articles/2.html",
		"https://gazette.example.com/articles/4.html",
	}, calls, "incomplete listing entries are not fetched")
}

func TestGazette_ScrapeUnparseableDate(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://gazette.example.com/": `<div class="actu-mini">
			<div class="actu-mini-img"><a><img src="/i.jpg"></a></div>
			<div class="actu-mini-caption"><a href="/a.html"><h5>Title</h5></a></div>
			<div class="actu-mini-footer"><div><ul><li>hier</li></ul></div></div></div>`,
		"https://gazette.example.com/a.html": gazetteDetail,
	}}

	articles, err := NewGazette(f, Options{Name: "lagazette"}).Scrape(context.Background(), "https://gazette.example.com/")
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Nil(t, articles[0].Date)
	assert.Equal(t, "lagazette", articles[0].Source)
}

func TestGazette_ScrapeListingFailure(t *testing.T) {
	f := &fakeFetcher{errs: map[string]error{"https://gazette.example.com/": errors.New("down")}}
	articles, err := NewGazette(f, Options{}).Scrape(context.Background(), "https://gazette.example.com/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load listing")
	assert.Nil(t, articles)
}

func TestGazette_ScrapeWithBaseURL(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://gazette.example.com/list": `<div class="actu-mini">
			<div class="actu-mini-img"><a><img src="i.jpg"></a></div>
			<div class="actu-mini-caption"><a href="a.html"><h5>Title</h5></a></div></div>`,
		"https://cdn.example.com/a.html": gazetteDetail,
	}}

	articles, err := NewGazette(f, Options{BaseURL: "https://cdn.example.com/"}).Scrape(context.Background(), "https://gazette.example.com/list")
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "https://cdn.example.com/i.jpg", articles[0].ImageValue())
}

func TestGazette_ScrapeOverHTTPWithRetries(t *testing.T) {
	var detailHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(gazetteListing))
	})
	mux.HandleFunc("/articles/1.html", func(w http.ResponseWriter, r *http.Request) {
		if detailHits.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(gazetteDetail))
	})
	mux.HandleFunc("/articles/2.html", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/articles/4.html", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	fetcher := content.NewHTTPFetcher(content.FetcherParams{RetryDelay: 10 * time.Millisecond})
	articles, err := NewGazette(fetcher, Options{}).Scrape(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	require.Len(t, articles, 1, "article 2 exhausts retries, article 4 is not found")
	assert.Equal(t, "Le port de Moroni rouvre", articles[0].Title)
	assert.True(t, strings.HasPrefix(articles[0].DetailLink, srv.URL))
	assert.Equal(t, int32(3), detailHits.Load())
}

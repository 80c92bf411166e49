// Package aggregator runs all configured source adapters concurrently and merges
// their articles into a single list ordered by publication date.
package aggregator

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/newsdesk/pkg/domain"
)

// Adapter scrapes a single site
type Adapter interface {
	Name() string
	Scrape(ctx context.Context, listingURL string) ([]domain.Article, error)
}

// Source binds an adapter to the listing url it scrapes
type Source struct {
	Name    string
	URL     string
	Adapter Adapter
}

// Result is the outcome of a single source in a run
type Result struct {
	Source   string
	Articles int
	Err      error
	Duration time.Duration
}

// Aggregator merges articles of all sources
type Aggregator struct {
	mu      sync.Mutex
	results []Result
}

// New makes an Aggregator
func New() *Aggregator {
	return &Aggregator{}
}

// Run scrapes every source concurrently. A failing source contributes nothing and never
// affects the others. Articles are concatenated in source order and sorted by date,
// newest first, with undated articles last.
func (a *Aggregator) Run(ctx context.Context, sources []Source) []domain.Article {
	perSource := make([][]domain.Article, len(sources))
	results := make([]Result, len(sources))

	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			st := time.Now()
			articles, err := scrape(ctx, src)
			results[i] = Result{Source: src.Name, Articles: len(articles), Err: err, Duration: time.Since(st)}
			if err != nil {
				lgr.Printf("[WARN] source %s failed: %v", src.Name, err)
				return nil
			}
			lgr.Printf("[INFO] source %s: %d articles in %v", src.Name, len(articles), time.Since(st).Round(time.Millisecond))
			perSource[i] = articles
			return nil
		})
	}
	_ = g.Wait()

	a.mu.Lock()
	a.results = results
	a.mu.Unlock()

	total := 0
	for _, arts := range perSource {
		total += len(arts)
	}
	merged := make([]domain.Article, 0, total)
	for _, arts := range perSource {
		merged = append(merged, arts...)
	}
	SortByDate(merged)
	return merged
}

// Results returns per-source outcomes of the last Run
func (a *Aggregator) Results() []Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	res := make([]Result, len(a.results))
	copy(res, a.results)
	return res
}

// SortByDate orders articles newest first. Articles without a date go last,
// ties keep their relative order.
func SortByDate(articles []domain.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		di, dj := articles[i].Date, articles[j].Date
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		}
		// canonical YYYY-MM-DD compares lexicographically
		return *di > *dj
	})
}

// scrape calls the adapter and turns a panic into an error
func scrape(ctx context.Context, src Source) (articles []domain.Article, err error) {
	defer func() {
		if r := recover(); r != nil {
			lgr.Printf("[ERROR] source %s panicked: %v\n%s", src.Name, r, debug.Stack())
			articles, err = nil, fmt.Errorf("source %s panicked: %v", src.Name, r)
		}
	}()
	if src.Adapter == nil {
		return nil, fmt.Errorf("no adapter for source %s", src.Name)
	}
	return src.Adapter.Scrape(ctx, src.URL)
}

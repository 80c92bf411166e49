package main

import (
	"fmt"

	"github.com/umputun/newsdesk/pkg/aggregator"
	"github.com/umputun/newsdesk/pkg/config"
	"github.com/umputun/newsdesk/pkg/source"
)

// buildSources makes an adapter for every configured source, keeping the configured order
func buildSources(cfg *config.Config, fetcher source.Fetcher, extractor source.TextExtractor) ([]aggregator.Source, error) {
	res := make([]aggregator.Source, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		opts := source.Options{Name: sc.Name, BaseURL: sc.BaseURL, MaxConcurrent: cfg.Fetch.MaxConcurrent}

		var adapter aggregator.Adapter
		switch sc.Kind {
		case config.KindGazette:
			adapter = source.NewGazette(fetcher, opts)
		case config.KindComoresInfos:
			adapter = source.NewComoresInfos(fetcher, opts)
		case config.KindRSS:
			adapter = source.NewFeed(fetcher, extractor, opts)
		default:
			return nil, fmt.Errorf("unknown kind %q of source %s", sc.Kind, sc.Name)
		}

		res = append(res, aggregator.Source{Name: sc.Name, URL: sc.URL, Adapter: adapter})
	}
	return res, nil
}

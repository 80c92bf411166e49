package server

import (
	"net/http"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/newsdesk/pkg/config"
	"github.com/umputun/newsdesk/pkg/feed"
)

// rssHandler serves RSS feed of the snapshot
// Supports both /rss/{category} and /rss?category=... patterns
func (s *Server) rssHandler(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	if category == "" {
		category = r.URL.Query().Get("category")
	}

	articles, err := s.snapshot.Read()
	if err != nil {
		lgr.Printf("[ERROR] failed to read snapshot for RSS: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	generator := feed.NewGenerator(s.config.GetFullConfig().Server.BaseURL)
	rss, err := generator.GenerateRSS(articles, category)
	if err != nil {
		lgr.Printf("[ERROR] failed to generate RSS feed: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(rss)); err != nil {
		lgr.Printf("[ERROR] failed to write RSS response: %v", err)
	}
}

// opmlHandler lists the scraped sources as OPML
func (s *Server) opmlHandler(w http.ResponseWriter, _ *http.Request) {
	cfg := s.config.GetFullConfig()
	outlines := make([]feed.Outline, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		kind := "link"
		if src.Kind == config.KindRSS {
			kind = "rss"
		}
		outlines = append(outlines, feed.Outline{Title: src.Name, URL: src.URL, Type: kind})
	}

	opml, err := feed.NewGenerator(cfg.Server.BaseURL).GenerateOPML(outlines)
	if err != nil {
		lgr.Printf("[ERROR] failed to generate OPML: %v", err)
		http.Error(w, "Failed to generate OPML", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/x-opml; charset=utf-8")
	if _, err := w.Write([]byte(opml)); err != nil {
		lgr.Printf("[ERROR] failed to write OPML response: %v", err)
	}
}

package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/newsdesk/pkg/domain"
	"github.com/umputun/newsdesk/pkg/store"
)

// articlesHandler returns the snapshot articles, newest first.
// Optional category and source query params filter the list.
func (s *Server) articlesHandler(w http.ResponseWriter, r *http.Request) {
	articles, err := s.snapshot.Read()
	if err != nil {
		if errors.Is(err, store.ErrNoSnapshot) {
			lgr.Printf("[WARN] articles requested before the first snapshot")
		} else {
			lgr.Printf("[ERROR] failed to read snapshot: %v", err)
		}
		RenderError(w, r, errors.New("failed to load articles"), http.StatusInternalServerError)
		return
	}

	articles = filterArticles(articles, r.URL.Query().Get("category"), r.URL.Query().Get("source"))

	if mod, err := s.snapshot.Modified(); err == nil {
		w.Header().Set("Last-Modified", mod.UTC().Format(http.TimeFormat))
	}
	RenderJSON(w, r, http.StatusOK, articles)
}

// categoriesHandler returns the configured category list
func (s *Server) categoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories := s.config.GetFullConfig().Categories
	if len(categories) == 0 {
		categories = domain.DefaultCategories()
	}
	RenderJSON(w, r, http.StatusOK, categories)
}

// statusHandler returns server and aggregation status. Status is "degraded"
// when the last aggregation run failed.
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	st := s.scheduler.Status()
	state := "ok"
	if st.LastError != "" {
		state = "degraded"
	}
	status := map[string]any{
		"status":    state,
		"version":   s.version,
		"time":      time.Now().UTC(),
		"scheduler": st,
	}
	RenderJSON(w, r, http.StatusOK, status)
}

// filterArticles keeps articles matching category and source, empty filter matches all
func filterArticles(articles []domain.Article, category, source string) []domain.Article {
	if category == "" && source == "" {
		return articles
	}
	res := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if category != "" && !strings.EqualFold(a.Category, category) {
			continue
		}
		if source != "" && !strings.EqualFold(a.Source, source) {
			continue
		}
		res = append(res, a)
	}
	return res
}

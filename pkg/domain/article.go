package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrMissingField is returned when a scraped candidate lacks a required field
var ErrMissingField = errors.New("missing required field")

// Article is the canonical unit of the published feed
type Article struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Body       string  `json:"body"`
	Image      *string `json:"image"`
	Category   string  `json:"category"`
	Date       *string `json:"date"`
	DetailLink string  `json:"detail_link"`
	Source     string  `json:"source,omitempty"`
}

// ArticleParams holds raw values collected by a source adapter
type ArticleParams struct {
	Title      string
	Body       string
	Image      string
	Category   string
	Date       string // normalized YYYY-MM-DD, empty if unknown
	DetailLink string
	Source     string

	ImageOptional bool // source publishes articles without images
}

// NewArticle builds an Article with a fresh id. Title and detail link are always
// required, image is required unless ImageOptional is set.
func NewArticle(p ArticleParams) (Article, error) {
	title := strings.TrimSpace(p.Title)
	link := strings.TrimSpace(p.DetailLink)
	image := strings.TrimSpace(p.Image)

	switch {
	case title == "":
		return Article{}, fmt.Errorf("title: %w", ErrMissingField)
	case link == "":
		return Article{}, fmt.Errorf("detail link: %w", ErrMissingField)
	case image == "" && !p.ImageOptional:
		return Article{}, fmt.Errorf("image: %w", ErrMissingField)
	}

	a := Article{
		ID:         uuid.NewString(),
		Title:      title,
		Body:       strings.TrimSpace(p.Body),
		Category:   strings.TrimSpace(p.Category),
		DetailLink: link,
		Source:     p.Source,
	}
	if image != "" {
		a.Image = &image
	}
	if date := strings.TrimSpace(p.Date); date != "" {
		a.Date = &date
	}
	return a, nil
}

// DateValue returns the normalized date or empty string if unknown
func (a Article) DateValue() string {
	if a.Date == nil {
		return ""
	}
	return *a.Date
}

// ImageValue returns the image url or empty string if the article has none
func (a Article) ImageValue() string {
	if a.Image == nil {
		return ""
	}
	return *a.Image
}

package content

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/markusmobius/go-trafilatura"
)

// Extractor pulls the main article text out of an already fetched page using trafilatura.
// Used for sources without fixed body selectors.
type Extractor struct {
	minTextLength int
}

// ExtractResult is the readable part of a page
type ExtractResult struct {
	Text  string
	Title string
	Image string
	Date  time.Time
}

// NewExtractor makes an extractor rejecting results shorter than minTextLength characters
func NewExtractor(minTextLength int) *Extractor {
	return &Extractor{minTextLength: minTextLength}
}

// Extract returns the main text of the html page located at pageURL
func (e *Extractor) Extract(page []byte, pageURL string) (*ExtractResult, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}

	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		ExcludeTables:   false,
		IncludeImages:   false,
		IncludeLinks:    false,
		Deduplicate:     true,
		OriginalURL:     parsedURL,
	}

	result, err := trafilatura.Extract(bytes.NewReader(page), opts)
	if err != nil {
		return nil, fmt.Errorf("extract content from %s: %w", pageURL, err)
	}
	if result == nil {
		return nil, fmt.Errorf("no content extracted from %s", pageURL)
	}

	text := strings.TrimSpace(result.ContentText)
	if text == "" {
		return nil, fmt.Errorf("no text content extracted from %s", pageURL)
	}
	if len([]rune(text)) < e.minTextLength {
		return nil, fmt.Errorf("extracted text too short (%d chars) from %s", len([]rune(text)), pageURL)
	}

	return &ExtractResult{
		Text:  text,
		Title: strings.TrimSpace(result.Metadata.Title),
		Image: strings.TrimSpace(result.Metadata.Image),
		Date:  result.Metadata.Date,
	}, nil
}

package content

import (
	"net/http"
)

// DefaultUserAgent identifies requests as a desktop browser, upstream sites reject unidentified clients
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"

// acceptLanguage prefers french, the language of the scraped sites
const acceptLanguage = "fr-FR,fr;q=0.9,en-US;q=0.8,en;q=0.7"

// addBrowserHeaders sets the fixed identifying header set on every outbound request.
// Accept-Encoding is left to the transport so compressed responses are decoded transparently.
func addBrowserHeaders(req *http.Request, userAgent string) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/rss+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", acceptLanguage)
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
}

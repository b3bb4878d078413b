package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Elements stripped before extracting page text: boilerplate that would
// otherwise pollute the chunks with navigation and markup noise.
var strippedSelectors = []string{"script", "style", "nav", "footer", "header"}

// Fetcher downloads a report page and reduces it to plain text.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a fetcher with a bounded timeout for the whole request.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// FetchURL retrieves the page at url and returns its visible text content.
func (f *Fetcher) FetchURL(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetching %s: %s", url, resp.Status)
	}
	return stripHTML(resp.Body)
}

// StripHTML reduces an HTML document to its visible text, one line per
// text node, mirroring what the URL fetcher does for fetched pages.
func StripHTML(html string) (string, error) {
	return stripHTML(strings.NewReader(html))
}

func stripHTML(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}
	for _, sel := range strippedSelectors {
		doc.Find(sel).Remove()
	}
	var lines []string
	doc.Find("body").Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		for _, line := range strings.Split(text, "\n") {
			if t := strings.TrimSpace(line); t != "" {
				lines = append(lines, t)
			}
		}
	})
	return strings.Join(lines, "\n"), nil
}

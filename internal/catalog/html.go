package catalog

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

const (
	// DefaultSelector matches one category name per element on a monitor listing page
	DefaultSelector = "[data-category]"
	UserAgent       = "subwatch/1.0 (github.com/pfrederiksen/subwatch)"
	Timeout         = 30 * time.Second
)

// Fetcher retrieves category names from a monitor listing page
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with the default timeout
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: Timeout,
		},
	}
}

// Fetch downloads url and extracts category names matched by selector
func (f *Fetcher) Fetch(url, selector string) ([]string, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetching page")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return ParseHTML(resp.Body, selector)
}

// ParseHTML extracts category names from an HTML document. An element's data-category
// attribute wins over its text content. The result keeps document order and may contain
// duplicates; New takes care of both.
func ParseHTML(r io.Reader, selector string) ([]string, error) {
	if selector == "" {
		selector = DefaultSelector
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "parsing HTML")
	}

	names := make([]string, 0)
	doc.Find(selector).Each(func(i int, sel *goquery.Selection) {
		name, ok := sel.Attr("data-category")
		if !ok || strings.TrimSpace(name) == "" {
			name = sel.Text()
		}
		name = strings.Join(strings.Fields(name), " ")
		if name != "" {
			names = append(names, name)
		}
	})

	return names, nil
}

// Package page loads a single review page, from disk or over HTTP, into a
// goquery document ready for extraction.
package page

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultUserAgent identifies dslreviews to the review site.
const DefaultUserAgent = "dslreviews/1.0 (ISP review extractor)"

// Options controls how pages are fetched.
type Options struct {
	Timeout   time.Duration
	UserAgent string

	// Client is used instead of a new http.Client when set.
	Client *http.Client
}

// DefaultOptions returns a 10 second timeout and the default User-Agent.
func DefaultOptions() Options {
	return Options{
		Timeout:   10 * time.Second,
		UserAgent: DefaultUserAgent,
	}
}

// IsURL reports whether target should be fetched rather than read from disk.
func IsURL(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

// Load reads target as a URL or a file path, depending on its prefix.
func Load(ctx context.Context, target string, opts Options) (*goquery.Document, error) {
	if IsURL(target) {
		return Fetch(ctx, target, opts)
	}
	return Open(target)
}

// Open parses the HTML file at path.
func Open(path string) (*goquery.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse parses HTML from r.
func Parse(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// Fetch retrieves url and parses the response body. Only the one page is
// fetched; links are not followed.
func Fetch(ctx context.Context, url string, opts Options) (*goquery.Document, error) {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	return Parse(resp.Body)
}

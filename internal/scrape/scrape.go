/*
Package scrape fetches forum, wiki and archive pages and extracts text snippets that
mention a place name.
*/
package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shanehull/digmap/internal/metrics"
	"github.com/shanehull/digmap/internal/types"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

const (
	defaultTimeout     = 15 * time.Second
	defaultMaxSnippets = 3
	defaultUserAgent   = "Mozilla/5.0 (compatible; digmap/1.0)"
)

var client = &http.Client{
	Timeout: 60 * time.Second,
}

// Fetcher is one configured external source.
type Fetcher interface {
	ID() string
	Fetch(ctx context.Context, placeName string) ([]types.SourceSnippet, error)
}

// PageSource scrapes a single page and keeps content nodes mentioning the place.
type PageSource struct {
	Name string
	// URL may contain one %s verb, replaced by the query-escaped place name.
	URL         string
	Selector    Selector
	UserAgent   string
	MaxChars    int
	MaxSnippets int
	Timeout     time.Duration
	Client      *http.Client
}

func (s *PageSource) ID() string {
	if s.Name != "" {
		return s.Name
	}
	return s.URL
}

func (s *PageSource) Fetch(ctx context.Context, placeName string) ([]types.SourceSnippet, error) {
	pageURL := expandURL(s.URL, placeName)

	doc, err := fetchDocument(ctx, s.Client, pageURL, s.UserAgent, s.Timeout)
	if err != nil {
		return nil, err
	}

	c := collector{
		sourceID:    pageURL,
		placeName:   placeName,
		maxChars:    s.MaxChars,
		maxSnippets: s.MaxSnippets,
	}
	for _, n := range findAll(doc, s.Selector) {
		if c.add(extractText(n)) {
			break
		}
	}
	return c.snippets, nil
}

func expandURL(tmpl, placeName string) string {
	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, url.QueryEscape(placeName))
	}
	return tmpl
}

// fetchDocument issues one GET and parses the body as HTML, decoding legacy charsets.
func fetchDocument(ctx context.Context, hc *http.Client, pageURL, userAgent string, timeout time.Duration) (*html.Node, error) {
	if hc == nil {
		hc = client
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, types.NewUnavailable(pageURL, types.ReasonMalformed, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := hc.Do(req)
	if err != nil {
		return nil, types.NewUnavailable(pageURL, types.ReasonNetwork, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Debug("failed to close response body", "url", pageURL, "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, types.NewUnavailable(pageURL, types.ReasonStatus, fmt.Errorf("received status code %d", resp.StatusCode))
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, types.NewUnavailable(pageURL, types.ReasonMalformed, fmt.Errorf("detect charset: %w", err))
	}

	doc, err := html.Parse(body)
	if err != nil {
		return nil, types.NewUnavailable(pageURL, types.ReasonMalformed, fmt.Errorf("parse HTML: %w", err))
	}
	return doc, nil
}

// collector applies the place-name filter, the length cap and the count cap.
type collector struct {
	sourceID    string
	placeName   string
	maxChars    int
	maxSnippets int
	snippets    []types.SourceSnippet
}

// add reports whether the collector is full.
func (c *collector) add(raw string) bool {
	limit := c.maxSnippets
	if limit <= 0 {
		limit = defaultMaxSnippets
	}
	if len(c.snippets) >= limit {
		return true
	}

	place := strings.TrimSpace(c.placeName)
	if place == "" {
		return false
	}

	text := normalizeWhitespace(raw)
	if !containsFold(text, place) {
		return false
	}

	text, truncated := excerpt(text, place, c.maxChars)
	c.snippets = append(c.snippets, types.SourceSnippet{
		SourceID:  c.sourceID,
		Text:      text,
		Truncated: truncated,
	})
	return len(c.snippets) >= limit
}

// Outcome is the result of running one fetcher: snippets, or the reason there are none.
type Outcome struct {
	SourceID string
	Snippets []types.SourceSnippet
	Err      error
}

// Run executes f and absorbs its failure: the error is logged and kept on the
// outcome, and Snippets is always non-nil.
func Run(ctx context.Context, f Fetcher, placeName string) Outcome {
	start := time.Now()
	snippets, err := f.Fetch(ctx, placeName)
	metrics.SourceFetchDuration.WithLabelValues(f.ID()).Observe(time.Since(start).Seconds())

	if err != nil {
		reason := types.ReasonOf(err)
		metrics.SourceFetches.WithLabelValues(f.ID(), string(reason)).Inc()
		slog.WarnContext(ctx, "source fetch failed",
			"source", f.ID(),
			"place", placeName,
			"reason", reason,
			"error", err,
		)
		return Outcome{SourceID: f.ID(), Snippets: []types.SourceSnippet{}, Err: err}
	}

	metrics.SourceFetches.WithLabelValues(f.ID(), "ok").Inc()
	if snippets == nil {
		snippets = []types.SourceSnippet{}
	}
	return Outcome{SourceID: f.ID(), Snippets: snippets}
}

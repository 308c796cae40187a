package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/shanehull/digmap/internal/types"

	"golang.org/x/net/html"
)

// WikiSource searches a wiki, then fetches the top article pages one by one.
type WikiSource struct {
	Name string
	// SearchURL must contain one %s verb for the query-escaped place name.
	SearchURL string
	// Result selects search result rows; the first link inside each row is followed.
	Result  Selector
	Content Selector
	// Exclude lists sub-regions of the content (tables, infoboxes, thumbnails)
	// removed before text extraction.
	Exclude         []Selector
	MaxArticles     int
	MaxChars        int
	MaxSnippets     int
	PolitenessDelay time.Duration
	UserAgent       string
	Timeout         time.Duration
	Client          *http.Client
}

var defaultExclude = []Selector{
	MustSelector("table"),
	MustSelector(".infobox"),
	MustSelector(".thumb"),
	MustSelector("figure"),
	MustSelector(".navbox"),
	MustSelector("sup.reference"),
}

func (s *WikiSource) ID() string {
	if s.Name != "" {
		return s.Name
	}
	return s.SearchURL
}

func (s *WikiSource) Fetch(ctx context.Context, placeName string) ([]types.SourceSnippet, error) {
	searchURL := expandURL(s.SearchURL, placeName)

	doc, err := fetchDocument(ctx, s.Client, searchURL, s.UserAgent, s.Timeout)
	if err != nil {
		return nil, fmt.Errorf("wiki search: %w", err)
	}

	articles, err := s.articleLinks(searchURL, linkHrefs(findAll(doc, s.Result)))
	if err != nil {
		return nil, err
	}

	c := collector{
		placeName:   placeName,
		maxChars:    s.MaxChars,
		maxSnippets: s.MaxSnippets,
	}

	// Exact title matches redirect straight to the article.
	if len(articles) == 0 {
		c.sourceID = searchURL
		s.collectArticle(doc, &c)
		return c.snippets, nil
	}

	for i, articleURL := range articles {
		if i > 0 && !s.pause(ctx) {
			break
		}

		article, err := fetchDocument(ctx, s.Client, articleURL, s.UserAgent, s.Timeout)
		if err != nil {
			slog.WarnContext(ctx, "wiki article fetch failed", "source", s.ID(), "url", articleURL, "error", err)
			continue
		}

		c.sourceID = articleURL
		if s.collectArticle(article, &c) {
			break
		}
	}

	return c.snippets, nil
}

// articleLinks resolves hrefs against the search page and drops duplicates.
func (s *WikiSource) articleLinks(searchURL string, hrefs []string) ([]string, error) {
	base, err := url.Parse(searchURL)
	if err != nil {
		return nil, types.NewUnavailable(searchURL, types.ReasonMalformed, err)
	}

	limit := s.MaxArticles
	if limit <= 0 {
		limit = 3
	}

	seen := make(map[string]struct{}, len(hrefs))
	var links []string
	for _, href := range hrefs {
		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		abs := base.ResolveReference(ref)
		abs.Fragment = ""
		key := abs.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		links = append(links, key)
		if len(links) >= limit {
			break
		}
	}
	return links, nil
}

// collectArticle offers the cleaned main content region of one article to c.
func (s *WikiSource) collectArticle(doc *html.Node, c *collector) bool {
	region := findFirst(doc, s.Content)
	if region == nil {
		return false
	}

	exclude := s.Exclude
	if exclude == nil {
		exclude = defaultExclude
	}
	removeAll(region, exclude)

	return c.add(extractText(region))
}

// pause waits out the politeness delay and reports whether to continue.
func (s *WikiSource) pause(ctx context.Context) bool {
	if s.PolitenessDelay <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(s.PolitenessDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

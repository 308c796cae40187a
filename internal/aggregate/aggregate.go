/*
Package aggregate runs a group of sources for one place name and merges their
snippets into a labelled document.
*/
package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/shanehull/digmap/internal/scrape"
	"github.com/shanehull/digmap/internal/types"
)

const (
	DefaultConcurrency = 4

	// NoData stands in for a group that produced no snippets.
	NoData = "Нет данных с тематических сайтов"
)

type Aggregator struct {
	// Concurrency bounds the number of fetchers in flight per group.
	Concurrency int
}

// Aggregate runs fetchers with the default concurrency limit.
func Aggregate(ctx context.Context, label, placeName string, fetchers []scrape.Fetcher) types.AggregatedDocument {
	return Aggregator{}.Aggregate(ctx, label, placeName, fetchers)
}

// Aggregate runs every fetcher and concatenates their snippets in fetcher order,
// regardless of completion order. Failed fetchers are listed in Failures.
func (a Aggregator) Aggregate(ctx context.Context, label, placeName string, fetchers []scrape.Fetcher) types.AggregatedDocument {
	limit := a.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, limit)
	slots := make([]scrape.Outcome, len(fetchers))

	for i, f := range fetchers {
		wg.Add(1)
		sem <- struct{}{}

		go func(i int, f scrape.Fetcher) {
			defer wg.Done()
			defer func() { <-sem }()

			slots[i] = scrape.Run(ctx, f, placeName)
		}(i, f)
	}
	wg.Wait()

	doc := types.AggregatedDocument{
		Label:    label,
		Snippets: []types.SourceSnippet{},
	}
	for _, out := range slots {
		if out.Err != nil {
			doc.Failures = append(doc.Failures, types.Failure{
				SourceID: out.SourceID,
				Reason:   types.ReasonOf(out.Err),
			})
			continue
		}
		doc.Snippets = append(doc.Snippets, out.Snippets...)
	}
	doc.Empty = len(doc.Snippets) == 0

	slog.DebugContext(ctx, "aggregated group",
		"label", label,
		"place", placeName,
		"snippets", len(doc.Snippets),
		"failures", len(doc.Failures),
	)
	return doc
}

// AggregateGroups aggregates each group concurrently and returns the documents in
// group order.
func (a Aggregator) AggregateGroups(ctx context.Context, placeName string, groups []scrape.Group) []types.AggregatedDocument {
	docs := make([]types.AggregatedDocument, len(groups))

	var wg sync.WaitGroup
	for i, g := range groups {
		wg.Add(1)
		go func(i int, g scrape.Group) {
			defer wg.Done()
			docs[i] = a.Aggregate(ctx, g.Label, placeName, g.Fetchers)
		}(i, g)
	}
	wg.Wait()

	return docs
}

// Render formats the snippets as one "[source] text" line each, or NoData when
// the document is empty.
func Render(doc types.AggregatedDocument) string {
	if doc.Empty || len(doc.Snippets) == 0 {
		return NoData
	}

	var sb strings.Builder
	for i, s := range doc.Snippets {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "[%s] %s", s.SourceID, s.Text)
	}
	return sb.String()
}

// Combine renders several documents under their labels, separated by blank lines.
func Combine(docs ...types.AggregatedDocument) string {
	sections := make([]string, 0, len(docs))
	for _, doc := range docs {
		sections = append(sections, fmt.Sprintf("%s:\n%s", doc.Label, Render(doc)))
	}
	return strings.Join(sections, "\n\n")
}

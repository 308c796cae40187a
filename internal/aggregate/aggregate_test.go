package aggregate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shanehull/digmap/internal/scrape"
	"github.com/shanehull/digmap/internal/types"
)

type mockFetcher struct {
	id      string
	fetchFn func(ctx context.Context, placeName string) ([]types.SourceSnippet, error)
}

func (m *mockFetcher) ID() string { return m.id }
func (m *mockFetcher) Fetch(ctx context.Context, placeName string) ([]types.SourceSnippet, error) {
	return m.fetchFn(ctx, placeName)
}

func delayed(id string, delay time.Duration, texts ...string) *mockFetcher {
	return &mockFetcher{id: id, fetchFn: func(ctx context.Context, placeName string) ([]types.SourceSnippet, error) {
		time.Sleep(delay)
		var out []types.SourceSnippet
		for _, t := range texts {
			out = append(out, types.SourceSnippet{SourceID: id, Text: t})
		}
		return out, nil
	}}
}

func TestAggregateKeepsFetcherOrder(t *testing.T) {
	fetchers := []scrape.Fetcher{
		delayed("a", 60*time.Millisecond, "a1", "a2"),
		delayed("b", 0, "b1"),
		delayed("c", 30*time.Millisecond, "c1"),
	}

	doc := Aggregate(context.Background(), "Форумы", "Самара", fetchers)

	var got []string
	for _, s := range doc.Snippets {
		got = append(got, s.Text)
	}
	if strings.Join(got, ",") != "a1,a2,b1,c1" {
		t.Errorf("expected configuration order, got %v", got)
	}
	if doc.Empty {
		t.Error("document with snippets marked empty")
	}
	if doc.Label != "Форумы" {
		t.Errorf("unexpected label %q", doc.Label)
	}
}

func TestAggregateRecordsFailures(t *testing.T) {
	fetchers := []scrape.Fetcher{
		&mockFetcher{id: "down", fetchFn: func(ctx context.Context, placeName string) ([]types.SourceSnippet, error) {
			return nil, types.NewUnavailable("down", types.ReasonStatus, errors.New("503"))
		}},
		delayed("up", 0, "клад"),
	}

	doc := Aggregate(context.Background(), "g", "Самара", fetchers)

	if len(doc.Snippets) != 1 || doc.Snippets[0].SourceID != "up" {
		t.Fatalf("expected only the healthy source, got %+v", doc.Snippets)
	}
	if len(doc.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(doc.Failures))
	}
	if doc.Failures[0] != (types.Failure{SourceID: "down", Reason: types.ReasonStatus}) {
		t.Errorf("unexpected failure %+v", doc.Failures[0])
	}
}

func TestAggregateAllEmpty(t *testing.T) {
	fetchers := []scrape.Fetcher{delayed("a", 0), delayed("b", 0)}

	doc := Aggregate(context.Background(), "g", "Самара", fetchers)

	if !doc.Empty {
		t.Error("expected empty document")
	}
	if doc.Snippets == nil || len(doc.Snippets) != 0 {
		t.Errorf("expected empty non-nil snippets, got %#v", doc.Snippets)
	}
	if Render(doc) != NoData {
		t.Errorf("expected NoData rendering, got %q", Render(doc))
	}
}

func TestAggregateNoFetchers(t *testing.T) {
	doc := Aggregate(context.Background(), "g", "Самара", nil)
	if !doc.Empty || doc.Snippets == nil {
		t.Errorf("expected empty document, got %+v", doc)
	}
}

func TestAggregateRespectsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	var fetchers []scrape.Fetcher
	for i := 0; i < 8; i++ {
		fetchers = append(fetchers, &mockFetcher{id: fmt.Sprint(i), fetchFn: func(ctx context.Context, placeName string) ([]types.SourceSnippet, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)
			return nil, nil
		}})
	}

	Aggregator{Concurrency: 2}.Aggregate(context.Background(), "g", "Самара", fetchers)

	if peak.Load() > 2 {
		t.Errorf("expected at most 2 concurrent fetches, saw %d", peak.Load())
	}
}

func TestAggregateGroupsOrder(t *testing.T) {
	groups := []scrape.Group{
		{Label: "first", Fetchers: []scrape.Fetcher{delayed("a", 40*time.Millisecond, "x")}},
		{Label: "second", Fetchers: []scrape.Fetcher{delayed("b", 0)}},
		{Label: "third", Fetchers: []scrape.Fetcher{delayed("c", 10*time.Millisecond, "y")}},
	}

	docs := Aggregator{}.AggregateGroups(context.Background(), "Самара", groups)

	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}
	for i, want := range []string{"first", "second", "third"} {
		if docs[i].Label != want {
			t.Errorf("docs[%d] = %q, want %q", i, docs[i].Label, want)
		}
	}
	if !docs[1].Empty {
		t.Error("second group should be empty")
	}
}

func TestRenderAndCombine(t *testing.T) {
	full := types.AggregatedDocument{
		Label: "Энциклопедия",
		Snippets: []types.SourceSnippet{
			{SourceID: "wiki", Text: "Самара основана в 1586 году."},
			{SourceID: "wiki", Text: "Крепость на Волге."},
		},
	}
	empty := types.AggregatedDocument{Label: "Старые карты", Snippets: []types.SourceSnippet{}, Empty: true}

	if got := Render(full); got != "[wiki] Самара основана в 1586 году.\n[wiki] Крепость на Волге." {
		t.Errorf("Render = %q", got)
	}

	want := "Энциклопедия:\n[wiki] Самара основана в 1586 году.\n[wiki] Крепость на Волге.\n\nСтарые карты:\n" + NoData
	if got := Combine(full, empty); got != want {
		t.Errorf("Combine = %q, want %q", got, want)
	}
}

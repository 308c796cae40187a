package geo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"unsafe"

	"github.com/shanehull/digmap/internal/types"

	"googlemaps.github.io/maps"
)

type mockProvider struct {
	mu          sync.Mutex
	searchCalls int
	searchFn    func(ctx context.Context, query string) ([]types.PlaceCandidate, error)
	reverseFn   func(ctx context.Context, coord types.Coordinate) (string, error)
}

func (m *mockProvider) Search(ctx context.Context, query string) ([]types.PlaceCandidate, error) {
	m.mu.Lock()
	m.searchCalls++
	m.mu.Unlock()
	return m.searchFn(ctx, query)
}

func (m *mockProvider) Reverse(ctx context.Context, coord types.Coordinate) (string, error) {
	return m.reverseFn(ctx, coord)
}

var samara = types.PlaceCandidate{
	DisplayName: "Самара, городской округ Самара, Самарская область, Россия",
	Coordinate:  types.Coordinate{Lat: 53.1959, Lon: 50.1002},
}

func TestForwardSearchCachesByExactQuery(t *testing.T) {
	p := &mockProvider{searchFn: func(ctx context.Context, query string) ([]types.PlaceCandidate, error) {
		if query == "Самара" {
			return []types.PlaceCandidate{samara}, nil
		}
		return nil, nil
	}}
	r := NewResolver(p, Options{})

	first := r.ForwardSearch(context.Background(), "Самара")
	second := r.ForwardSearch(context.Background(), "Самара")

	if p.searchCalls != 1 {
		t.Errorf("expected 1 provider call, got %d", p.searchCalls)
	}
	if len(first) == 0 || len(second) == 0 {
		t.Fatal("expected candidates")
	}
	if first[0].Coordinate != (types.Coordinate{Lat: 53.1959, Lon: 50.1002}) {
		t.Errorf("unexpected first candidate %+v", first[0])
	}

	r.ForwardSearch(context.Background(), "самара")
	if p.searchCalls != 2 {
		t.Errorf("cache key must be case-sensitive, got %d calls", p.searchCalls)
	}
}

func TestForwardSearchCachesEmptyButNotFailures(t *testing.T) {
	fail := true
	p := &mockProvider{searchFn: func(ctx context.Context, query string) ([]types.PlaceCandidate, error) {
		if fail {
			return nil, types.NewUnavailable("mock", types.ReasonNetwork, errors.New("down"))
		}
		return nil, nil
	}}
	r := NewResolver(p, Options{})

	got := r.ForwardSearch(context.Background(), "Атлантида")
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice on failure, got %#v", got)
	}

	fail = false
	r.ForwardSearch(context.Background(), "Атлантида")
	r.ForwardSearch(context.Background(), "Атлантида")
	if p.searchCalls != 2 {
		t.Errorf("expected failure to be retried and empty result cached, got %d calls", p.searchCalls)
	}
}

func TestSearchCacheIsBounded(t *testing.T) {
	c := newSearchCache(3)
	for i := 0; i < 5; i++ {
		c.put(fmt.Sprint(i), nil)
	}

	if c.len() != 3 {
		t.Fatalf("expected 3 entries, got %d", c.len())
	}
	for _, k := range []string{"0", "1"} {
		if _, ok := c.get(k); ok {
			t.Errorf("expected %q to be evicted", k)
		}
	}
	for _, k := range []string{"2", "3", "4"} {
		if _, ok := c.get(k); !ok {
			t.Errorf("expected %q to be cached", k)
		}
	}
}

func TestSearchCacheOwnsItsKeys(t *testing.T) {
	c := newSearchCache(10)

	buf := []byte("Самара")
	key := unsafe.String(&buf[0], len(buf))
	c.put(key, []types.PlaceCandidate{samara})
	copy(buf, "Сызрань")

	if _, ok := c.get("Самара"); !ok {
		t.Error("cached entry must survive reuse of the caller's key buffer")
	}
}

func TestForwardSearchReturnsCopies(t *testing.T) {
	p := &mockProvider{searchFn: func(ctx context.Context, query string) ([]types.PlaceCandidate, error) {
		return []types.PlaceCandidate{samara}, nil
	}}
	r := NewResolver(p, Options{})

	first := r.ForwardSearch(context.Background(), "Самара")
	first[0].DisplayName = "испорчено"

	second := r.ForwardSearch(context.Background(), "Самара")
	if second[0].DisplayName != samara.DisplayName {
		t.Errorf("caller mutation reached the cache: %q", second[0].DisplayName)
	}
	second[0].DisplayName = "снова"

	third := r.ForwardSearch(context.Background(), "Самара")
	if third[0].DisplayName != samara.DisplayName {
		t.Errorf("caller mutation of a cached result reached the cache: %q", third[0].DisplayName)
	}
	if p.searchCalls != 1 {
		t.Errorf("expected 1 provider call, got %d", p.searchCalls)
	}
}

func TestForwardSearchConcurrent(t *testing.T) {
	p := &mockProvider{searchFn: func(ctx context.Context, query string) ([]types.PlaceCandidate, error) {
		return []types.PlaceCandidate{samara}, nil
	}}
	r := NewResolver(p, Options{CacheSize: 10})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.ForwardSearch(context.Background(), fmt.Sprint(i%20))
		}(i)
	}
	wg.Wait()

	if r.cache.len() > 10 {
		t.Errorf("cache exceeded its bound: %d", r.cache.len())
	}
}

func TestReverseResolve(t *testing.T) {
	tests := []struct {
		name    string
		address string
		err     error
		want    string
	}{
		{name: "first segment", address: "Ширяево, Волжский район, Самарская область", want: "Ширяево"},
		{name: "no comma", address: "Жигули", want: "Жигули"},
		{name: "empty address", address: "", want: DefaultFallback},
		{name: "provider failure", err: types.NewUnavailable("mock", types.ReasonStatus, nil), want: DefaultFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &mockProvider{reverseFn: func(ctx context.Context, coord types.Coordinate) (string, error) {
				return tt.address, tt.err
			}}
			r := NewResolver(p, Options{})

			if got := r.ReverseResolve(context.Background(), samara.Coordinate); got != tt.want {
				t.Errorf("ReverseResolve = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNominatimSearch(t *testing.T) {
	var gotUA, gotCountry, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			http.NotFound(w, r)
			return
		}
		gotUA = r.Header.Get("User-Agent")
		gotCountry = r.URL.Query().Get("countrycodes")
		gotLang = r.URL.Query().Get("accept-language")
		fmt.Fprint(w, `[
			{"lat": "53.1959", "lon": "50.1002", "display_name": "Самара, Самарская область, Россия"},
			{"lat": "oops", "lon": "50.0", "display_name": "broken"}
		]`)
	}))
	defer srv.Close()

	n := &Nominatim{BaseURL: srv.URL, UserAgent: "map_application", CountryCodes: "RU", Language: "ru"}
	got, err := n.Search(context.Background(), "Самара")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 valid candidate, got %d", len(got))
	}
	if got[0].Coordinate != (types.Coordinate{Lat: 53.1959, Lon: 50.1002}) {
		t.Errorf("unexpected coordinate %+v", got[0].Coordinate)
	}
	if gotUA != "map_application" || gotCountry != "ru" || gotLang != "ru" {
		t.Errorf("unexpected request headers/params: ua=%q country=%q lang=%q", gotUA, gotCountry, gotLang)
	}
}

func TestNominatimReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("lat") {
		case "53.1959":
			fmt.Fprint(w, `{"display_name": "Самара, Самарская область, Россия"}`)
		case "0":
			fmt.Fprint(w, `{"error": "Unable to geocode"}`)
		default:
			fmt.Fprint(w, `not json`)
		}
	}))
	defer srv.Close()

	n := &Nominatim{BaseURL: srv.URL, UserAgent: "test"}

	addr, err := n.Reverse(context.Background(), samara.Coordinate)
	if err != nil || addr != "Самара, Самарская область, Россия" {
		t.Errorf("Reverse = %q, %v", addr, err)
	}

	_, err = n.Reverse(context.Background(), types.Coordinate{})
	if types.ReasonOf(err) != types.ReasonEmpty {
		t.Errorf("expected empty reason, got %v", err)
	}

	_, err = n.Reverse(context.Background(), types.Coordinate{Lat: 1, Lon: 1})
	if types.ReasonOf(err) != types.ReasonMalformed {
		t.Errorf("expected malformed reason, got %v", err)
	}
}

func TestNominatimStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	r := NewResolver(&Nominatim{BaseURL: srv.URL}, Options{})
	if got := r.ForwardSearch(context.Background(), "Самара"); len(got) != 0 {
		t.Errorf("expected no candidates, got %v", got)
	}
	if got := r.ReverseResolve(context.Background(), samara.Coordinate); got != DefaultFallback {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestGoogleProvider(t *testing.T) {
	var gotComponents string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("latlng") != "" {
			fmt.Fprint(w, `{"status": "OK", "results": [{"formatted_address": "Тольятти, Самарская обл., Россия"}]}`)
			return
		}
		gotComponents = r.URL.Query().Get("components")
		fmt.Fprint(w, `{"status": "OK", "results": [
			{"formatted_address": "Самара, Россия", "geometry": {"location": {"lat": 53.1959, "lng": 50.1002}}}
		]}`)
	}))
	defer srv.Close()

	g, err := NewGoogle("AIzaTestKey", "ru", "ru", maps.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewGoogle: %v", err)
	}

	got, err := g.Search(context.Background(), "Самара")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].Coordinate != (types.Coordinate{Lat: 53.1959, Lon: 50.1002}) {
		t.Errorf("unexpected candidates %+v", got)
	}
	if gotComponents != "country:RU" {
		t.Errorf("expected country component filter, got %q", gotComponents)
	}

	r := NewResolver(g, Options{})
	if name := r.ReverseResolve(context.Background(), types.Coordinate{Lat: 53.5, Lon: 49.4}); name != "Тольятти" {
		t.Errorf("ReverseResolve = %q", name)
	}
}

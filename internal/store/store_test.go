package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shanehull/digmap/internal/types"
)

// fakeKV is an in-memory KV with the same missing-key semantics as the Valkey cache.
type fakeKV struct {
	mu    sync.Mutex
	vals  map[string][]byte
	lists map[string][][]byte
	ttls  map[string]time.Duration
	err   error
}

func newFakeKV() *fakeKV {
	return &fakeKV{vals: map[string][]byte{}, lists: map[string][][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vals[key], f.err
}

func (f *fakeKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.vals[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) Append(_ context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.lists[key] = append(f.lists[key], value)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) List(_ context.Context, key string) ([][]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists[key], f.err
}

func (f *fakeKV) Expire(_ context.Context, key string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.ttls[key]; ok {
		f.ttls[key] = ttl
	}
	return nil
}

type both interface {
	PointStore
	RouteStore
}

func implementations() map[string]func() both {
	return map[string]func() both{
		"memory": func() both { return NewMemory() },
		"valkey": func() both { return NewValkey(newFakeKV(), time.Hour) },
	}
}

func TestRouteRoundTrip(t *testing.T) {
	route := Route{{Lat: 53.2, Lon: 50.1}, {Lat: 53.3, Lon: 50.2}}

	for name, newStore := range implementations() {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			ctx := context.Background()

			got, err := s.LoadRoute(ctx, "sid")
			if err != nil {
				t.Fatalf("LoadRoute: %v", err)
			}
			if got == nil || len(got) != 0 {
				t.Errorf("expected empty non-nil route before save, got %#v", got)
			}

			if err := s.SaveRoute(ctx, "sid", route); err != nil {
				t.Fatalf("SaveRoute: %v", err)
			}
			got, err = s.LoadRoute(ctx, "sid")
			if err != nil {
				t.Fatalf("LoadRoute: %v", err)
			}
			if len(got) != 2 || got[0] != route[0] || got[1] != route[1] {
				t.Errorf("route changed in round trip: %v", got)
			}

			if err := s.SaveRoute(ctx, "sid", Route{{Lat: 1, Lon: 2}}); err != nil {
				t.Fatalf("SaveRoute: %v", err)
			}
			got, _ = s.LoadRoute(ctx, "sid")
			if len(got) != 1 {
				t.Errorf("expected wholesale overwrite, got %v", got)
			}

			if other, _ := s.LoadRoute(ctx, "other"); len(other) != 0 {
				t.Errorf("route leaked across sessions: %v", other)
			}
		})
	}
}

func TestPointsAppendOnly(t *testing.T) {
	for name, newStore := range implementations() {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			ctx := context.Background()

			coords := []types.Coordinate{{Lat: 53.1, Lon: 50.1}, {Lat: 53.2, Lon: 50.2}, {Lat: 53.1, Lon: 50.1}}
			for _, c := range coords {
				if err := s.Append(ctx, "sid", c); err != nil {
					t.Fatalf("Append: %v", err)
				}
			}

			got, err := s.List(ctx, "sid")
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != 3 {
				t.Fatalf("expected duplicates to be kept, got %d points", len(got))
			}
			for i := range coords {
				if got[i] != coords[i] {
					t.Errorf("point %d = %v, want %v", i, got[i], coords[i])
				}
			}

			if empty, _ := s.List(ctx, "fresh"); len(empty) != 0 {
				t.Errorf("expected no points for a new session, got %v", empty)
			}
		})
	}
}

func TestMemoryConcurrentAppend(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = m.Append(ctx, "sid", types.Coordinate{Lat: float64(i % 90), Lon: 50})
		}(i)
	}
	wg.Wait()

	points, _ := m.List(ctx, "sid")
	if len(points) != 100 {
		t.Errorf("expected 100 points, got %d", len(points))
	}
}

func TestMemoryListIsACopy(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_ = m.Append(ctx, "sid", types.Coordinate{Lat: 1, Lon: 1})

	points, _ := m.List(ctx, "sid")
	points[0].Lat = 99

	again, _ := m.List(ctx, "sid")
	if again[0].Lat != 1 {
		t.Error("caller mutation reached the store")
	}
}

func TestValkeyUsesSessionTTL(t *testing.T) {
	kv := newFakeKV()
	v := NewValkey(kv, 30*time.Minute)
	ctx := context.Background()

	_ = v.Append(ctx, "sid", types.Coordinate{Lat: 1, Lon: 1})
	_ = v.SaveRoute(ctx, "sid", Route{})

	if kv.ttls[pointsPrefix+"sid"] != 30*time.Minute || kv.ttls[routePrefix+"sid"] != 30*time.Minute {
		t.Errorf("unexpected ttls %v", kv.ttls)
	}
}

func TestValkeyRefreshesTTLOnRead(t *testing.T) {
	kv := newFakeKV()
	v := NewValkey(kv, 30*time.Minute)
	ctx := context.Background()

	_ = v.Append(ctx, "sid", types.Coordinate{Lat: 53.2, Lon: 50.1})
	_ = v.SaveRoute(ctx, "sid", Route{{Lat: 53.2, Lon: 50.1}})

	// Simulate time passing since the last write.
	kv.ttls[pointsPrefix+"sid"] = time.Minute
	kv.ttls[routePrefix+"sid"] = time.Minute

	if _, err := v.List(ctx, "sid"); err != nil {
		t.Fatalf("List: %v", err)
	}
	if _, err := v.LoadRoute(ctx, "sid"); err != nil {
		t.Fatalf("LoadRoute: %v", err)
	}

	if kv.ttls[pointsPrefix+"sid"] != 30*time.Minute || kv.ttls[routePrefix+"sid"] != 30*time.Minute {
		t.Errorf("expected reads to refresh ttls, got %v", kv.ttls)
	}

	if _, err := v.LoadRoute(ctx, "other"); err != nil {
		t.Fatalf("LoadRoute missing: %v", err)
	}
	if _, ok := kv.ttls[routePrefix+"other"]; ok {
		t.Error("reading a missing route must not create a key")
	}
}

func TestValkeyPropagatesErrors(t *testing.T) {
	kv := newFakeKV()
	kv.err = errors.New("connection reset")
	v := NewValkey(kv, time.Hour)

	if err := v.SaveRoute(context.Background(), "sid", Route{}); err == nil {
		t.Error("expected save error")
	}
	if _, err := v.LoadRoute(context.Background(), "sid"); err == nil {
		t.Error("expected load error")
	}
	if _, err := v.List(context.Background(), "sid"); err == nil {
		t.Error("expected list error")
	}
}

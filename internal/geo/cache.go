package geo

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/shanehull/digmap/internal/types"
)

// searchCache memoises forward searches by exact query, holding at most size
// entries. Keys and values are copied in both directions so nothing it stores
// aliases caller memory.
type searchCache struct {
	entries *lru.Cache[string, []types.PlaceCandidate]
}

func newSearchCache(size int) *searchCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, []types.PlaceCandidate](size)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}
	return &searchCache{entries: entries}
}

func (c *searchCache) get(query string) ([]types.PlaceCandidate, bool) {
	v, ok := c.entries.Get(query)
	if !ok {
		return nil, false
	}
	return cloneCandidates(v), true
}

func (c *searchCache) put(query string, v []types.PlaceCandidate) {
	c.entries.Add(strings.Clone(query), cloneCandidates(v))
}

func (c *searchCache) len() int {
	return c.entries.Len()
}

func cloneCandidates(v []types.PlaceCandidate) []types.PlaceCandidate {
	out := make([]types.PlaceCandidate, len(v))
	copy(out, v)
	return out
}

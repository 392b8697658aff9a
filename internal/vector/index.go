// Package vector provides the normalized corpus index for flowcheck.
package vector

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

// Corpus names used by the stores and the service.
const (
	CorpusClaims = "claims"
	CorpusGoals  = "goals"
)

// Document is one stored text together with its normalized form.
type Document struct {
	Text           string
	Normalized     string
	ID             int64
	OwnerID        int64
	CreatedAtEpoch int64
}

// Loader reads the raw documents of a corpus. Normalized is filled in by the index.
type Loader func(ctx context.Context) ([]Document, error)

// Normalizer reduces text to its normalized form.
type Normalizer interface {
	Normalize(text string) string
}

// Stats is a snapshot of index usage.
type Stats struct {
	Hits          int64 `json:"hits"`
	Misses        int64 `json:"misses"`
	Invalidations int64 `json:"invalidations"`
	Entries       int   `json:"entries"`
}

// Index caches normalized corpora per name. A write to a corpus must call
// Invalidate before the next read expects to see it.
type Index struct {
	cache      *gocache.Cache
	normalizer Normalizer
	gens       map[string]uint64
	ttl        time.Duration
	mu         sync.Mutex

	hits          atomic.Int64
	misses        atomic.Int64
	invalidations atomic.Int64
}

// NewIndex creates an index whose entries live for ttl.
// A ttl of zero disables caching; every read goes to the loader.
func NewIndex(ttl time.Duration, normalizer Normalizer) *Index {
	cleanup := 2 * ttl
	if ttl <= 0 {
		ttl = 0
		cleanup = 0
	}
	return &Index{
		cache:      gocache.New(ttl, cleanup),
		normalizer: normalizer,
		gens:       make(map[string]uint64),
		ttl:        ttl,
	}
}

// Enabled reports whether the index caches anything.
func (ix *Index) Enabled() bool {
	return ix.ttl > 0
}

// Corpus returns the normalized documents of name, loading them on a miss.
// The returned slice is a copy owned by the caller.
func (ix *Index) Corpus(ctx context.Context, name string, load Loader) ([]Document, error) {
	if ix.Enabled() {
		if cached, ok := ix.cache.Get(name); ok {
			ix.hits.Add(1)
			return slices.Clone(cached.([]Document)), nil
		}
	}
	ix.misses.Add(1)
	return ix.fill(ctx, name, load)
}

// Refresh reloads name unconditionally.
func (ix *Index) Refresh(ctx context.Context, name string, load Loader) ([]Document, error) {
	ix.Invalidate(name)
	return ix.fill(ctx, name, load)
}

// Invalidate drops the cached entry of name. A load that started before the
// call will not be cached.
func (ix *Index) Invalidate(name string) {
	ix.mu.Lock()
	ix.gens[name]++
	ix.mu.Unlock()

	ix.cache.Delete(name)
	ix.invalidations.Add(1)
}

// OnWrite adapts Invalidate to the store write hook signature.
func (ix *Index) OnWrite(_ context.Context, table string) {
	ix.Invalidate(table)
}

// Stats returns a usage snapshot.
func (ix *Index) Stats() Stats {
	return Stats{
		Hits:          ix.hits.Load(),
		Misses:        ix.misses.Load(),
		Invalidations: ix.invalidations.Load(),
		Entries:       ix.cache.ItemCount(),
	}
}

func (ix *Index) fill(ctx context.Context, name string, load Loader) ([]Document, error) {
	ix.mu.Lock()
	gen := ix.gens[name]
	ix.mu.Unlock()

	docs, err := load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		docs[i].Normalized = ix.normalizer.Normalize(docs[i].Text)
	}

	if !ix.Enabled() {
		return docs, nil
	}

	ix.mu.Lock()
	current := ix.gens[name] == gen
	if current {
		ix.cache.SetDefault(name, slices.Clone(docs))
	}
	ix.mu.Unlock()

	if !current {
		log.Debug().Str("corpus", name).Msg("Corpus changed during load, not caching")
	}
	return docs, nil
}

package vector

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upper struct{}

func (upper) Normalize(text string) string { return strings.ToUpper(text) }

type countingLoader struct {
	docs  []Document
	calls atomic.Int32
}

func (c *countingLoader) load(context.Context) ([]Document, error) {
	c.calls.Add(1)
	out := make([]Document, len(c.docs))
	copy(out, c.docs)
	return out, nil
}

func TestIndex_CachesAndNormalizes(t *testing.T) {
	ix := NewIndex(time.Minute, upper{})
	src := &countingLoader{docs: []Document{{ID: 1, Text: "earth round"}}}

	docs, err := ix.Corpus(context.Background(), CorpusClaims, src.load)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "EARTH ROUND", docs[0].Normalized)

	_, err = ix.Corpus(context.Background(), CorpusClaims, src.load)
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.calls.Load())

	stats := ix.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
}

func TestIndex_InvalidateOnWrite(t *testing.T) {
	ix := NewIndex(time.Minute, upper{})
	src := &countingLoader{docs: []Document{{ID: 1, Text: "a"}}}

	_, err := ix.Corpus(context.Background(), CorpusGoals, src.load)
	require.NoError(t, err)

	src.docs = append(src.docs, Document{ID: 2, Text: "b"})
	ix.OnWrite(context.Background(), CorpusGoals)

	docs, err := ix.Corpus(context.Background(), CorpusGoals, src.load)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestIndex_StaleLoadNotCached(t *testing.T) {
	ix := NewIndex(time.Minute, upper{})

	var calls atomic.Int32
	load := func(context.Context) ([]Document, error) {
		if calls.Add(1) == 1 {
			// A write lands while the first load is in flight.
			ix.Invalidate(CorpusClaims)
		}
		return []Document{{ID: 1, Text: "x"}}, nil
	}

	_, err := ix.Corpus(context.Background(), CorpusClaims, load)
	require.NoError(t, err)
	_, err = ix.Corpus(context.Background(), CorpusClaims, load)
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
}

func TestIndex_Disabled(t *testing.T) {
	ix := NewIndex(0, upper{})
	assert.False(t, ix.Enabled())
	src := &countingLoader{docs: []Document{{ID: 1, Text: "a"}}}

	for i := 0; i < 3; i++ {
		docs, err := ix.Corpus(context.Background(), CorpusClaims, src.load)
		require.NoError(t, err)
		assert.Equal(t, "A", docs[0].Normalized)
	}
	assert.Equal(t, int32(3), src.calls.Load())
}

func TestIndex_LoaderError(t *testing.T) {
	ix := NewIndex(time.Minute, upper{})
	boom := errors.New("boom")

	_, err := ix.Corpus(context.Background(), CorpusClaims, func(context.Context) ([]Document, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, ix.Stats().Entries)
}

func TestIndex_ReturnsCopies(t *testing.T) {
	ix := NewIndex(time.Minute, upper{})
	src := &countingLoader{docs: []Document{{ID: 1, Text: "a"}}}

	docs, err := ix.Corpus(context.Background(), CorpusClaims, src.load)
	require.NoError(t, err)
	docs[0].Normalized = "mutated"

	again, err := ix.Corpus(context.Background(), CorpusClaims, src.load)
	require.NoError(t, err)
	assert.Equal(t, "A", again[0].Normalized)
}

func TestIndex_Refresh(t *testing.T) {
	ix := NewIndex(time.Minute, upper{})
	src := &countingLoader{docs: []Document{{ID: 1, Text: "a"}}}

	_, err := ix.Corpus(context.Background(), CorpusClaims, src.load)
	require.NoError(t, err)
	_, err = ix.Refresh(context.Background(), CorpusClaims, src.load)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
}

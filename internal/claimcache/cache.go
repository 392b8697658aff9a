// Package claimcache provides reuse-or-fetch resolution of fact-check queries
// for flowcheck.
package claimcache

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/thebtf/flowcheck/internal/factapi"
	"github.com/thebtf/flowcheck/internal/telemetry"
	"github.com/thebtf/flowcheck/internal/vector"
	"github.com/thebtf/flowcheck/pkg/models"
	"github.com/thebtf/flowcheck/pkg/similarity"
)

// Defaults for claim resolution.
const (
	DefaultThreshold    = 0.7
	DefaultFetchTimeout = 10 * time.Second
)

// Store is the claim history.
type Store interface {
	ListClaims(ctx context.Context) ([]models.Claim, error)
	GetClaim(ctx context.Context, id int64) (*models.Claim, error)
	InsertClaim(ctx context.Context, rawText string, payload models.Payload) (*models.Claim, error)
}

// Fetcher looks a claim up in the external fact-check service.
type Fetcher interface {
	Search(ctx context.Context, query string) (models.Payload, error)
}

// Normalizer reduces text to its normalized form.
type Normalizer interface {
	Normalize(text string) string
}

// Options configures a Cache. Zero values select defaults.
type Options struct {
	Normalizer   Normalizer
	Locker       Locker
	Index        *vector.Index
	Metrics      *telemetry.Metrics
	Threshold    float64
	FetchTimeout time.Duration
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	// Claim is the matched claim on a hit and the inserted claim on a miss.
	Claim   *models.Claim
	Payload models.Payload
	// Score is the best similarity against history; zero when history was empty.
	Score          float64
	MatchedClaimID int64
	Hit            bool
	matched        bool
}

// ResolveOption adjusts a single Resolve call.
type ResolveOption func(*resolveOptions)

type resolveOptions struct {
	force bool
}

// WithForce skips the history lookup and always fetches.
func WithForce() ResolveOption {
	return func(o *resolveOptions) { o.force = true }
}

// Cache decides whether a query reuses a stored claim or is fetched.
type Cache struct {
	store        Store
	fetcher      Fetcher
	normalizer   Normalizer
	locker       Locker
	index        *vector.Index
	metrics      *telemetry.Metrics
	group        singleflight.Group
	threshold    atomic.Uint64
	fetchTimeout time.Duration
}

// New creates a cache over store and fetcher.
func New(store Store, fetcher Fetcher, opts Options) *Cache {
	if opts.Normalizer == nil {
		opts.Normalizer = similarity.NewNormalizer(nil)
	}
	if opts.Locker == nil {
		opts.Locker = NewLocalLocker()
	}
	if opts.Index == nil {
		opts.Index = vector.NewIndex(0, opts.Normalizer)
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}

	c := &Cache{
		store:        store,
		fetcher:      fetcher,
		normalizer:   opts.Normalizer,
		locker:       opts.Locker,
		index:        opts.Index,
		metrics:      opts.Metrics,
		fetchTimeout: opts.FetchTimeout,
	}
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	c.SetThreshold(threshold)
	return c
}

// Threshold returns the current reuse threshold.
func (c *Cache) Threshold() float64 {
	return math.Float64frombits(c.threshold.Load())
}

// SetThreshold replaces the reuse threshold. Values are clamped to [0,1].
func (c *Cache) SetThreshold(t float64) {
	t = max(0, min(1, t))
	c.threshold.Store(math.Float64bits(t))
}

// Resolve returns a stored result for query when a previous claim scores at
// least the threshold against it, and otherwise fetches, stores and returns
// a fresh result. Hits perform no writes; a failed fetch persists nothing.
//
// Concurrent misses for the same query share one fetch. The shared fetch is
// not cancelled when one of the waiting callers goes away.
func (c *Cache) Resolve(ctx context.Context, query string, opts ...ResolveOption) (*Resolution, error) {
	var ro resolveOptions
	for _, opt := range opts {
		opt(&ro)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	normalized := c.normalizer.Normalize(query)

	var first *Resolution
	if !ro.force {
		res, err := c.lookup(ctx, c.index.Corpus, normalized)
		if err != nil {
			return nil, err
		}
		if res.Hit {
			c.record(ctx, res)
			return res, nil
		}
		first = res
	}

	flight := "lookup:" + query
	if ro.force {
		flight = "force:" + query
	}
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(flight, func() (any, error) {
		return c.resolveMiss(detached, query, normalized, ro.force)
	})

	var result singleflight.Result
	select {
	case result = <-ch:
	case <-ctx.Done():
		c.record(ctx, first)
		return nil, wrapFetchError(ctx.Err())
	}
	if result.Err != nil {
		c.record(ctx, first)
		return nil, result.Err
	}
	if result.Shared {
		log.Debug().Str("query", query).Msg("Joined in-flight claim fetch")
	}

	res := result.Val.(*Resolution)
	if res.Hit {
		c.record(ctx, res)
	} else {
		c.record(ctx, first)
	}
	return res, nil
}

// record counts one cache decision. Forced requests make none.
func (c *Cache) record(ctx context.Context, res *Resolution) {
	if res == nil {
		return
	}
	c.metrics.RecordLookup(ctx, res.Hit, res.matched, res.Score)
}

// corpusFunc reads a normalized corpus; Index.Corpus and Index.Refresh both fit.
type corpusFunc func(ctx context.Context, name string, load vector.Loader) ([]vector.Document, error)

// lookup matches normalized against the claim history read through corpus.
func (c *Cache) lookup(ctx context.Context, corpus corpusFunc, normalized string) (*Resolution, error) {
	history, err := corpus(ctx, vector.CorpusClaims, c.loadClaims)
	if err != nil {
		return nil, fmt.Errorf("load claim history: %w", err)
	}
	if len(history) == 0 {
		return &Resolution{}, nil
	}

	texts := make([]string, len(history)+1)
	for i, doc := range history {
		texts[i] = doc.Normalized
	}
	texts[len(history)] = normalized

	space := similarity.Build(texts)
	vectors := space.Vectors()
	match := similarity.BestMatch(vectors[len(history)], vectors[:len(history)])

	res := &Resolution{Score: match.Score, matched: match.Found}
	if !match.Found || match.Score < c.Threshold() {
		return res, nil
	}

	matched := history[match.Index]
	claim, err := c.store.GetClaim(ctx, matched.ID)
	if err != nil {
		return nil, fmt.Errorf("get claim %d: %w", matched.ID, err)
	}
	if claim == nil {
		return nil, &DataIntegrityError{ClaimID: matched.ID, Err: ErrClaimMissing}
	}
	if !claim.ResultPayload.Valid() {
		return nil, &DataIntegrityError{ClaimID: claim.ID, Err: models.ErrInvalidPayload}
	}

	log.Debug().
		Int64("claim_id", claim.ID).
		Float64("score", match.Score).
		Msg("Claim cache hit")

	res.Hit = true
	res.MatchedClaimID = claim.ID
	res.Claim = claim
	res.Payload = claim.ResultPayload
	return res, nil
}

// lockKey serializes queries with the same normalized text. Queries that
// normalize to nothing only serialize with themselves.
func lockKey(query, normalized string) string {
	if normalized == "" {
		return QueryKey("\x00" + query)
	}
	return QueryKey(normalized)
}

// resolveMiss runs under the query lock. Another caller, possibly in another
// process, may have stored a matching claim while this one waited, so history
// is reloaded from the store rather than the index cache.
func (c *Cache) resolveMiss(ctx context.Context, query, normalized string, force bool) (*Resolution, error) {
	key := lockKey(query, normalized)
	lockCtx, cancelLock := context.WithTimeout(ctx, 2*c.fetchTimeout)
	unlock, err := c.locker.Lock(lockCtx, key)
	cancelLock()
	if err != nil {
		return nil, fmt.Errorf("acquire query lock: %w", err)
	}
	defer unlock()

	var score float64
	if !force {
		res, err := c.lookup(ctx, c.index.Refresh, normalized)
		if err != nil || res.Hit {
			return res, err
		}
		score = res.Score
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	start := time.Now()
	payload, err := c.fetcher.Search(fetchCtx, query)
	c.metrics.RecordFetch(ctx, time.Since(start), err)
	if err != nil {
		return nil, wrapFetchError(err)
	}
	if !payload.Valid() {
		return nil, &factapi.RemoteError{Status: http.StatusBadGateway, Message: "fact check result is not valid JSON"}
	}

	claim, err := c.store.InsertClaim(ctx, query, payload)
	if err != nil {
		return nil, fmt.Errorf("store claim: %w", err)
	}
	c.index.Invalidate(vector.CorpusClaims)

	log.Info().
		Int64("claim_id", claim.ID).
		Float64("best_score", score).
		Bool("forced", force).
		Msg("Claim fetched and cached")

	return &Resolution{
		Claim:   claim,
		Payload: claim.ResultPayload,
		Score:   score,
	}, nil
}

// wrapFetchError turns bare context errors into transport errors.
func wrapFetchError(err error) error {
	var transport *factapi.TransportError
	var remote *factapi.RemoteError
	if errors.As(err, &transport) || errors.As(err, &remote) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &factapi.TransportError{Op: "search", Err: err}
	}
	return fmt.Errorf("fact check: %w", err)
}

func (c *Cache) loadClaims(ctx context.Context) ([]vector.Document, error) {
	claims, err := c.store.ListClaims(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]vector.Document, len(claims))
	for i := range claims {
		docs[i] = vector.Document{
			ID:             claims[i].ID,
			Text:           claims[i].RawText,
			CreatedAtEpoch: claims[i].CreatedAtEpoch,
		}
	}
	return docs, nil
}

// Package worker provides the HTTP service for flowcheck.
package worker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/flowcheck/internal/claimcache"
	"github.com/thebtf/flowcheck/internal/config"
	gormdb "github.com/thebtf/flowcheck/internal/db/gorm"
	"github.com/thebtf/flowcheck/internal/factapi"
	"github.com/thebtf/flowcheck/internal/news"
	"github.com/thebtf/flowcheck/internal/recommend"
	"github.com/thebtf/flowcheck/internal/telemetry"
	"github.com/thebtf/flowcheck/internal/vector"
	"github.com/thebtf/flowcheck/internal/worker/sse"
	"github.com/thebtf/flowcheck/pkg/similarity"
)

// Options wires the service dependencies. Config and Store are required.
type Options struct {
	Config     *config.Config
	Store      *gormdb.Store
	Fetcher    claimcache.Fetcher
	News       *news.Client
	Locker     claimcache.Locker
	Metrics    *telemetry.Metrics
	Normalizer claimcache.Normalizer
	Version    string
}

// Service is the flowcheck HTTP worker.
type Service struct {
	startTime      time.Time
	ctx            context.Context
	normalizer     claimcache.Normalizer
	router         *chi.Mux
	cancel         context.CancelFunc
	server         *http.Server
	store          *gormdb.Store
	claimStore     *gormdb.ClaimStore
	userStore      *gormdb.UserStore
	goalStore      *gormdb.GoalStore
	progressStore  *gormdb.ProgressStore
	communityStore *gormdb.CommunityStore
	index          *vector.Index
	claims         *claimcache.Cache
	news           *news.Client
	metrics        *telemetry.Metrics
	sseBroadcaster *sse.Broadcaster
	config         atomic.Pointer[config.Config]
	clusterer      atomic.Pointer[recommend.Clusterer]
	version        string
	ready          atomic.Bool
}

// New creates the service and its routes. The service is not ready until
// Start is called.
func New(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("worker: store is required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Get()
	}
	normalizer := opts.Normalizer
	if normalizer == nil {
		normalizer = similarity.NewNormalizer((*similarity.Lexicon)(nil).Merge(cfg.ExtraStopwords))
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.New()
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = factapi.New(factapi.Config{
			APIKey:  cfg.FactCheckAPIKey,
			BaseURL: cfg.FactCheckBaseURL,
			Timeout: cfg.FetchTimeout,
			RPS:     cfg.FactCheckRPS,
			Burst:   cfg.FactCheckBurst,
		})
	}
	newsClient := opts.News
	if newsClient == nil {
		newsClient = news.New(news.Config{
			APIKey:  cfg.NewsAPIKey,
			BaseURL: cfg.NewsBaseURL,
			Timeout: cfg.FetchTimeout,
		})
	}

	index := vector.NewIndex(cfg.IndexCacheTTL, normalizer)
	claimStore := gormdb.NewClaimStore(opts.Store, index.OnWrite)

	ctx, cancel := context.WithCancel(context.Background())

	svc := &Service{
		version:        opts.Version,
		store:          opts.Store,
		claimStore:     claimStore,
		userStore:      gormdb.NewUserStore(opts.Store),
		goalStore:      gormdb.NewGoalStore(opts.Store, index.OnWrite),
		progressStore:  gormdb.NewProgressStore(opts.Store, nil),
		communityStore: gormdb.NewCommunityStore(opts.Store, nil),
		index:          index,
		normalizer:     normalizer,
		news:           newsClient,
		metrics:        metrics,
		claims: claimcache.New(claimStore, fetcher, claimcache.Options{
			Normalizer:   normalizer,
			Locker:       opts.Locker,
			Index:        index,
			Metrics:      metrics,
			Threshold:    cfg.SimilarityThreshold,
			FetchTimeout: cfg.FetchTimeout,
		}),
		sseBroadcaster: sse.NewBroadcaster(),
		router:         chi.NewRouter(),
		ctx:            ctx,
		cancel:         cancel,
		startTime:      time.Now(),
	}
	svc.config.Store(cfg)
	svc.clusterer.Store(recommend.New(clusterConfig(cfg), normalizer))

	svc.setupRoutes()
	return svc, nil
}

func clusterConfig(cfg *config.Config) recommend.Config {
	return recommend.Config{
		ClusterCount: cfg.ClusterCount,
		MaxResults:   cfg.MaxRecommendations,
		Seed:         cfg.ClusterSeed,
		Restarts:     cfg.ClusterRestarts,
	}
}

// Handler returns the root HTTP handler.
func (s *Service) Handler() http.Handler {
	return s.router
}

// Config returns the active configuration.
func (s *Service) Config() *config.Config {
	return s.config.Load()
}

// Broadcaster returns the SSE broadcaster.
func (s *Service) Broadcaster() *sse.Broadcaster {
	return s.sseBroadcaster
}

// ApplyConfig swaps in settings that can change at runtime: the similarity
// threshold and the clustering parameters. Listener, database and API keys
// are read once at startup.
func (s *Service) ApplyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	old := s.config.Swap(cfg)

	s.claims.SetThreshold(cfg.SimilarityThreshold)
	s.clusterer.Store(recommend.New(clusterConfig(cfg), s.normalizer))

	log.Info().
		Float64("threshold", cfg.SimilarityThreshold).
		Int("clusterCount", cfg.ClusterCount).
		Int("maxRecommendations", cfg.MaxRecommendations).
		Msg("Configuration applied")

	if old == nil || old.SimilarityThreshold != cfg.SimilarityThreshold ||
		old.ClusterCount != cfg.ClusterCount || old.MaxRecommendations != cfg.MaxRecommendations {
		s.sseBroadcaster.Publish(sse.EventSettingsChanged, map[string]any{
			"similarity_threshold": cfg.SimilarityThreshold,
			"cluster_count":        cfg.ClusterCount,
			"max_recommendations":  cfg.MaxRecommendations,
		})
	}
}

// Start binds the listener and serves in the background.
func (s *Service) Start() error {
	cfg := s.config.Load()

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr(), err)
	}

	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return s.ctx },
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	s.ready.Store(true)
	log.Info().
		Str("addr", ln.Addr().String()).
		Str("version", s.version).
		Msg("Worker started")
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones. Open SSE
// streams are closed first; the base context is cancelled only once the
// server has drained or ctx expires.
func (s *Service) Shutdown(ctx context.Context) error {
	s.ready.Store(false)
	s.sseBroadcaster.CloseAll()
	defer s.cancel()
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("Worker stopped")
	return nil
}

// requireReady rejects requests until the service has started.
func (s *Service) requireReady(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			writeError(w, r, http.StatusServiceUnavailable, "not_ready", "service not ready")
			return
		}
		next.ServeHTTP(w, r)
	})
}

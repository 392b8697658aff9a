// Package recommend provides goal clustering and recommendations for flowcheck.
package recommend

import (
	"math/rand/v2"

	"github.com/rs/zerolog/log"

	"github.com/thebtf/flowcheck/pkg/models"
	"github.com/thebtf/flowcheck/pkg/similarity"
)

// Defaults for goal clustering.
const (
	DefaultClusterCount = 3
	DefaultMaxResults   = 3
	DefaultSeed         = 42
	DefaultRestarts     = 10
)

// Normalizer reduces text to its normalized form.
type Normalizer interface {
	Normalize(text string) string
}

// Config holds clustering settings.
type Config struct {
	ClusterCount int
	MaxResults   int
	Seed         uint64
	Restarts     int
}

// DefaultConfig returns the default clustering settings.
func DefaultConfig() Config {
	return Config{
		ClusterCount: DefaultClusterCount,
		MaxResults:   DefaultMaxResults,
		Seed:         DefaultSeed,
		Restarts:     DefaultRestarts,
	}
}

// Clusterer groups goal texts with k-means over a TF-IDF space and suggests
// goals that share a cluster with the user's latest goal.
type Clusterer struct {
	normalizer Normalizer
	cfg        Config
}

// New creates a clusterer. A nil normalizer uses similarity.Normalize.
func New(cfg Config, normalizer Normalizer) *Clusterer {
	if cfg.ClusterCount <= 0 {
		cfg.ClusterCount = DefaultClusterCount
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.Restarts <= 0 {
		cfg.Restarts = DefaultRestarts
	}
	if normalizer == nil {
		normalizer = similarity.NewNormalizer(nil)
	}
	return &Clusterer{cfg: cfg, normalizer: normalizer}
}

// Config returns the active settings.
func (c *Clusterer) Config() Config {
	return c.cfg
}

// Recommend returns up to MaxResults goal texts from the cluster of the
// user's most recent goal, in corpus order, excluding that goal.
// It returns an empty slice when there are fewer goals than clusters or the
// user owns no goal.
func (c *Clusterer) Recommend(userID int64, goals []models.Goal) []string {
	normalized := make([]string, len(goals))
	for i := range goals {
		normalized[i] = c.normalizer.Normalize(goals[i].Text)
	}
	return c.RecommendNormalized(userID, goals, normalized)
}

// RecommendNormalized is Recommend with the goal texts already normalized.
// normalized[i] must correspond to goals[i].
func (c *Clusterer) RecommendNormalized(userID int64, goals []models.Goal, normalized []string) []string {
	out := []string{}
	if len(goals) < c.cfg.ClusterCount || len(normalized) != len(goals) {
		return out
	}

	source := models.LatestGoal(goals, userID)
	if source == nil {
		return out
	}

	space := similarity.Build(normalized)
	rng := rand.New(rand.NewPCG(c.cfg.Seed, c.cfg.Seed))
	kcfg := similarity.DefaultKMeansConfig(c.cfg.ClusterCount)
	kcfg.Restarts = c.cfg.Restarts

	result, err := similarity.KMeans(space.Vectors(), kcfg, rng)
	if err != nil {
		log.Warn().Err(err).Int("goals", len(goals)).Msg("Goal clustering failed")
		return out
	}

	var label int
	for i := range goals {
		if goals[i].ID == source.ID {
			label = result.Labels[i]
			break
		}
	}

	for i := range goals {
		if goals[i].ID == source.ID || result.Labels[i] != label {
			continue
		}
		out = append(out, goals[i].Text)
		if len(out) == c.cfg.MaxResults {
			break
		}
	}

	log.Debug().
		Int64("user_id", userID).
		Int64("source_goal", source.ID).
		Int("cluster", label).
		Int("recommendations", len(out)).
		Msg("Goal recommendations computed")

	return out
}

package similarity

import (
	"errors"
	"math"
	"math/rand/v2"
)

var (
	// ErrTooFewPoints is returned when there are fewer points than clusters.
	ErrTooFewPoints = errors.New("similarity: fewer points than clusters")
	// ErrInvalidK is returned for a non-positive cluster count.
	ErrInvalidK = errors.New("similarity: cluster count must be positive")
)

// KMeansConfig controls a k-means run.
type KMeansConfig struct {
	K         int
	MaxIter   int
	Restarts  int
	Tolerance float64
}

// DefaultKMeansConfig returns the settings used for goal clustering.
func DefaultKMeansConfig(k int) KMeansConfig {
	return KMeansConfig{
		K:         k,
		MaxIter:   300,
		Restarts:  10,
		Tolerance: 1e-4,
	}
}

// Clustering is the outcome of KMeans.
type Clustering struct {
	Labels    []int
	Centroids [][]float64
	Inertia   float64
}

// Members returns the indices of points assigned to cluster c, ascending.
func (c *Clustering) Members(cluster int) []int {
	var out []int
	for i, label := range c.Labels {
		if label == cluster {
			out = append(out, i)
		}
	}
	return out
}

// KMeans partitions points into cfg.K clusters using k-means++ seeding and
// Lloyd iterations. The best of cfg.Restarts runs (lowest inertia) is kept.
// Given the same rng state and input, the result is identical.
func KMeans(points [][]float64, cfg KMeansConfig, rng *rand.Rand) (*Clustering, error) {
	if cfg.K <= 0 {
		return nil, ErrInvalidK
	}
	if len(points) < cfg.K {
		return nil, ErrTooFewPoints
	}
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = 300
	}
	if cfg.Restarts <= 0 {
		cfg.Restarts = 1
	}

	var best *Clustering
	for run := 0; run < cfg.Restarts; run++ {
		result := lloyd(points, seedCentroids(points, cfg.K, rng), cfg)
		if best == nil || result.Inertia < best.Inertia {
			best = result
		}
	}
	return best, nil
}

// seedCentroids picks k initial centroids with k-means++.
func seedCentroids(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(points[rng.IntN(len(points))]))

	dist := make([]float64, len(points))
	for len(centroids) < k {
		var total float64
		for i, p := range points {
			dist[i] = nearest(p, centroids).dist
			total += dist[i]
		}

		// All points coincide with a centroid.
		if total == 0 {
			centroids = append(centroids, clone(points[rng.IntN(len(points))]))
			continue
		}

		target := rng.Float64() * total
		chosen := len(points) - 1
		for i, d := range dist {
			target -= d
			if target < 0 {
				chosen = i
				break
			}
		}
		centroids = append(centroids, clone(points[chosen]))
	}
	return centroids
}

func lloyd(points [][]float64, centroids [][]float64, cfg KMeansConfig) *Clustering {
	labels := make([]int, len(points))
	dim := len(points[0])

	for iter := 0; iter < cfg.MaxIter; iter++ {
		for i, p := range points {
			labels[i] = nearest(p, centroids).index
		}

		next := make([][]float64, len(centroids))
		counts := make([]int, len(centroids))
		for c := range next {
			next[c] = make([]float64, dim)
		}
		for i, p := range points {
			counts[labels[i]]++
			for d, v := range p {
				next[labels[i]][d] += v
			}
		}

		for c := range next {
			if counts[c] == 0 {
				reseedEmpty(points, centroids, labels, next, c)
				continue
			}
			for d := range next[c] {
				next[c][d] /= float64(counts[c])
			}
		}

		var shift float64
		for c := range centroids {
			shift += squaredDistance(centroids[c], next[c])
		}
		centroids = next
		if shift <= cfg.Tolerance*cfg.Tolerance {
			break
		}
	}

	var inertia float64
	for i, p := range points {
		n := nearest(p, centroids)
		labels[i] = n.index
		inertia += n.dist
	}

	return &Clustering{Labels: labels, Centroids: centroids, Inertia: inertia}
}

// reseedEmpty moves an empty cluster onto the point farthest from its
// current centroid. If every point sits on its centroid the old one is kept.
func reseedEmpty(points, centroids [][]float64, labels []int, next [][]float64, c int) {
	farthest, farDist := -1, 0.0
	for i, p := range points {
		if d := squaredDistance(p, centroids[labels[i]]); d > farDist {
			farthest, farDist = i, d
		}
	}
	if farthest < 0 {
		next[c] = clone(centroids[c])
		return
	}
	next[c] = clone(points[farthest])
}

type neighbour struct {
	index int
	dist  float64
}

// nearest returns the closest centroid; ties go to the lowest index.
func nearest(p []float64, centroids [][]float64) neighbour {
	best := neighbour{index: 0, dist: math.Inf(1)}
	for c, centroid := range centroids {
		if d := squaredDistance(p, centroid); d < best.dist {
			best = neighbour{index: c, dist: d}
		}
	}
	return best
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

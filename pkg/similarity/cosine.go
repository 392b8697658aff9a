package similarity

import "math"

// scorePrecision is the number of decimal places kept in similarity scores,
// so that identical documents score exactly 1.0.
const scorePrecision = 1e12

// Match is the result of BestMatch.
type Match struct {
	Index int
	Score float64
	Found bool
}

// NormalizeVector scales vec to unit length in place. Zero vectors are left alone.
func NormalizeVector(vec []float64) {
	magnitude := Magnitude(vec)
	if magnitude == 0 || math.IsNaN(magnitude) {
		return
	}
	for i := range vec {
		vec[i] /= magnitude
	}
}

// Magnitude returns the L2 norm of vec.
func Magnitude(vec []float64) float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of two L2-normalized vectors.
// Vectors of different length score 0.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return math.Round(dot*scorePrecision) / scorePrecision
}

// BestMatch compares query against every corpus vector and returns the
// highest-scoring one. The lowest index wins ties. An empty corpus yields
// Match{Index: -1} with Found unset.
func BestMatch(query []float64, corpus [][]float64) Match {
	best := Match{Index: -1}
	for i, vec := range corpus {
		score := Cosine(query, vec)
		if !best.Found || score > best.Score {
			best = Match{Index: i, Score: score, Found: true}
		}
	}
	return best
}

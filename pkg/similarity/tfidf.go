package similarity

import (
	"math"
	"strings"
)

// Space is a TF-IDF vector space fitted on a corpus of normalized strings.
// Documents are tokenized on whitespace; terms keep first-seen order.
type Space struct {
	vocab   map[string]int
	terms   []string
	idf     []float64
	vectors [][]float64
}

// Build fits a space on corpus.
//
// Weights are raw term counts times the smoothed inverse document frequency
// ln((1+n)/(1+df)) + 1, and every document vector is L2-normalized.
// An all-empty corpus produces an empty vocabulary and zero-length vectors.
func Build(corpus []string) *Space {
	s := &Space{
		vocab:   make(map[string]int),
		vectors: make([][]float64, len(corpus)),
	}

	docs := make([][]string, len(corpus))
	df := make([]int, 0)
	for i, doc := range corpus {
		tokens := strings.Fields(doc)
		docs[i] = tokens

		seen := make(map[int]bool, len(tokens))
		for _, tok := range tokens {
			idx, ok := s.vocab[tok]
			if !ok {
				idx = len(s.terms)
				s.vocab[tok] = idx
				s.terms = append(s.terms, tok)
				df = append(df, 0)
			}
			if !seen[idx] {
				df[idx]++
				seen[idx] = true
			}
		}
	}

	n := float64(len(corpus))
	s.idf = make([]float64, len(s.terms))
	for i, d := range df {
		s.idf[i] = math.Log((1+n)/(1+float64(d))) + 1
	}

	for i, tokens := range docs {
		s.vectors[i] = s.weigh(tokens)
	}
	return s
}

// Project maps text into the fitted vocabulary. Unknown terms are ignored.
func (s *Space) Project(text string) []float64 {
	return s.weigh(strings.Fields(text))
}

func (s *Space) weigh(tokens []string) []float64 {
	vec := make([]float64, len(s.terms))
	for _, tok := range tokens {
		if idx, ok := s.vocab[tok]; ok {
			vec[idx]++
		}
	}
	for i := range vec {
		vec[i] *= s.idf[i]
	}
	NormalizeVector(vec)
	return vec
}

// Vectors returns the document vectors in corpus order.
func (s *Space) Vectors() [][]float64 {
	return s.vectors
}

// Vector returns the vector of document i.
func (s *Space) Vector(i int) []float64 {
	return s.vectors[i]
}

// Len returns the number of fitted documents.
func (s *Space) Len() int {
	return len(s.vectors)
}

// Dim returns the vocabulary size.
func (s *Space) Dim() int {
	return len(s.terms)
}

// Terms returns the vocabulary in index order.
func (s *Space) Terms() []string {
	return s.terms
}

// Package similarity provides text normalization, TF-IDF vector spaces,
// cosine matching and k-means clustering.
package similarity

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

// irregularForms maps inflected forms the stemmer cannot reduce to their
// dictionary base form. Regular inflection is left to the stemmer.
var irregularForms = map[string]string{
	"children": "child",
	"men":      "man",
	"women":    "woman",
	"people":   "person",
	"mice":     "mouse",
	"feet":     "foot",
	"teeth":    "tooth",
	"geese":    "goose",
	"ran":      "run",
	"went":     "go",
	"gone":     "go",
	"made":     "make",
	"said":     "say",
	"took":     "take",
	"taken":    "take",
	"wrote":    "write",
	"written":  "write",
	"ate":      "eat",
	"eaten":    "eat",
	"began":    "begin",
	"begun":    "begin",
	"built":    "build",
	"bought":   "buy",
	"thought":  "think",
	"taught":   "teach",
	"better":   "good",
	"best":     "good",
	"worse":    "bad",
	"worst":    "bad",
}

// Normalizer lowercases, tokenizes, lemmatizes and strips stopwords.
// A Normalizer is safe for concurrent use once constructed.
type Normalizer struct {
	stopwords map[string]struct{}
	lemmas    map[string]string
}

// NewNormalizer creates a normalizer. The lexicon is optional; its stopwords
// extend the built-in English list and its lemmas override irregularForms.
func NewNormalizer(lex *Lexicon) *Normalizer {
	n := &Normalizer{
		stopwords: make(map[string]struct{}),
		lemmas:    make(map[string]string, len(irregularForms)),
	}
	for form, base := range irregularForms {
		n.lemmas[form] = base
	}
	if lex != nil {
		for _, w := range lex.Stopwords {
			if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
				n.stopwords[w] = struct{}{}
			}
		}
		for form, base := range lex.Lemmas {
			n.lemmas[strings.ToLower(form)] = strings.ToLower(base)
		}
	}
	return n
}

var defaultNormalizer = NewNormalizer(nil)

// Normalize normalizes text with the built-in lexicon.
func Normalize(text string) string {
	return defaultNormalizer.Normalize(text)
}

// Normalize returns the surviving base-form tokens of text joined by single
// spaces, in their original order. Empty or all-stopword input yields "".
func (n *Normalizer) Normalize(text string) string {
	return strings.Join(n.Tokens(text), " ")
}

// Tokens splits text into normalized tokens.
// Letters and digits form tokens; apostrophes inside a word are dropped
// ("earth's" becomes "earths"); every other rune separates tokens.
func (n *Normalizer) Tokens(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		if tok := n.processToken(current.String()); tok != "" {
			tokens = append(tokens, tok)
		}
		current.Reset()
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			current.WriteRune(unicode.ToLower(r))
		case (r == '\'' || r == '’') && current.Len() > 0:
			// Joined, not a separator.
		default:
			flush()
		}
	}
	flush()

	return tokens
}

// processToken drops stopwords and reduces the token to its base form.
func (n *Normalizer) processToken(token string) string {
	if n.isStopword(token) {
		return ""
	}
	base := n.lemma(token)
	if base == "" || n.isStopword(base) {
		return ""
	}
	return base
}

// lemma resolves irregular forms first, then stems.
func (n *Normalizer) lemma(token string) string {
	if base, ok := n.lemmas[token]; ok {
		token = base
	}
	return english.Stem(token, false)
}

func (n *Normalizer) isStopword(word string) bool {
	if english.IsStopWord(word) {
		return true
	}
	_, ok := n.stopwords[word]
	return ok
}

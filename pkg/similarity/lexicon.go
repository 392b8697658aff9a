package similarity

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Lexicon holds user-supplied normalization data.
//
// Example file:
//
//	stopwords: [please, really]
//	lemmas:
//	  cacti: cactus
type Lexicon struct {
	Lemmas    map[string]string `yaml:"lemmas"`
	Stopwords []string          `yaml:"stopwords"`
}

// LoadLexicon reads a YAML lexicon file.
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}

	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", path, err)
	}
	return &lex, nil
}

// Merge returns a copy of l with extra stopwords appended.
func (l *Lexicon) Merge(stopwords []string) *Lexicon {
	out := &Lexicon{Lemmas: make(map[string]string)}
	if l != nil {
		for k, v := range l.Lemmas {
			out.Lemmas[k] = v
		}
		out.Stopwords = append(out.Stopwords, l.Stopwords...)
	}
	out.Stopwords = append(out.Stopwords, stopwords...)
	return out
}

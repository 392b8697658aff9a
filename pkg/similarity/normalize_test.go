package similarity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
		{
			name:     "only stopwords",
			input:    "The and of it",
			expected: "",
		},
		{
			name:     "case and punctuation",
			input:    "The Earth is ROUND!",
			expected: "earth round",
		},
		{
			name:     "inflections share a base",
			input:    "running runs",
			expected: "run run",
		},
		{
			name:     "irregular form",
			input:    "children",
			expected: "child",
		},
		{
			name:     "apostrophe joins word",
			input:    "Earth's orbit",
			expected: "earth orbit",
		},
		{
			name:     "digits kept",
			input:    "5G towers",
			expected: "5g tower",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"The earth is round",
		"Vaccines cause autism",
		"Learn Go concurrency patterns",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), in)
	}
}

func TestNormalize_EquivalentPhrasings(t *testing.T) {
	assert.Equal(t, Normalize("The earth is round"), Normalize("the Earth, is round."))
}

func TestNormalizer_Lexicon(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	content := "stopwords:\n  - please\nlemmas:\n  cacti: cactus\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	lex, err := LoadLexicon(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"please"}, lex.Stopwords)

	n := NewNormalizer(lex)
	assert.Equal(t, "water cactus", n.Normalize("please water cacti"))
}

func TestLoadLexicon_Errors(t *testing.T) {
	_, err := LoadLexicon(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stopwords: [a\n"), 0o600))
	_, err = LoadLexicon(path)
	assert.Error(t, err)
}

func TestLexicon_Merge(t *testing.T) {
	var base *Lexicon
	merged := base.Merge([]string{"extra"})
	assert.Equal(t, []string{"extra"}, merged.Stopwords)

	base = &Lexicon{Stopwords: []string{"a"}, Lemmas: map[string]string{"x": "y"}}
	merged = base.Merge([]string{"b"})
	assert.Equal(t, []string{"a", "b"}, merged.Stopwords)
	assert.Equal(t, "y", merged.Lemmas["x"])
	assert.Equal(t, []string{"a"}, base.Stopwords)
}

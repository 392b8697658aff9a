package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	space := Build([]string{"earth round", "vaccin caus autism"})

	assert.Equal(t, 2, space.Len())
	assert.Equal(t, 5, space.Dim())
	assert.Equal(t, []string{"earth", "round", "vaccin", "caus", "autism"}, space.Terms())

	for _, vec := range space.Vectors() {
		assert.InDelta(t, 1.0, Magnitude(vec), 1e-9)
	}
}

func TestBuild_EmptyCorpus(t *testing.T) {
	space := Build(nil)
	assert.Equal(t, 0, space.Len())
	assert.Equal(t, 0, space.Dim())
	assert.Empty(t, space.Project("anything"))
}

func TestBuild_EmptyDocument(t *testing.T) {
	space := Build([]string{"", "earth round"})
	require.Equal(t, 2, space.Len())
	assert.Equal(t, 0.0, Magnitude(space.Vector(0)))
}

func TestSpace_ProjectUnknownTerms(t *testing.T) {
	space := Build([]string{"earth round"})
	vec := space.Project("moon flat")
	assert.Len(t, vec, space.Dim())
	assert.Equal(t, 0.0, Magnitude(vec))
}

func TestSpace_RareTermsWeighMore(t *testing.T) {
	space := Build([]string{"earth round", "earth flat", "earth big"})
	vec := space.Project("earth round")
	// "round" appears in one document, "earth" in all three.
	assert.Greater(t, vec[1], vec[0])
}

package tfidf

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedBeforePrepare(t *testing.T) {
	_, err := NewEmbedder().Embed(context.Background(), "anything")
	assert.Error(t, err)
}

func TestPrepareRejectsEmptyCorpus(t *testing.T) {
	e := NewEmbedder()
	assert.Error(t, e.Prepare(nil))
	assert.Error(t, e.Prepare([]string{"the and of", "123"}))
}

func TestEmbedNormalizedAndSimilar(t *testing.T) {
	e := NewEmbedder()
	corpus := []string{
		"Sputnik launched into orbit in October",
		"The shuttle era began with Columbia",
		"Commercial launch licensing is handled by regulators",
	}
	require.NoError(t, e.Prepare(corpus))
	assert.Equal(t, e.Dimension(), len(e.vocabulary))
	assert.Equal(t, "tfidf", e.Name())

	ctx := context.Background()
	q, err := e.Embed(ctx, "when did sputnik launch")
	require.NoError(t, err)
	require.Len(t, q, e.Dimension())

	norm := 0.0
	for _, v := range q {
		norm += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)

	best, bestScore := -1, -1.0
	for i, text := range corpus {
		v, err := e.Embed(ctx, text)
		require.NoError(t, err)
		s := 0.0
		for j := range v {
			s += v[j] * q[j]
		}
		if s > bestScore {
			best, bestScore = i, s
		}
	}
	assert.Equal(t, 0, best)
}

func TestEmbedUnknownWordsIsZero(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{"alpha beta"}))
	v, err := e.Embed(context.Background(), "gamma delta")
	require.NoError(t, err)
	for _, x := range v {
		assert.Zero(t, x)
	}
}

package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/domain"
)

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "index.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Init(ctx, 2))
	chunks := []domain.Chunk{
		{DocumentID: "d", ChunkID: "d:0", Source: "policy.pdf p.1", Index: 0, Text: "Shuttle era"},
		{DocumentID: "d", ChunkID: "d:1", Source: "policy.pdf p.2", Index: 1, Text: "Launch licensing"},
	}
	require.NoError(t, s.Upsert(ctx, chunks, [][]float64{{1, 0}, {0, 1}}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	res, err := s.Search(ctx, []float64{0.1, 0.9}, 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, chunks[1], res[0].Chunk)
	assert.Greater(t, res[0].Score, 0.9)
}

func TestUpsertReplacesAndClear(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Init(ctx, 1))

	require.NoError(t, s.Upsert(ctx, []domain.Chunk{{ChunkID: "a", Text: "old"}}, [][]float64{{1}}))
	require.NoError(t, s.Upsert(ctx, []domain.Chunk{{ChunkID: "a", Text: "new"}}, [][]float64{{1}}))
	n, _ := s.Count(ctx)
	assert.Equal(t, 1, n)

	res, err := s.Search(ctx, []float64{1}, 5)
	require.NoError(t, err)
	assert.Equal(t, "new", res[0].Chunk.Text)

	require.NoError(t, s.Clear(ctx))
	n, _ = s.Count(ctx)
	assert.Zero(t, n)
}

func TestInitDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Init(ctx, 2))
	require.NoError(t, s.Upsert(ctx, []domain.Chunk{{ChunkID: "a"}}, [][]float64{{1, 1}}))
	assert.Error(t, s.Init(ctx, 3))

	require.NoError(t, s.Clear(ctx))
	assert.NoError(t, s.Init(ctx, 3))
	assert.Error(t, s.Upsert(ctx, []domain.Chunk{{ChunkID: "b"}}, [][]float64{{1, 1}}))
	assert.Error(t, s.Init(ctx, 0))
}

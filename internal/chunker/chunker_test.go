package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/domain"
)

func texts(chunks []domain.Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

func TestSentenceChunkerOverlap(t *testing.T) {
	c := NewSentenceChunker(2, 1)
	doc := domain.Document{ID: "doc", Path: "a.txt", Content: "One. Two. Three. Four."}
	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"One. Two.", "Two. Three.", "Three. Four."}, texts(chunks))
	assert.Equal(t, "doc:1", chunks[1].ChunkID)
	assert.Equal(t, 2, chunks[2].Index)
	assert.Equal(t, "a.txt", chunks[0].Source)
}

func TestSentenceChunkerOverlapNotLargerThanChunk(t *testing.T) {
	c := NewSentenceChunker(2, 5)
	chunks, err := c.Chunk(domain.Document{ID: "d", Content: "A. B. C."})
	require.NoError(t, err)
	assert.Equal(t, []string{"A. B.", "B. C."}, texts(chunks))
}

func TestSentenceChunkerNoPunctuationAndEmpty(t *testing.T) {
	c := NewSentenceChunker(0, -1)
	chunks, err := c.Chunk(domain.Document{ID: "d", Content: "  no punctuation here  "})
	require.NoError(t, err)
	assert.Equal(t, []string{"no punctuation here"}, texts(chunks))

	chunks, err = c.Chunk(domain.Document{ID: "d", Content: "   "})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestCharacterChunkerMergesWithOverlap(t *testing.T) {
	c := NewCharacterChunker(10, 4, "\n\n")
	doc := domain.Document{ID: "p", Path: "policy.pdf", Page: 3, Content: "aaaa\n\nbbbb\n\ncccc\n\ndddd"}
	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"aaaa\n\nbbbb", "bbbb\n\ncccc", "cccc\n\ndddd"}, texts(chunks))
	assert.Equal(t, "policy.pdf p.3", chunks[0].Source)
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Index)
		assert.LessOrEqual(t, len(ch.Text), 10)
	}
}

func TestCharacterChunkerOversizedPiece(t *testing.T) {
	long := strings.Repeat("b", 16)
	c := NewCharacterChunker(10, 4, "\n\n")
	chunks, err := c.Chunk(domain.Document{ID: "d", Content: "aa\n\n" + long + "\n\ncc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"aa", long, "cc"}, texts(chunks))
}

func TestCharacterChunkerDefaults(t *testing.T) {
	c := NewCharacterChunker(0, 5000, "")
	assert.Equal(t, 1000, c.chunkSize)
	assert.Equal(t, 200, c.overlap)
	assert.Equal(t, "\n\n", c.separator)

	chunks, err := c.Chunk(domain.Document{ID: "d", Content: "short text"})
	require.NoError(t, err)
	assert.Equal(t, []string{"short text"}, texts(chunks))

	chunks, err = c.Chunk(domain.Document{ID: "d", Content: "\n\n  \n\n"})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSentenceChunkerIndexesUnterminatedTail(t *testing.T) {
	c := NewSentenceChunker(5, 1)
	doc := domain.Document{ID: "p", Path: "shuttle.pdf", Page: 2,
		Content: "The shuttle era began in 1981. It ended in 2011 when the final orbiter flew to the"}
	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "The shuttle era began in 1981. It ended in 2011 when the final orbiter flew to the", chunks[0].Text)

	c = NewSentenceChunker(1, 0)
	chunks, err = c.Chunk(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"The shuttle era began in 1981.", "It ended in 2011 when the final orbiter flew to the"}, texts(chunks))
}

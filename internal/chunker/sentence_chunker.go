package chunker

import (
	"strconv"
	"strings"

	"docchat/internal/domain"
	"docchat/internal/textutil"
)

// SentenceChunker groups consecutive sentences into chunks. Text after the
// last sentence terminator is indexed as a sentence of its own.
type SentenceChunker struct {
	size    int
	overlap int
}

// NewSentenceChunker creates a chunker emitting size sentences per chunk,
// repeating the last overlap sentences of each chunk in the next one.
func NewSentenceChunker(size, overlap int) *SentenceChunker {
	if size <= 0 {
		size = 5
	}
	if overlap < 0 {
		overlap = 0
	}
	return &SentenceChunker{size: size, overlap: overlap}
}

func (c *SentenceChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	sentences := textutil.Sentences(document.Content)
	var chunks []domain.Chunk
	for start := 0; start < len(sentences); {
		end := min(start+c.size, len(sentences))
		idx := len(chunks)
		chunks = append(chunks, domain.Chunk{
			DocumentID: document.ID,
			ChunkID:    document.ID + ":" + strconv.Itoa(idx),
			Source:     sourceOf(document),
			Text:       strings.Join(sentences[start:end], " "),
			Index:      idx,
		})
		if end == len(sentences) {
			break
		}
		// an overlap as large as the chunk would never move forward
		start = max(end-c.overlap, start+1)
	}
	return chunks, nil
}

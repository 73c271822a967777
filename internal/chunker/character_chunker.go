package chunker

import (
	"strconv"
	"strings"

	"docchat/internal/domain"
)

// CharacterChunker splits text on a separator and merges the pieces into
// chunks of at most chunkSize characters. Consecutive chunks share trailing
// pieces worth at most overlap characters. A single piece longer than
// chunkSize is emitted as its own chunk.
type CharacterChunker struct {
	chunkSize int
	overlap   int
	separator string
}

func NewCharacterChunker(chunkSize, overlap int, separator string) *CharacterChunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	if separator == "" {
		separator = "\n\n"
	}
	return &CharacterChunker{chunkSize: chunkSize, overlap: overlap, separator: separator}
}

func (c *CharacterChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	var pieces []string
	for _, p := range strings.Split(document.Content, c.separator) {
		if p = strings.TrimSpace(p); p != "" {
			pieces = append(pieces, p)
		}
	}
	var chunks []domain.Chunk
	emit := func(parts []string) {
		idx := len(chunks)
		chunks = append(chunks, domain.Chunk{
			DocumentID: document.ID,
			ChunkID:    document.ID + ":" + strconv.Itoa(idx),
			Source:     sourceOf(document),
			Text:       strings.Join(parts, c.separator),
			Index:      idx,
		})
	}

	sepLen := len(c.separator)
	var window []string
	total := 0
	for _, p := range pieces {
		extra := 0
		if len(window) > 0 {
			extra = sepLen
		}
		if len(window) > 0 && total+extra+len(p) > c.chunkSize {
			emit(window)
			// keep a tail of the window as overlap for the next chunk
			for len(window) > 0 && (total > c.overlap || total+sepLen+len(p) > c.chunkSize) {
				total -= len(window[0])
				if len(window) > 1 {
					total -= sepLen
				}
				window = window[1:]
			}
		}
		if len(window) > 0 {
			total += sepLen
		}
		window = append(window, p)
		total += len(p)
	}
	if len(window) > 0 {
		emit(window)
	}
	return chunks, nil
}

func sourceOf(d domain.Document) string {
	if d.Page > 0 {
		return d.Path + " p." + strconv.Itoa(d.Page)
	}
	return d.Path
}

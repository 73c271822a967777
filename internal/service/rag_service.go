package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"docchat/internal/domain"
	"docchat/internal/textutil"
	"docchat/internal/zlog"
)

// DefaultSearchTopK is how many chunks Search returns when topK is not positive.
const DefaultSearchTopK = 5

// DocumentLoader expands path patterns into loaded documents.
type DocumentLoader interface {
	LoadAll(patterns []string) ([]domain.Document, error)
}

type RAGServiceImpl struct {
	loader              DocumentLoader
	chunker             domain.Chunker
	embedder            domain.Embedder
	store               domain.VectorStore
	summarizer          domain.Summarizer
	summaryMaxSentences int

	mu        sync.RWMutex
	documents []domain.Document
	chunks    []domain.Chunk
}

func NewRAGService(loader DocumentLoader, chunker domain.Chunker, embedder domain.Embedder, store domain.VectorStore, summarizer domain.Summarizer, summaryMaxSentences int) *RAGServiceImpl {
	return &RAGServiceImpl{
		loader:              loader,
		chunker:             chunker,
		embedder:            embedder,
		store:               store,
		summarizer:          summarizer,
		summaryMaxSentences: summaryMaxSentences,
	}
}

// IngestDocuments replaces the indexed corpus with the documents matched by
// paths and returns an extractive summary of them.
func (s *RAGServiceImpl) IngestDocuments(ctx context.Context, paths []string) (string, error) {
	start := time.Now()
	documents, err := s.loader.LoadAll(paths)
	if err != nil {
		return "", err
	}

	var allChunks []domain.Chunk
	var allTexts []string
	var allTextConcat strings.Builder
	for _, d := range documents {
		chunks, err := s.chunker.Chunk(d)
		if err != nil {
			return "", err
		}
		for _, ch := range chunks {
			allChunks = append(allChunks, ch)
			allTexts = append(allTexts, ch.Text)
		}
		allTextConcat.WriteString("\n")
		allTextConcat.WriteString(d.Content)
	}

	if err := s.embedder.Prepare(allTexts); err != nil {
		return "", err
	}
	// Clear first: some stores drop the whole collection and Init recreates it.
	if err := s.store.Clear(ctx); err != nil {
		return "", err
	}
	if err := s.store.Init(ctx, s.embedder.Dimension()); err != nil {
		return "", err
	}
	vectors := make([][]float64, len(allChunks))
	for i := range allChunks {
		vec, err := s.embedder.Embed(ctx, allChunks[i].Text)
		if err != nil {
			return "", err
		}
		vectors[i] = vec
	}
	if err := s.store.Upsert(ctx, allChunks, vectors); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.documents = documents
	s.chunks = allChunks
	s.mu.Unlock()

	zlog.Info("ingested documents",
		zap.Int("documents", len(documents)),
		zap.Int("chunks", len(allChunks)),
		zap.String("embedder", s.embedder.Name()),
		zap.Duration("took", time.Since(start)),
	)

	summary, err := s.summarizer.Summarize(allTextConcat.String(), s.summaryMaxSentences)
	if err != nil {
		return "", err
	}
	return summary, nil
}

// Query ranks chunks by vector similarity, falling back to token overlap
// when the query vector or every score is zero.
func (s *RAGServiceImpl) Query(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	if isZero(vec) {
		zlog.Debug("query vector is zero, using lexical ranking", zap.String("query", query))
		return s.lexicalSearch(query, topK), nil
	}
	res, err := s.store.Search(ctx, vec, topK)
	if err != nil {
		return nil, err
	}
	allZero := true
	for _, r := range res {
		if r.Score > 1e-9 {
			allZero = false
			break
		}
	}
	if allZero && s.hasChunks() {
		zlog.Debug("no vector match, using lexical ranking", zap.String("query", query))
		return s.lexicalSearch(query, topK), nil
	}
	return res, nil
}

// Search returns the text of the topK best matching chunks.
func (s *RAGServiceImpl) Search(ctx context.Context, query string, topK int) ([]string, error) {
	if topK <= 0 {
		topK = DefaultSearchTopK
	}
	res, err := s.Query(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(res))
	for _, r := range res {
		out = append(out, r.Chunk.Text)
	}
	return out, nil
}

// Documents returns the documents of the last successful ingest.
func (s *RAGServiceImpl) Documents() []domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Document(nil), s.documents...)
}

func (s *RAGServiceImpl) hasChunks() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks) > 0
}

func isZero(vec []float64) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}

func (s *RAGServiceImpl) lexicalSearch(query string, topK int) []domain.SearchResult {
	s.mu.RLock()
	chunks := s.chunks
	s.mu.RUnlock()

	qset := textutil.WordSet(query)
	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(chunks))
	for i, ch := range chunks {
		scores[i] = pair{i, overlapOchiai(qset, ch.Text)}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if topK <= 0 {
		topK = DefaultSearchTopK
	}
	if topK > len(scores) {
		topK = len(scores)
	}
	out := make([]domain.SearchResult, 0, topK)
	for i := 0; i < topK; i++ {
		p := scores[i]
		out = append(out, domain.SearchResult{Chunk: chunks[p.idx], Score: p.score})
	}
	return out
}

// overlapOchiai is |A∩B| / sqrt(|A||B|) over distinct words.
func overlapOchiai(qset map[string]struct{}, text string) float64 {
	words := textutil.WordSet(text)
	if len(qset) == 0 || len(words) == 0 {
		return 0
	}
	inter := 0
	for w := range words {
		if _, ok := qset[w]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(qset))*float64(len(words)))
}

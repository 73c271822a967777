package main

import (
	"fmt"
	"io"
	"time"

	"docchat/internal/chunker"
	"docchat/internal/config"
	"docchat/internal/domain"
	"docchat/internal/embedding"
	"docchat/internal/embedding/openai"
	"docchat/internal/embedding/tfidf"
	"docchat/internal/llm/ollama"
	"docchat/internal/loader"
	"docchat/internal/service"
	"docchat/internal/summarizer"
	"docchat/internal/vectorstore"
	"docchat/internal/vectorstore/memory"
	"docchat/internal/vectorstore/qdrant"
	"docchat/internal/vectorstore/sqlite"
	"docchat/internal/wikipedia"
)

func newEmbedder(cfg *config.AppConfig) (embedding.Embedder, error) {
	switch cfg.Embedder.Type {
	case "tfidf":
		return tfidf.NewEmbedder(), nil
	case "openai":
		o := cfg.Embedder.OpenAI
		if o == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:    o.BaseURL,
			APIKeyEnv:  o.APIKeyEnv,
			Model:      o.Model,
			Timeout:    time.Duration(o.TimeoutSecs) * time.Second,
			MaxRetries: o.MaxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init: %w", err)
		}
		return client, nil
	}
	return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
}

func newChunker(cfg *config.AppConfig) (domain.Chunker, error) {
	c := cfg.Chunker
	switch c.Type {
	case "sentence":
		return chunker.NewSentenceChunker(c.SentencesPerChunk, c.OverlapSentences), nil
	case "character":
		return chunker.NewCharacterChunker(c.ChunkSize, c.ChunkOverlap, c.Separator), nil
	}
	return nil, fmt.Errorf("unknown chunker: %s", c.Type)
}

// newStore returns the configured store and a closer for stores holding a
// file handle.
func newStore(cfg *config.AppConfig) (vectorstore.Storage, io.Closer, error) {
	switch cfg.VectorStore.Type {
	case "memory":
		return memory.NewStorage(), nil, nil
	case "qdrant":
		q := cfg.VectorStore.Qdrant
		return qdrant.NewStorage(qdrant.Config{
			URL:        q.URL,
			APIKey:     q.APIKey,
			Collection: q.Collection,
			Timeout:    time.Duration(q.TimeoutSecs) * time.Second,
		}), nil, nil
	case "sqlite":
		st, err := sqlite.Open(cfg.VectorStore.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, st, nil
	}
	return nil, nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
}

// newService assembles the corpus pipeline. The returned closer is never nil.
func newService(cfg *config.AppConfig) (*service.RAGServiceImpl, io.Closer, error) {
	emb, err := newEmbedder(cfg)
	if err != nil {
		return nil, nil, err
	}
	ch, err := newChunker(cfg)
	if err != nil {
		return nil, nil, err
	}
	var sum domain.Summarizer
	switch cfg.Summarizer.Type {
	case "frequency":
		sum = summarizer.NewFrequencySummarizer()
	default:
		return nil, nil, fmt.Errorf("unknown summarizer: %s", cfg.Summarizer.Type)
	}
	st, closer, err := newStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	return service.NewRAGService(loader.NewMulti(), ch, emb, st, sum, cfg.Summarizer.MaxSentences), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newLLM(cfg *config.AppConfig, temperature float64) *ollama.Client {
	return ollama.NewClient(ollama.Config{
		BaseURL:     cfg.Ollama.BaseURL,
		Model:       cfg.Ollama.Model,
		Temperature: temperature,
		Timeout:     time.Duration(cfg.Ollama.TimeoutSecs) * time.Second,
	})
}

func newWikipedia(cfg *config.AppConfig) *wikipedia.Client {
	w := cfg.Wikipedia
	return wikipedia.NewClient(wikipedia.Config{
		Lang:              w.Lang,
		BaseURL:           w.BaseURL,
		MaxChars:          w.MaxChars,
		Timeout:           time.Duration(w.TimeoutSecs) * time.Second,
		RequestsPerSecond: w.RequestsPerSecond,
	})
}

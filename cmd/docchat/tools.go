package main

import (
	"context"

	"docchat/internal/config"
	"docchat/internal/router"
	"docchat/internal/tool"
)

// Summarizer is the encyclopedic backend.
type Summarizer interface {
	Summarize(ctx context.Context, query string, topK int) (string, error)
}

// Searcher is the local corpus backend.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]string, error)
}

// registerTools registers the encyclopedia and corpus backends under the
// configured tool names.
func registerTools(reg *tool.Registry, rc config.RouterConfig, wiki Summarizer, corpus Searcher) error {
	encyclopediaTopK, corpusTopK := rc.EncyclopediaTopK, rc.CorpusTopK
	err := reg.Register(tool.Func(rc.EncyclopediaTool, func(ctx context.Context, q string) (tool.Result, error) {
		text, err := wiki.Summarize(ctx, q, encyclopediaTopK)
		if err != nil {
			return tool.Result{}, err
		}
		return tool.Result{Text: text}, nil
	}, "Look up general knowledge, people, places and definitions on Wikipedia."))
	if err != nil {
		return err
	}
	return reg.Register(tool.Func(rc.CorpusTool, func(ctx context.Context, q string) (tool.Result, error) {
		fragments, err := corpus.Search(ctx, q, corpusTopK)
		if err != nil {
			return tool.Result{}, err
		}
		return tool.Result{Fragments: fragments}, nil
	}, "Search the ingested local documents."))
}

// newRouter builds a registry with both backends and a word-count router
// over it.
func newRouter(rc config.RouterConfig, wiki Summarizer, corpus Searcher) (*router.Router, error) {
	reg := tool.NewRegistry()
	if err := registerTools(reg, rc, wiki, corpus); err != nil {
		return nil, err
	}
	return router.New(reg, router.WordCountDecider{
		Threshold: rc.Threshold,
		Short:     rc.EncyclopediaTool,
		Long:      rc.CorpusTool,
	})
}

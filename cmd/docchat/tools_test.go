package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/config"
	"docchat/internal/router"
	"docchat/internal/tool"
)

type fakeWiki struct {
	gotTopK int
	err     error
}

func (f *fakeWiki) Summarize(_ context.Context, q string, topK int) (string, error) {
	f.gotTopK = topK
	return "Page: " + q, f.err
}

type fakeCorpus struct{ gotTopK int }

func (f *fakeCorpus) Search(_ context.Context, q string, topK int) ([]string, error) {
	f.gotTopK = topK
	return []string{"chunk about " + q}, nil
}

func routerConfig() config.RouterConfig {
	return config.RouterConfig{
		Threshold:        5,
		EncyclopediaTool: "Wikipedia",
		CorpusTool:       "Corpus",
		EncyclopediaTopK: 1,
		CorpusTopK:       5,
	}
}

func TestNewRouterDispatchesByLength(t *testing.T) {
	wiki, corpus := &fakeWiki{}, &fakeCorpus{}
	r, err := newRouter(routerConfig(), wiki, corpus)
	require.NoError(t, err)
	ctx := context.Background()

	res, err := r.Run(ctx, "Alan Turing")
	require.NoError(t, err)
	assert.Equal(t, tool.Result{Text: "Page: Alan Turing"}, res)
	assert.Equal(t, 1, wiki.gotTopK)

	res, err = r.Run(ctx, "what did the report say about revenue")
	require.NoError(t, err)
	assert.Equal(t, []string{"chunk about what did the report say about revenue"}, res.Fragments)
	assert.Equal(t, 5, corpus.gotTopK)
}

func TestNewRouterWrapsBackendFailure(t *testing.T) {
	boom := errors.New("offline")
	r, err := newRouter(routerConfig(), &fakeWiki{err: boom}, &fakeCorpus{})
	require.NoError(t, err)

	_, err = r.Run(context.Background(), "Paris")
	var be *router.BackendInvocationError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "Wikipedia", be.Tool)
	assert.ErrorIs(t, err, boom)
}

func TestRegisterToolsRejectsDuplicateNames(t *testing.T) {
	rc := routerConfig()
	rc.CorpusTool = rc.EncyclopediaTool
	_, err := newRouter(rc, &fakeWiki{}, &fakeCorpus{})
	var dup *tool.DuplicateNameError
	assert.ErrorAs(t, err, &dup)
}

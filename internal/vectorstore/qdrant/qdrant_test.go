package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/domain"
)

type fakeQdrant struct {
	mu       sync.Mutex
	exists   bool
	requests []string
	apiKeys  []string
	points   []map[string]any
}

func (f *fakeQdrant) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.apiKeys = append(f.apiKeys, r.Header.Get("api-key"))
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/collections/docs":
		if !f.exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
	case r.Method == http.MethodPut && r.URL.Path == "/collections/docs":
		f.exists = true
	case r.Method == http.MethodDelete && r.URL.Path == "/collections/docs":
		f.exists = false
		f.points = nil
	case r.Method == http.MethodPut && r.URL.Path == "/collections/docs/points":
		var body struct {
			Points []map[string]any `json:"points"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.points = append(f.points, body.Points...)
	case r.Method == http.MethodPost && r.URL.Path == "/collections/docs/points/count":
		_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"count": len(f.points)}})
		return
	case r.Method == http.MethodPost && r.URL.Path == "/collections/docs/points/search":
		out := []map[string]any{}
		for _, p := range f.points {
			out = append(out, map[string]any{"id": p["id"], "score": 0.9, "payload": p["payload"]})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": out})
		return
	default:
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	_, _ = w.Write([]byte(`{"result":true}`))
}

func TestStorageLifecycle(t *testing.T) {
	fake := &fakeQdrant{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	ctx := context.Background()
	s := NewStorage(Config{URL: srv.URL + "/", APIKey: "secret", Collection: "docs"})
	require.NoError(t, s.Init(ctx, 3))
	require.NoError(t, s.Clear(ctx))
	require.True(t, fake.exists, "clear recreates the collection")

	chunks := []domain.Chunk{{DocumentID: "d", ChunkID: "d:0", Source: "a.pdf p.1", Text: "Sputnik launched in 1957.", Index: 0}}
	require.NoError(t, s.Upsert(ctx, chunks, [][]float64{{1, 0, 0}}))

	_, err := uuid.Parse(fake.points[0]["id"].(string))
	assert.NoError(t, err, "point ids must be UUIDs")

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	res, err := s.Search(ctx, []float64{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, chunks[0], res[0].Chunk)
	assert.InDelta(t, 0.9, res[0].Score, 1e-9)
	for _, k := range fake.apiKeys {
		assert.Equal(t, "secret", k)
	}
}

func TestInitSkipsExistingCollection(t *testing.T) {
	fake := &fakeQdrant{exists: true}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	s := NewStorage(Config{URL: srv.URL, APIKey: "secret", Collection: "docs"})
	require.NoError(t, s.Init(context.Background(), 3))
	assert.Equal(t, []string{"GET /collections/docs"}, fake.requests)
}

func TestInitPropagatesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewStorage(Config{URL: srv.URL, Collection: "docs"})
	assert.Error(t, s.Init(context.Background(), 3))
	assert.Error(t, s.Init(context.Background(), 0))
}

func TestPointIDDeterministic(t *testing.T) {
	assert.Equal(t, PointID("abc:1"), PointID("abc:1"))
	assert.NotEqual(t, PointID("abc:1"), PointID("abc:2"))
}

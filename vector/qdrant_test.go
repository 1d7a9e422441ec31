package vector

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQdrant records requests and serves canned Qdrant REST responses.
type fakeQdrant struct {
	t        *testing.T
	exists   bool
	created  bool
	upserts  []map[string]any
	searches []map[string]any
	deletes  []map[string]any
	hits     []map[string]any
}

func (f *fakeQdrant) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /collections/documents/exists", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"exists": f.exists}})
	})
	mux.HandleFunc("PUT /collections/documents", func(w http.ResponseWriter, r *http.Request) {
		f.created = true
		var body map[string]any
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		vectors := body["vectors"].(map[string]any)
		assert.Equal(f.t, "Cosine", vectors["distance"])
		json.NewEncoder(w).Encode(map[string]any{"result": true})
	})
	mux.HandleFunc("PUT /collections/documents/points", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, "true", r.URL.Query().Get("wait"))
		var body map[string]any
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		f.upserts = append(f.upserts, body)
		json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"status": "completed"}})
	})
	mux.HandleFunc("POST /collections/documents/points/search", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		f.searches = append(f.searches, body)
		json.NewEncoder(w).Encode(map[string]any{"result": f.hits})
	})
	mux.HandleFunc("POST /collections/documents/points/delete", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		f.deletes = append(f.deletes, body)
		json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"status": "completed"}})
	})
	return mux
}

func newFake(t *testing.T) (*fakeQdrant, *QdrantStore) {
	f := &fakeQdrant{t: t}
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return f, NewQdrantStore(QdrantConfig{URL: srv.URL, Collection: "documents"})
}

func TestQdrantStore_EnsureCollection(t *testing.T) {
	t.Run("creates when missing", func(t *testing.T) {
		f, s := newFake(t)
		require.NoError(t, s.EnsureCollection(context.Background(), 384))
		assert.True(t, f.created)
	})

	t.Run("no-op when present", func(t *testing.T) {
		f, s := newFake(t)
		f.exists = true
		require.NoError(t, s.EnsureCollection(context.Background(), 384))
		assert.False(t, f.created)
	})

	t.Run("rejects invalid dimension", func(t *testing.T) {
		_, s := newFake(t)
		err := s.EnsureCollection(context.Background(), 0)
		assert.ErrorIs(t, err, ErrIndexWrite)
	})
}

func TestQdrantStore_Upsert(t *testing.T) {
	f, s := newFake(t)
	err := s.Upsert(context.Background(), []Point{
		{ID: "c1", Vector: []float32{1, 0}, Payload: Payload{DocumentID: "d1", ChunkID: "c1", Content: "one"}},
		{ID: "c2", Vector: []float32{0, 1}, Payload: Payload{DocumentID: "d1", ChunkID: "c2", Content: "two"}},
	})
	require.NoError(t, err)
	require.Len(t, f.upserts, 1)

	points := f.upserts[0]["points"].([]any)
	require.Len(t, points, 2)
	first := points[0].(map[string]any)
	assert.Equal(t, "c1", first["id"])
	payload := first["payload"].(map[string]any)
	assert.Equal(t, "d1", payload["document_id"])
	assert.Equal(t, "one", payload["content"])
}

func TestQdrantStore_UpsertEmpty(t *testing.T) {
	f, s := newFake(t)
	require.NoError(t, s.Upsert(context.Background(), nil))
	assert.Empty(t, f.upserts)
}

func TestQdrantStore_Search(t *testing.T) {
	f, s := newFake(t)
	f.hits = []map[string]any{
		{"score": 0.93, "payload": map[string]any{"document_id": "d1", "chunk_id": "c2", "content": "two"}},
		{"score": 0.41, "payload": map[string]any{"document_id": "d1", "chunk_id": "c1", "content": "one"}},
	}

	hits, err := s.Search(context.Background(), []float32{0, 1}, 2, &Filter{DocumentID: "d1"})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "c2", hits[0].ChunkID)
	assert.InDelta(t, 0.93, hits[0].Score, 1e-6)
	assert.Equal(t, "two", hits[0].Content)

	// The filter restricts by payload document_id.
	require.Len(t, f.searches, 1)
	filter := f.searches[0]["filter"].(map[string]any)
	must := filter["must"].([]any)[0].(map[string]any)
	assert.Equal(t, "document_id", must["key"])
	assert.Equal(t, "d1", must["match"].(map[string]any)["value"])
	assert.Equal(t, true, f.searches[0]["with_payload"])
}

func TestQdrantStore_SearchNoFilter(t *testing.T) {
	f, s := newFake(t)
	_, err := s.Search(context.Background(), []float32{1}, 0, nil)
	require.NoError(t, err)
	require.Len(t, f.searches, 1)
	_, hasFilter := f.searches[0]["filter"]
	assert.False(t, hasFilter)
	// limit defaults to 5
	assert.EqualValues(t, 5, f.searches[0]["limit"])
}

func TestQdrantStore_DeleteByDocument(t *testing.T) {
	f, s := newFake(t)
	require.NoError(t, s.DeleteByDocument(context.Background(), "d1"))
	require.Len(t, f.deletes, 1)
	filter := f.deletes[0]["filter"].(map[string]any)
	must := filter["must"].([]any)[0].(map[string]any)
	assert.Equal(t, "d1", must["match"].(map[string]any)["value"])
}

func TestQdrantStore_ErrorWrapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	s := NewQdrantStore(QdrantConfig{URL: srv.URL})

	err := s.Upsert(context.Background(), []Point{{ID: "x"}})
	assert.True(t, errors.Is(err, ErrIndexWrite), "upsert error should wrap ErrIndexWrite: %v", err)

	_, err = s.Search(context.Background(), []float32{1}, 1, nil)
	assert.True(t, errors.Is(err, ErrIndexRead), "search error should wrap ErrIndexRead: %v", err)

	err = s.DeleteByDocument(context.Background(), "d")
	assert.True(t, errors.Is(err, ErrIndexWrite), "delete error should wrap ErrIndexWrite: %v", err)
}

package qdrant

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studybuddy/internal/pkg/httpx"
	"studybuddy/internal/vectorstore"
)

type call struct {
	method string
	path   string
	body   string
}

func recorder(t *testing.T, respond func(w http.ResponseWriter, r *http.Request)) (*[]call, *Store) {
	var calls []call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, call{method: r.Method, path: r.URL.RequestURI(), body: string(body)})
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		respond(w, r)
	}))
	t.Cleanup(srv.Close)
	return &calls, New(Config{URL: srv.URL, APIKey: "secret", Collection: "notes"})
}

func TestEnsureCollectionCreatesWhenMissing(t *testing.T) {
	calls, s := recorder(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"result":true}`))
	})

	require.NoError(t, s.EnsureCollection(context.Background(), 384, vectorstore.MetricCosine))
	require.Len(t, *calls, 2)
	create := (*calls)[1]
	assert.Equal(t, http.MethodPut, create.method)
	assert.Equal(t, "/collections/notes", create.path)
	assert.JSONEq(t, `{"vectors":{"size":384,"distance":"Cosine"}}`, create.body)
}

func TestEnsureCollectionExisting(t *testing.T) {
	calls, s := recorder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{}}`))
	})
	require.NoError(t, s.EnsureCollection(context.Background(), 384, vectorstore.MetricCosine))
	assert.Len(t, *calls, 1)
}

func TestUpsertUsesStablePointIDs(t *testing.T) {
	calls, s := recorder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{}}`))
	})
	require.NoError(t, s.Upsert(context.Background(), []vectorstore.Record{
		{ID: "notes.txt#0", Vector: []float32{1, 0}, Metadata: map[string]string{"text": "hello"}},
	}))

	require.Len(t, *calls, 1)
	assert.Equal(t, "/collections/notes/points?wait=true", (*calls)[0].path)
	var body struct {
		Points []point `json:"points"`
	}
	require.NoError(t, json.Unmarshal([]byte((*calls)[0].body), &body))
	require.Len(t, body.Points, 1)
	assert.Equal(t, pointID("notes.txt#0"), body.Points[0].ID)
	assert.Equal(t, "notes.txt#0", body.Points[0].Payload[payloadRecordID])
	assert.Equal(t, "hello", body.Points[0].Payload["text"])
}

func TestQueryMapsPayload(t *testing.T) {
	_, s := recorder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":[
			{"id":"u1","score":0.8,"payload":{"record_id":"doc#1","text":"one"}},
			{"id":"u2","score":0.95,"payload":{"record_id":"doc#2","text":"two"}}
		]}`))
	})

	hits, err := s.Query(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "doc#2", hits[0].ID)
	assert.Equal(t, "two", hits[0].Text)
}

func TestDeleteAllKeepsCollection(t *testing.T) {
	calls, s := recorder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"status":"completed"}}`))
	})

	require.NoError(t, s.DeleteAll(context.Background()))
	require.Len(t, *calls, 1)
	assert.Equal(t, http.MethodPost, (*calls)[0].method)
	assert.Equal(t, "/collections/notes/points/delete?wait=true", (*calls)[0].path)
	assert.JSONEq(t, `{"filter":{}}`, (*calls)[0].body)
}

func TestDeleteAllFailureIsUpstreamError(t *testing.T) {
	calls, s := recorder(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := s.DeleteAll(context.Background())
	var upstream *httpx.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
	for _, c := range *calls {
		assert.NotEqual(t, http.MethodDelete, c.method)
	}
}

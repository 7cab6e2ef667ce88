// Package qdrant is a minimal REST client for one Qdrant collection.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"studybuddy/internal/pkg/httpx"
	"studybuddy/internal/vectorstore"
)

// payloadRecordID keeps the caller's id; Qdrant only accepts uuid or integer
// point ids, so point ids are derived from it.
const payloadRecordID = "record_id"

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

type Store struct {
	conn       *httpx.Connector
	collection string
}

func New(cfg Config) *Store {
	var headers map[string]string
	if cfg.APIKey != "" {
		headers = map[string]string{"api-key": cfg.APIKey}
	}
	conn := httpx.NewConnector(httpx.ConnectorConfig{BaseURL: cfg.URL, Headers: headers},
		httpx.WithRequestTimeout(cfg.Timeout), httpx.WithConnTimeout(3*time.Second), httpx.WithRequestLogging())
	return &Store{conn: conn, collection: cfg.Collection}
}

func pointID(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(id)).String()
}

func distance(metric vectorstore.Metric) string {
	switch metric {
	case vectorstore.MetricCosine:
		return "Cosine"
	default:
		return string(metric)
	}
}

func (s *Store) collectionPath() string {
	return "/collections/" + s.collection
}

// EnsureCollection creates the collection when GET reports 404.
func (s *Store) EnsureCollection(ctx context.Context, dimension int, metric vectorstore.Metric) error {
	err := s.conn.DoJSON(ctx, http.MethodGet, s.collectionPath(), nil, nil)
	var upstream *httpx.UpstreamError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &upstream) && upstream.StatusCode == http.StatusNotFound:
		return s.create(ctx, dimension, metric)
	default:
		return fmt.Errorf("get qdrant collection failed: %w", err)
	}
}

func (s *Store) create(ctx context.Context, dimension int, metric vectorstore.Metric) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": distance(metric),
		},
	}
	if err := s.conn.DoJSON(ctx, http.MethodPut, s.collectionPath(), body, nil); err != nil {
		return fmt.Errorf("create qdrant collection failed: %w", err)
	}
	return nil
}

type point struct {
	ID      string            `json:"id"`
	Vector  []float32         `json:"vector"`
	Payload map[string]string `json:"payload"`
}

func (s *Store) Upsert(ctx context.Context, records []vectorstore.Record) error {
	if len(records) == 0 {
		return nil
	}
	points := make([]point, len(records))
	for i, r := range records {
		payload := make(map[string]string, len(r.Metadata)+1)
		for k, v := range r.Metadata {
			payload[k] = v
		}
		payload[payloadRecordID] = r.ID
		points[i] = point{ID: pointID(r.ID), Vector: r.Vector, Payload: payload}
	}
	body := map[string]any{"points": points}
	if err := s.conn.DoJSON(ctx, http.MethodPut, s.collectionPath()+"/points?wait=true", body, nil); err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

// DeleteAll removes every point with an empty filter. The collection and its
// vector config stay in place.
func (s *Store) DeleteAll(ctx context.Context) error {
	body := map[string]any{"filter": map[string]any{}}
	if err := s.conn.DoJSON(ctx, http.MethodPost, s.collectionPath()+"/points/delete?wait=true", body, nil); err != nil {
		return fmt.Errorf("qdrant delete points failed: %w", err)
	}
	return nil
}

type searchResponse struct {
	Result []struct {
		ID      any            `json:"id"`
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]vectorstore.Hit, error) {
	if topK <= 0 {
		return nil, nil
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp searchResponse
	if err := s.conn.DoJSON(ctx, http.MethodPost, s.collectionPath()+"/points/search", req, &resp); err != nil {
		return nil, fmt.Errorf("qdrant search failed: %w", err)
	}

	hits := make([]vectorstore.Hit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hit := vectorstore.Hit{Score: r.Score}
		if v, ok := r.Payload[payloadRecordID].(string); ok {
			hit.ID = v
		} else {
			hit.ID = fmt.Sprint(r.ID)
		}
		if v, ok := r.Payload[vectorstore.MetadataText].(string); ok {
			hit.Text = v
		}
		hits = append(hits, hit)
	}
	return vectorstore.TopK(hits, topK), nil
}

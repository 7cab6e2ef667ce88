// Package pinecone is a REST client for a Pinecone serverless index.
package pinecone

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"studybuddy/internal/pkg/httpx"
	"studybuddy/internal/vectorstore"
)

const (
	apiVersion      = "2025-01"
	upsertBatchSize = 100
)

type Config struct {
	APIKey          string
	Index           string
	Cloud           string
	Region          string
	ControlPlaneURL string
	Namespace       string
	Timeout         time.Duration
}

type Store struct {
	cfg     Config
	control *httpx.Connector

	mu   sync.Mutex
	data *httpx.Connector
}

func New(cfg Config) *Store {
	if cfg.ControlPlaneURL == "" {
		cfg.ControlPlaneURL = "https://api.pinecone.io"
	}
	return &Store{
		cfg:     cfg,
		control: httpx.NewConnector(httpx.ConnectorConfig{BaseURL: cfg.ControlPlaneURL, Headers: headers(cfg.APIKey)}, options(cfg)...),
	}
}

func headers(apiKey string) map[string]string {
	return map[string]string{
		"Api-Key":                apiKey,
		"X-Pinecone-API-Version": apiVersion,
	}
}

func options(cfg Config) []httpx.Option {
	return []httpx.Option{httpx.WithRequestTimeout(cfg.Timeout), httpx.WithRequestLogging()}
}

type indexDescription struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric"`
	Host      string `json:"host"`
}

type listIndexesResponse struct {
	Indexes []indexDescription `json:"indexes"`
}

type createIndexRequest struct {
	Name      string    `json:"name"`
	Dimension int       `json:"dimension"`
	Metric    string    `json:"metric"`
	Spec      indexSpec `json:"spec"`
}

type indexSpec struct {
	Serverless serverlessSpec `json:"serverless"`
}

type serverlessSpec struct {
	Cloud  string `json:"cloud"`
	Region string `json:"region"`
}

// EnsureCollection creates the index when no index of that name is listed.
// An existing index is used as is.
func (s *Store) EnsureCollection(ctx context.Context, dimension int, metric vectorstore.Metric) error {
	var list listIndexesResponse
	if err := s.control.DoJSON(ctx, http.MethodGet, "/indexes", nil, &list); err != nil {
		return fmt.Errorf("list pinecone indexes failed: %w", err)
	}
	for _, idx := range list.Indexes {
		if idx.Name == s.cfg.Index {
			return nil
		}
	}

	req := createIndexRequest{
		Name:      s.cfg.Index,
		Dimension: dimension,
		Metric:    string(metric),
		Spec:      indexSpec{Serverless: serverlessSpec{Cloud: s.cfg.Cloud, Region: s.cfg.Region}},
	}
	err := s.control.DoJSON(ctx, http.MethodPost, "/indexes", req, nil)
	var upstream *httpx.UpstreamError
	if errors.As(err, &upstream) && upstream.StatusCode == http.StatusConflict {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create pinecone index failed: %w", err)
	}
	return nil
}

// dataPlane resolves the index host once and caches the connector.
func (s *Store) dataPlane(ctx context.Context) (*httpx.Connector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data != nil {
		return s.data, nil
	}

	var desc indexDescription
	if err := s.control.DoJSON(ctx, http.MethodGet, "/indexes/"+s.cfg.Index, nil, &desc); err != nil {
		return nil, fmt.Errorf("describe pinecone index failed: %w", err)
	}
	if desc.Host == "" {
		return nil, fmt.Errorf("pinecone index %s has no host yet", s.cfg.Index)
	}
	host := desc.Host
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	s.data = httpx.NewConnector(httpx.ConnectorConfig{BaseURL: host, Headers: headers(s.cfg.APIKey)}, options(s.cfg)...)
	return s.data, nil
}

type vector struct {
	ID       string            `json:"id"`
	Values   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type upsertRequest struct {
	Vectors   []vector `json:"vectors"`
	Namespace string   `json:"namespace"`
}

// Upsert sends records in batches. A failing batch stops the upload; earlier
// batches stay written.
func (s *Store) Upsert(ctx context.Context, records []vectorstore.Record) error {
	if len(records) == 0 {
		return nil
	}
	conn, err := s.dataPlane(ctx)
	if err != nil {
		return err
	}
	for start := 0; start < len(records); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(records))
		batch := make([]vector, 0, end-start)
		for _, r := range records[start:end] {
			batch = append(batch, vector{ID: r.ID, Values: r.Vector, Metadata: r.Metadata})
		}
		req := upsertRequest{Vectors: batch, Namespace: s.cfg.Namespace}
		if err := conn.DoJSON(ctx, http.MethodPost, "/vectors/upsert", req, nil); err != nil {
			return fmt.Errorf("pinecone upsert failed: %w", err)
		}
	}
	return nil
}

type deleteRequest struct {
	DeleteAll bool   `json:"deleteAll"`
	Namespace string `json:"namespace"`
}

func (s *Store) DeleteAll(ctx context.Context) error {
	conn, err := s.dataPlane(ctx)
	if err != nil {
		return err
	}
	req := deleteRequest{DeleteAll: true, Namespace: s.cfg.Namespace}
	if err := conn.DoJSON(ctx, http.MethodPost, "/vectors/delete", req, nil); err != nil {
		return fmt.Errorf("pinecone delete all failed: %w", err)
	}
	return nil
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
	IncludeValues   bool      `json:"includeValues"`
	Namespace       string    `json:"namespace"`
}

type queryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

func (s *Store) Query(ctx context.Context, vec []float32, topK int) ([]vectorstore.Hit, error) {
	if topK <= 0 {
		return nil, nil
	}
	conn, err := s.dataPlane(ctx)
	if err != nil {
		return nil, err
	}
	req := queryRequest{Vector: vec, TopK: topK, IncludeMetadata: true, Namespace: s.cfg.Namespace}
	var resp queryResponse
	if err := conn.DoJSON(ctx, http.MethodPost, "/query", req, &resp); err != nil {
		return nil, fmt.Errorf("pinecone query failed: %w", err)
	}

	hits := make([]vectorstore.Hit, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		text, _ := m.Metadata[vectorstore.MetadataText].(string)
		hits = append(hits, vectorstore.Hit{ID: m.ID, Score: m.Score, Text: text})
	}
	return vectorstore.TopK(hits, topK), nil
}

// Package bolt stores vectors in a local bbolt file and scans them on query.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.etcd.io/bbolt"

	"studybuddy/internal/vectorstore"
)

var (
	bucketVectors = []byte("vectors")
	bucketMeta    = []byte("meta")
	keyDimension  = []byte("dimension")
	keyMetric     = []byte("metric")
)

type Store struct {
	db *bbolt.DB
}

type storedRecord struct {
	Vector   []float32         `json:"vector"`
	Metadata map[string]string `json:"metadata"`
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create bolt dir failed: %w", err)
		}
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db failed: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureCollection creates the buckets and records dimension and metric the
// first time; later calls leave the stored values alone.
func (s *Store) EnsureCollection(_ context.Context, dimension int, metric vectorstore.Metric) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketVectors); err != nil {
			return fmt.Errorf("create bucket %s failed: %w", bucketVectors, err)
		}
		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return fmt.Errorf("create bucket %s failed: %w", bucketMeta, err)
		}
		if meta.Get(keyDimension) != nil {
			return nil
		}
		if err := meta.Put(keyDimension, []byte(strconv.Itoa(dimension))); err != nil {
			return err
		}
		return meta.Put(keyMetric, []byte(metric))
	})
}

func (s *Store) Upsert(_ context.Context, records []vectorstore.Record) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketVectors)
		if err != nil {
			return err
		}
		for _, r := range records {
			data, err := json.Marshal(storedRecord{Vector: r.Vector, Metadata: r.Metadata})
			if err != nil {
				return fmt.Errorf("marshal record %s failed: %w", r.ID, err)
			}
			if err := b.Put([]byte(r.ID), data); err != nil {
				return fmt.Errorf("put record %s failed: %w", r.ID, err)
			}
		}
		return nil
	})
}

func (s *Store) DeleteAll(_ context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketVectors) != nil {
			if err := tx.DeleteBucket(bucketVectors); err != nil {
				return fmt.Errorf("drop bucket failed: %w", err)
			}
		}
		_, err := tx.CreateBucket(bucketVectors)
		return err
	})
}

func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]vectorstore.Hit, error) {
	if topK <= 0 {
		return nil, nil
	}
	var hits []vectorstore.Hit
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec storedRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode record %s failed: %w", k, err)
			}
			hits = append(hits, vectorstore.Hit{
				ID:    string(k),
				Score: vectorstore.Cosine(vector, rec.Vector),
				Text:  rec.Metadata[vectorstore.MetadataText],
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return vectorstore.TopK(hits, topK), nil
}

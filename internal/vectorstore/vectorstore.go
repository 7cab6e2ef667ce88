// Package vectorstore defines the nearest-neighbour index used by retrieval.
// Backends live in the sub-packages.
package vectorstore

import (
	"context"
	"math"
	"sort"
)

type Metric string

const MetricCosine Metric = "cosine"

// Metadata keys written with every chunk record.
const (
	MetadataText   = "text"
	MetadataSource = "source"
	MetadataChunk  = "chunk"
)

type Record struct {
	ID       string
	Vector   []float32
	Metadata map[string]string
}

type Hit struct {
	ID    string
	Score float64
	Text  string
}

// Store is a vector collection. EnsureCollection creates the collection when
// it does not exist and leaves an existing one untouched, without checking
// its dimension. Upsert overwrites records with the same id. Query returns
// at most topK hits in descending score order.
type Store interface {
	EnsureCollection(ctx context.Context, dimension int, metric Metric) error
	Upsert(ctx context.Context, records []Record) error
	DeleteAll(ctx context.Context) error
	Query(ctx context.Context, vector []float32, topK int) ([]Hit, error)
}

// Cosine returns the cosine similarity of a and b, or 0 when the lengths
// differ or either vector is zero.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// TopK sorts hits by descending score and keeps the first k.
func TopK(hits []Hit, k int) []Hit {
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k >= 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// Package embedding turns text into fixed-size vectors.
package embedding

import (
	"context"
	"fmt"
	"math"
)

// Embedder maps texts to vectors of Dimension() floats. It returns exactly one
// vector per input, in input order, and the same vector for the same text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	ModelName() string
}

// ModelError reports that the embedding model could not process the input,
// for example because it failed to load.
type ModelError struct {
	Model string
	Err   error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("embedding model %s: %v", e.Model, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}

// checkShape guards the one-vector-per-input contract for backends that
// receive vectors from elsewhere.
func checkShape(model string, dim int, texts []string, vecs [][]float32) error {
	if len(vecs) != len(texts) {
		return &ModelError{Model: model, Err: fmt.Errorf("got %d vectors for %d texts", len(vecs), len(texts))}
	}
	for i, v := range vecs {
		if len(v) != dim {
			return &ModelError{Model: model, Err: fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dim)}
		}
	}
	return nil
}

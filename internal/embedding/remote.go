package embedding

import (
	"context"

	"studybuddy/internal/ai"
)

type batchEmbedder interface {
	EmbedBatch(ctx context.Context, model string, texts []string) ([][]float32, error)
}

// RemoteEmbedder calls an OpenAI-compatible /embeddings endpoint.
type RemoteEmbedder struct {
	client batchEmbedder
	model  string
	dim    int
}

func NewRemoteEmbedder(client *ai.OpenAICompatibleClient, model string, dim int) *RemoteEmbedder {
	return &RemoteEmbedder{client: client, model: model, dim: dim}
}

func (e *RemoteEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs, err := e.client.EmbedBatch(ctx, e.model, texts)
	if err != nil {
		return nil, err
	}
	if err := checkShape(e.model, e.dim, texts, vecs); err != nil {
		return nil, err
	}
	return vecs, nil
}

func (e *RemoteEmbedder) Dimension() int {
	return e.dim
}

func (e *RemoteEmbedder) ModelName() string {
	return e.model
}

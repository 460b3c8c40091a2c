package embedding

import "context"

// EmbeddingProvider generates a fixed-dimension embedding for a piece of
// text. taskType distinguishes document vs query embeddings for providers
// that support asymmetric retrieval; others ignore it.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) ([]float32, error)
}

// Package embeddings turns text into vectors for the vector store. The store
// is configured with a no-op vectorizer, so every read and write path goes
// through one of these providers.
package embeddings

import "context"

type Model struct {
	Name       string
	Dimensions int
}

type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds several texts in one round trip. The result is
	// index-aligned with the input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	Model() Model
}

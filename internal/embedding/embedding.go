// Package embedding computes message embeddings and keeps the store's
// embedding table in step with imported messages.
package embedding

import "context"

// Embedder turns text into a vector. Implementations are the Ollama and
// Gemini clients.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

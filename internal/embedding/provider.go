package embedding

import "context"

// Provider is the embedding capability injected into the vector store.
// The store and its tests depend on this interface, not on any specific
// embedding backend.
type Provider interface {
	// EmbedTexts returns one vector per input text, in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

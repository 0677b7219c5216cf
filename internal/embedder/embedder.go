// internal/embedder/embedder.go
package embedder

import "context"

// Embedder turns a word into a unit-length embedding in the same space as
// the palette vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

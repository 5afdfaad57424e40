// Package embedding turns free text into fixed-length vectors. The model
// behind the Provider interface normalizes its output to unit L2 norm, so a
// plain dot product between two embeddings equals their cosine similarity;
// re-verify that property before swapping in a different model.
package embedding

import (
	"context"
	"errors"
)

// ErrUnavailable means the model could not be loaded or inference failed.
// It is transient: callers may retry the request later, and other endpoints
// keep working.
var ErrUnavailable = errors.New("embedding model unavailable")

// Provider generates vector embeddings from text. The vector length is
// fixed for the lifetime of the process.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Close() error
}

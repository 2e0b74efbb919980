// Package provider implements clients for external generative models.
package provider

import "context"

// Request is a single generation call.
type Request struct {
	System string
	User   string
	Count  int
}

// Chunk is one incremental piece of a generation stream. Err is set on
// the final chunk when the upstream stream terminated abnormally.
type Chunk struct {
	Content string
	Err     error
}

// Generator streams model output for a composed prompt pair. The
// returned channel is closed when the stream ends; callers must drain
// it or cancel the context to release the upstream connection.
type Generator interface {
	Generate(ctx context.Context, req Request) (<-chan Chunk, error)
}

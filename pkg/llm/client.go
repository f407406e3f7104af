// Package llm defines the provider-agnostic chat types and the Client
// interface implemented by every model provider.
package llm

import "context"

// Client sends chat requests to a model endpoint.
type Client interface {
	// Chat performs one chat completion. When req.Stream is true the
	// provider invokes onChunk for every partial chunk, in order, before
	// returning the assembled response. onChunk may be nil.
	Chat(ctx context.Context, req *ChatRequest, onChunk ChunkFunc) (*ChatResponse, error)

	// Name returns the provider's canonical name.
	Name() string
}

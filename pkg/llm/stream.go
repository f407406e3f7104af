package llm

// StreamChunk represents a single partial chunk of a streaming response.
type StreamChunk struct {
	// Model that generated the chunk
	Model string `json:"model"`

	// Partial text of this chunk
	Content string `json:"content"`

	// Whether this is the final chunk
	Done bool `json:"done"`
}

// ChunkFunc receives each streamed chunk as it arrives.
type ChunkFunc func(StreamChunk)

package llm

// ChatRequest represents a provider-agnostic chat completion request.
// Providers translate it into their own wire format.
type ChatRequest struct {
	// Model name (e.g., "gemma3:27b", "gpt-4o-mini")
	Model string `json:"model"`

	// Conversation messages, usually [system, user]
	Messages []Message `json:"messages"`

	// Whether to stream the response
	Stream bool `json:"stream"`

	// Decoding options
	Options Options `json:"options"`
}

// Options holds the decoding parameters sent with every request.
// Temperature and Seed are always sent, so a zero value means
// deterministic decoding rather than "provider default".
type Options struct {
	Temperature float64 `json:"temperature"`
	Seed        int     `json:"seed"`

	// NumCtx sets the context window where the provider supports it.
	// Zero leaves the provider default in place.
	NumCtx int `json:"num_ctx,omitempty"`
}

package memory

import (
	"context"

	"github.com/papercomputeco/rsum/pkg/dialogue"
	"github.com/papercomputeco/rsum/pkg/prompt"
)

// Responder answers the open dialogue context using the final memory.
type Responder struct {
	gen Generator
}

// NewResponder creates a Responder.
func NewResponder(gen Generator) *Responder {
	return &Responder{gen: gen}
}

// Respond returns the assistant's next utterance.
func (r *Responder) Respond(ctx context.Context, m Memory, c dialogue.Context) (string, error) {
	return r.gen.Generate(ctx, prompt.Response(string(m), c.String()))
}

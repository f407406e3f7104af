package memory

import (
	"context"

	"github.com/papercomputeco/rsum/pkg/dialogue"
	"github.com/papercomputeco/rsum/pkg/prompt"
)

// Drafter folds one session into the previous memory.
type Drafter struct {
	gen   Generator
	style prompt.DraftStyle
}

// NewDrafter creates a Drafter using the given instruction style.
func NewDrafter(gen Generator, style prompt.DraftStyle) *Drafter {
	return &Drafter{gen: gen, style: style}
}

// Draft returns the candidate memory for session s.
func (d *Drafter) Draft(ctx context.Context, prev Memory, s dialogue.Session) (Memory, error) {
	out, err := d.gen.Generate(ctx, prompt.MemoryDraft(d.style, string(prev), s.Text, s.Ordinal))
	if err != nil {
		return "", err
	}
	return Memory(out), nil
}

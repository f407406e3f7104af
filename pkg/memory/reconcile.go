package memory

import (
	"context"

	"github.com/papercomputeco/rsum/pkg/prompt"
)

// Reconciler corrects a draft against verification results.
type Reconciler struct {
	gen Generator
}

// NewReconciler creates a Reconciler.
func NewReconciler(gen Generator) *Reconciler {
	return &Reconciler{gen: gen}
}

// Reconcile returns the verified memory. Verification results override the
// draft where they disagree. An empty record still issues the call.
func (r *Reconciler) Reconcile(ctx context.Context, draft Memory, record *Record) (Memory, error) {
	out, err := r.gen.Generate(ctx, prompt.Reconcile(string(draft), record.Pairs()))
	if err != nil {
		return "", err
	}
	return Memory(out), nil
}

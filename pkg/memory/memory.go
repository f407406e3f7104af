// Package memory implements the stages that fold one dialogue session into
// a running memory: draft, delta, verification questions, fact verification,
// reconciliation, and the final response.
//
// Every stage is stateless. The memory value is threaded through the stages by
// the caller and replaced wholesale once a session completes:
//
//	draft := drafter.Draft(prev, session)
//	delta := extractor.Extract(prev, draft)
//	questions := generator.Generate(delta)
//	record := verifier.Verify(questions, session)
//	next := reconciler.Reconcile(draft, record)
//
// Stages reach the model only through a [Generator].
package memory

import (
	"context"
	"strings"

	"github.com/papercomputeco/rsum/pkg/prompt"
)

// Memory is the accumulated summary of every session processed so far.
type Memory string

// Empty is the memory before any session has been processed.
const Empty Memory = prompt.EmptyMemory

// IsBlank reports whether the memory carries no content.
func (m Memory) IsBlank() bool {
	s := strings.TrimSpace(string(m))
	return s == "" || s == string(Empty)
}

func (m Memory) String() string {
	return string(m)
}

// Delta lists the facts a draft adds or changes. The zero value means no
// delta.
type Delta string

// IsEmpty reports whether there is nothing to verify.
func (d Delta) IsEmpty() bool {
	return strings.TrimSpace(string(d)) == ""
}

// Question is one verification question.
type Question string

// Generator sends a rendered prompt to the model and returns its text.
// *gateway.Gateway implements it.
type Generator interface {
	Generate(ctx context.Context, p prompt.Prompt) (string, error)
}

// Package prompt renders the system and user prompts for every stage of the
// memory pipeline. All functions are pure: the same inputs always render the
// same prompt text, which keeps deterministic decoding reproducible.
package prompt

import (
	"fmt"
	"strings"
)

// Stage identifies a pipeline stage. Values are used as metric and event
// labels, so the set is closed.
type Stage string

const (
	StageDraft     Stage = "draft"
	StageDelta     Stage = "delta"
	StageQuestions Stage = "questions"
	StageVerify    Stage = "verify"
	StageReconcile Stage = "reconcile"
	StageResponse  Stage = "response"
)

// Stages lists every stage in pipeline order.
func Stages() []Stage {
	return []Stage{StageDraft, StageDelta, StageQuestions, StageVerify, StageReconcile, StageResponse}
}

// DraftStyle selects the memory draft instruction.
type DraftStyle string

const (
	// DraftPlain asks for a free-form memory of at most 20 sentences.
	DraftPlain DraftStyle = "plain"

	// DraftTagged asks for one tagged fact per line, each with a quote.
	DraftTagged DraftStyle = "tagged"
)

// ParseDraftStyle validates a draft style name. Empty selects DraftPlain.
func ParseDraftStyle(s string) (DraftStyle, error) {
	switch DraftStyle(strings.ToLower(strings.TrimSpace(s))) {
	case "", DraftPlain:
		return DraftPlain, nil
	case DraftTagged:
		return DraftTagged, nil
	default:
		return "", fmt.Errorf("unknown draft style %q (supported: %s, %s)", s, DraftPlain, DraftTagged)
	}
}

// NoChanges is the exact sentinel the delta stage is told to emit when the
// new memory adds nothing.
const NoChanges = "NO CHANGES"

// EmptyMemory is how a blank memory is rendered into prompts.
const EmptyMemory = "none"

// Prompt is one fully rendered model call.
type Prompt struct {
	// Stage is the bounded stage label.
	Stage Stage

	// Task is the human-readable label written to the transcript,
	// e.g. "Memory Generation (S2)".
	Task string

	System string
	User   string
}

func orNone(memory string) string {
	if strings.TrimSpace(memory) == "" {
		return EmptyMemory
	}
	return memory
}

package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Variant selects which experimental arm runs.
type Variant string

const (
	// VariantCoVe drafts, verifies the delta against the session, and
	// reconciles.
	VariantCoVe Variant = "cove"

	// VariantRsum adopts every draft directly. It is the control arm.
	VariantRsum Variant = "rsum"
)

// ErrUnknownVariant is returned for an unrecognized variant name.
var ErrUnknownVariant = errors.New("unknown variant")

// ParseVariant validates a variant name. Empty selects VariantCoVe.
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case "", VariantCoVe:
		return VariantCoVe, nil
	case VariantRsum:
		return VariantRsum, nil
	default:
		return "", fmt.Errorf("%w: %q (supported: %s, %s)", ErrUnknownVariant, s, VariantCoVe, VariantRsum)
	}
}

// Outcome records how a session's memory was fixed.
type Outcome string

const (
	OutcomeNoDelta     Outcome = "adopted_draft_no_delta"
	OutcomeNoQuestions Outcome = "adopted_draft_no_questions"
	OutcomeReconciled  Outcome = "reconciled"
	OutcomeDraft       Outcome = "adopted_draft"
)

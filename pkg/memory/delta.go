package memory

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/papercomputeco/rsum/pkg/prompt"
)

// DefaultNoiseThreshold is the rune length below which a delta is noise.
const DefaultNoiseThreshold = 5

// DeltaExtractor isolates the facts a draft adds over the previous memory.
type DeltaExtractor struct {
	gen            Generator
	noiseThreshold int
}

// NewDeltaExtractor creates an extractor. A threshold <= 0 selects
// DefaultNoiseThreshold.
func NewDeltaExtractor(gen Generator, noiseThreshold int) *DeltaExtractor {
	if noiseThreshold <= 0 {
		noiseThreshold = DefaultNoiseThreshold
	}
	return &DeltaExtractor{gen: gen, noiseThreshold: noiseThreshold}
}

// Extract asks the model for the new or modified facts and normalizes the
// answer. An empty Delta means nothing worth verifying changed.
func (e *DeltaExtractor) Extract(ctx context.Context, prev, draft Memory) (Delta, error) {
	out, err := e.gen.Generate(ctx, prompt.MemoryDiff(string(prev), string(draft)))
	if err != nil {
		return "", err
	}
	return NormalizeDelta(out, e.noiseThreshold), nil
}

// NormalizeDelta maps the no-changes sentinel, in any case, and any text
// shorter than threshold runes to the empty Delta.
func NormalizeDelta(text string, threshold int) Delta {
	if strings.Contains(strings.ToUpper(text), prompt.NoChanges) {
		return ""
	}
	if utf8.RuneCountInString(text) < threshold {
		return ""
	}
	return Delta(text)
}

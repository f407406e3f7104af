package memory

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/papercomputeco/rsum/pkg/dialogue"
	"github.com/papercomputeco/rsum/pkg/prompt"
)

// Verifier answers each question strictly from the current session's text.
type Verifier struct {
	gen         Generator
	concurrency int
}

// NewVerifier creates a Verifier issuing at most concurrency calls at once.
// A value <= 1 verifies sequentially.
func NewVerifier(gen Generator, concurrency int) *Verifier {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Verifier{gen: gen, concurrency: concurrency}
}

// Verify issues one fact-check call per question. The only context given to
// the model is s.Text: never the memory, never other sessions. Answers are
// recorded in question order regardless of completion order.
func (v *Verifier) Verify(ctx context.Context, questions []Question, s dialogue.Session) (*Record, error) {
	answers := make([]string, len(questions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)
	for i, q := range questions {
		g.Go(func() error {
			out, err := v.gen.Generate(gctx, prompt.FactCheck(s.Text, string(q)))
			if err != nil {
				return err
			}
			answers[i] = strings.TrimSpace(out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	record := NewRecord()
	for i, q := range questions {
		record.Set(q, answers[i])
	}
	return record, nil
}

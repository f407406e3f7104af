package memory

import (
	"context"
	"strings"

	"github.com/papercomputeco/rsum/pkg/prompt"
)

// QuestionGenerator turns delta facts into verification questions.
type QuestionGenerator struct {
	gen Generator
}

// NewQuestionGenerator creates a QuestionGenerator.
func NewQuestionGenerator(gen Generator) *QuestionGenerator {
	return &QuestionGenerator{gen: gen}
}

// Generate returns the questions parsed from the model's answer. An empty
// slice is a valid result.
func (g *QuestionGenerator) Generate(ctx context.Context, delta Delta) ([]Question, error) {
	out, err := g.gen.Generate(ctx, prompt.VerificationQuestions(string(delta)))
	if err != nil {
		return nil, err
	}
	return ParseQuestions(out), nil
}

// ParseQuestions keeps every trimmed, non-blank line containing "?".
func ParseQuestions(text string) []Question {
	var questions []Question
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, "?") {
			continue
		}
		questions = append(questions, Question(line))
	}
	return questions
}

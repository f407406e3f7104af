package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/rsum/pkg/prompt"
)

// ScriptedGenerator is a test stage generator keyed by prompt stage. It
// records every prompt so tests can assert exactly which calls were issued.
type ScriptedGenerator struct {
	mu      sync.Mutex
	prompts []prompt.Prompt

	// Replies maps a stage to its answers, consumed in order. When a stage's
	// list runs out the last answer is repeated.
	Replies map[prompt.Stage][]string

	// Answer, when set, takes precedence over Replies.
	Answer func(p prompt.Prompt) (string, error)

	// Fail makes every call for the stage return the error.
	Fail map[prompt.Stage]error

	counts map[prompt.Stage]int
}

// NewScriptedGenerator creates an empty generator.
func NewScriptedGenerator() *ScriptedGenerator {
	return &ScriptedGenerator{
		Replies: make(map[prompt.Stage][]string),
		Fail:    make(map[prompt.Stage]error),
		counts:  make(map[prompt.Stage]int),
	}
}

// On appends scripted answers for a stage and returns the generator.
func (g *ScriptedGenerator) On(stage prompt.Stage, replies ...string) *ScriptedGenerator {
	g.Replies[stage] = append(g.Replies[stage], replies...)
	return g
}

func (g *ScriptedGenerator) Generate(_ context.Context, p prompt.Prompt) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.prompts = append(g.prompts, p)
	if err, ok := g.Fail[p.Stage]; ok {
		return "", err
	}
	if g.Answer != nil {
		return g.Answer(p)
	}

	replies := g.Replies[p.Stage]
	if len(replies) == 0 {
		return "", nil
	}
	i := g.counts[p.Stage]
	g.counts[p.Stage]++
	if i >= len(replies) {
		i = len(replies) - 1
	}
	return replies[i], nil
}

// Prompts returns every recorded prompt in call order.
func (g *ScriptedGenerator) Prompts() []prompt.Prompt {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]prompt.Prompt, len(g.prompts))
	copy(out, g.prompts)
	return out
}

// Calls returns the recorded prompts for one stage.
func (g *ScriptedGenerator) Calls(stage prompt.Stage) []prompt.Prompt {
	var out []prompt.Prompt
	for _, p := range g.Prompts() {
		if p.Stage == stage {
			out = append(out, p)
		}
	}
	return out
}

// Stages returns the stage of every recorded call in order.
func (g *ScriptedGenerator) Stages() []prompt.Stage {
	prompts := g.Prompts()
	out := make([]prompt.Stage, len(prompts))
	for i, p := range prompts {
		out[i] = p.Stage
	}
	return out
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/rsum/pkg/dialogue"
	"github.com/papercomputeco/rsum/pkg/pipeline"
)

var (
	reconstructToolName    = "reconstruct_memory"
	reconstructDescription = "Reconstruct a verified long-term memory from past dialogue sessions and answer the current context with it. Each session is a list of utterance lines such as \"User: ...\" and \"Assistant: ...\"."
)

// ReconstructInput represents the input arguments for the reconstruct_memory tool.
type ReconstructInput struct {
	Sessions       [][]string `json:"sessions,omitempty" jsonschema:"past dialogue sessions in chronological order, each a list of utterance lines"`
	CurrentContext []string   `json:"current_context,omitempty" jsonschema:"the open exchange the final response should answer"`
	Variant        string     `json:"variant,omitempty" jsonschema:"pipeline variant: cove (default) or rsum"`
}

// SessionOutcome reports how one session's memory was fixed.
type SessionOutcome struct {
	Session   int    `json:"session"`
	Outcome   string `json:"outcome"`
	Questions int    `json:"questions"`
}

// ReconstructOutput represents the structured output of a reconstruction.
type ReconstructOutput struct {
	RunID    string           `json:"run_id"`
	Variant  string           `json:"variant"`
	Memory   string           `json:"memory"`
	Response string           `json:"response"`
	Sessions []SessionOutcome `json:"sessions"`
}

// handleReconstruct runs the pipeline synchronously for one tool call.
func (s *Server) handleReconstruct(ctx context.Context, _ *mcp.CallToolRequest, input ReconstructInput) (*mcp.CallToolResult, ReconstructOutput, error) {
	logger := s.config.Logger

	if len(input.CurrentContext) == 0 {
		return errorResult("current_context is required"), ReconstructOutput{}, nil
	}

	variant := s.config.DefaultVariant
	if input.Variant != "" {
		v, err := pipeline.ParseVariant(input.Variant)
		if err != nil {
			return errorResult(err.Error()), ReconstructOutput{}, nil
		}
		variant = v
	}

	executor, ok := s.config.Executors[variant]
	if !ok {
		return errorResult(fmt.Sprintf("variant %q is not served", variant)), ReconstructOutput{}, nil
	}

	logger.Debug("MCP reconstruct request",
		"sessions", len(input.Sessions),
		"variant", string(variant),
	)

	result, err := executor.Run(ctx, dialogue.NewSessions(input.Sessions), dialogue.NewContext(input.CurrentContext))
	if err != nil {
		logger.Error("MCP reconstruct failed", "error", err)
		return errorResult(fmt.Sprintf("Reconstruction failed: %v", err)), ReconstructOutput{}, nil
	}

	output := buildOutput(result)

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to serialize results: %v", err)), ReconstructOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}

func buildOutput(result *pipeline.Result) ReconstructOutput {
	out := ReconstructOutput{
		RunID:    result.RunID,
		Variant:  string(result.Variant),
		Memory:   result.Memory.String(),
		Response: result.Response,
		Sessions: make([]SessionOutcome, 0, len(result.Sessions)),
	}
	for _, t := range result.Sessions {
		out.Sessions = append(out.Sessions, SessionOutcome{
			Session:   t.Session,
			Outcome:   string(t.Outcome),
			Questions: len(t.Questions),
		})
	}
	return out
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}

// Package vertex implements llm.Client for Gemini models using the
// google.golang.org/genai SDK.
//
// With an API key the client talks to the Gemini API. Without one it uses
// the Vertex AI backend, resolving project, location and credentials from
// the environment (GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION and
// application default credentials).
package vertex

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/papercomputeco/rsum/pkg/llm"
)

// Name is the canonical provider name.
const Name = "vertex"

// DefaultTarget is empty: the SDK picks the endpoint for the backend.
const DefaultTarget = ""

// Client implements llm.Client over the genai SDK.
type Client struct {
	client *genai.Client
}

// New creates a client. baseURL overrides the backend endpoint when set.
func New(baseURL, apiKey string, timeout time.Duration) (*Client, error) {
	cc := &genai.ClientConfig{
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if apiKey != "" {
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = apiKey
	} else {
		cc.Backend = genai.BackendVertexAI
	}
	if baseURL != "" {
		cc.HTTPOptions.BaseURL = strings.TrimRight(baseURL, "/") + "/"
	}

	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &Client{client: client}, nil
}

func (c *Client) Name() string {
	return Name
}

func (c *Client) Chat(ctx context.Context, req *llm.ChatRequest, onChunk llm.ChunkFunc) (*llm.ChatResponse, error) {
	contents, config := toContents(req)
	if req.Stream {
		return c.stream(ctx, req.Model, contents, config, onChunk)
	}

	resp, err := c.client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("genai generate content: %w", err)
	}

	out := &llm.ChatResponse{
		Model:      modelName(resp, req.Model),
		Message:    llm.Message{Role: llm.RoleAssistant, Content: resp.Text()},
		StopReason: finishReason(resp),
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = &llm.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return out, nil
}

func (c *Client) stream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig, onChunk llm.ChunkFunc) (*llm.ChatResponse, error) {
	var (
		content    strings.Builder
		stopReason string
	)
	for resp, err := range c.client.Models.GenerateContentStream(ctx, model, contents, config) {
		if err != nil {
			return nil, fmt.Errorf("genai generate content stream: %w", err)
		}

		text := resp.Text()
		content.WriteString(text)
		if r := finishReason(resp); r != "" {
			stopReason = r
		}
		if onChunk != nil {
			onChunk(llm.StreamChunk{Model: model, Content: text, Done: stopReason != ""})
		}
	}

	return &llm.ChatResponse{
		Model:      model,
		Message:    llm.Message{Role: llm.RoleAssistant, Content: content.String()},
		StopReason: stopReason,
	}, nil
}

// toContents maps system messages onto SystemInstruction and the rest onto
// user and model turns.
func toContents(req *llm.ChatRequest) ([]*genai.Content, *genai.GenerateContentConfig) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Options.Temperature)),
		Seed:        genai.Ptr(int32(req.Options.Seed)),
	}

	var (
		system   []string
		contents []*genai.Content
	)
	for _, msg := range req.Messages {
		switch msg.Role {
		case llm.RoleSystem:
			system = append(system, msg.Content)
		case llm.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}
	return contents, config
}

func finishReason(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	return string(resp.Candidates[0].FinishReason)
}

func modelName(resp *genai.GenerateContentResponse, fallback string) string {
	if resp.ModelVersion != "" {
		return resp.ModelVersion
	}
	return fallback
}

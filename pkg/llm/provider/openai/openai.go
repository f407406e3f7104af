// Package openai implements llm.Client for any OpenAI-compatible
// chat completions endpoint using the official openai-go SDK.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/papercomputeco/rsum/pkg/llm"
)

// Name is the canonical provider name.
const Name = "openai"

// DefaultTarget is the public OpenAI API base URL.
const DefaultTarget = "https://api.openai.com/v1"

// ErrNoChoices is returned when the endpoint answers without any choice.
var ErrNoChoices = errors.New("openai response contained no choices")

// Client implements llm.Client over the openai-go SDK.
type Client struct {
	client openai.Client
}

// New creates a client for the endpoint at baseURL. The SDK's built-in
// retries are disabled: a failed call is reported once.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultTarget
	}
	opts := []option.RequestOption{
		option.WithBaseURL(strings.TrimRight(baseURL, "/") + "/"),
		option.WithMaxRetries(0),
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	return &Client{client: openai.NewClient(opts...)}
}

func (c *Client) Name() string {
	return Name
}

func (c *Client) Chat(ctx context.Context, req *llm.ChatRequest, onChunk llm.ChunkFunc) (*llm.ChatResponse, error) {
	params := toParams(req)
	if req.Stream {
		return c.stream(ctx, params, onChunk)
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, ErrNoChoices
	}

	choice := completion.Choices[0]
	return &llm.ChatResponse{
		Model:      completion.Model,
		CreatedAt:  time.Unix(completion.Created, 0),
		Message:    llm.Message{Role: llm.RoleAssistant, Content: choice.Message.Content},
		StopReason: choice.FinishReason,
		Usage: &llm.Usage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		},
	}, nil
}

func (c *Client) stream(ctx context.Context, params openai.ChatCompletionNewParams, onChunk llm.ChunkFunc) (*llm.ChatResponse, error) {
	stream := c.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	var (
		content    strings.Builder
		model      string
		stopReason string
	)
	for stream.Next() {
		chunk := stream.Current()
		model = chunk.Model
		if len(chunk.Choices) == 0 {
			continue
		}

		choice := chunk.Choices[0]
		if choice.FinishReason != "" {
			stopReason = choice.FinishReason
		}
		content.WriteString(choice.Delta.Content)
		if onChunk != nil {
			onChunk(llm.StreamChunk{
				Model:   chunk.Model,
				Content: choice.Delta.Content,
				Done:    choice.FinishReason != "",
			})
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("openai chat stream: %w", err)
	}

	return &llm.ChatResponse{
		Model:      model,
		Message:    llm.Message{Role: llm.RoleAssistant, Content: content.String()},
		StopReason: stopReason,
	}, nil
}

func toParams(req *llm.ChatRequest) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case llm.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case llm.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	return openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    messages,
		Temperature: openai.Float(req.Options.Temperature),
		Seed:        openai.Int(int64(req.Options.Seed)),
	}
}

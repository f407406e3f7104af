// Package anthropic implements llm.Client for the Anthropic Messages API
// using the official anthropic-sdk-go SDK.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/papercomputeco/rsum/pkg/llm"
)

// Name is the canonical provider name.
const Name = "anthropic"

// DefaultTarget is the public Anthropic API base URL.
const DefaultTarget = "https://api.anthropic.com"

// maxTokens caps every reply. The Messages API requires an explicit limit
// and no pipeline stage needs more.
const maxTokens = 4096

// ErrNoText is returned when a reply carries no text block.
var ErrNoText = errors.New("anthropic response contained no text")

// Client implements llm.Client over the anthropic-sdk-go SDK.
type Client struct {
	client anthropic.Client
}

// New creates a client for the endpoint at baseURL. As with the openai
// client, SDK retries are disabled.
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
	return &Client{client: anthropic.NewClient(opts...)}
}

func (c *Client) Name() string {
	return Name
}

// Chat sends one Messages request. The seed option has no Anthropic
// equivalent and is not sent.
func (c *Client) Chat(ctx context.Context, req *llm.ChatRequest, onChunk llm.ChunkFunc) (*llm.ChatResponse, error) {
	params := toParams(req)
	if req.Stream {
		return c.stream(ctx, params, onChunk)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}

	var text strings.Builder
	found := false
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
			found = true
		}
	}
	if !found {
		return nil, ErrNoText
	}

	in, out := int(msg.Usage.InputTokens), int(msg.Usage.OutputTokens)
	return &llm.ChatResponse{
		Model:      string(msg.Model),
		Message:    llm.Message{Role: llm.RoleAssistant, Content: text.String()},
		StopReason: string(msg.StopReason),
		Usage: &llm.Usage{
			PromptTokens:     in,
			CompletionTokens: out,
			TotalTokens:      in + out,
		},
	}, nil
}

func (c *Client) stream(ctx context.Context, params anthropic.MessageNewParams, onChunk llm.ChunkFunc) (*llm.ChatResponse, error) {
	stream := c.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	var (
		content    strings.Builder
		model      string
		stopReason string
	)
	for stream.Next() {
		switch ev := stream.Current().AsAny().(type) {
		case anthropic.MessageStartEvent:
			model = string(ev.Message.Model)
		case anthropic.ContentBlockDeltaEvent:
			if ev.Delta.Text == "" {
				continue
			}
			content.WriteString(ev.Delta.Text)
			if onChunk != nil {
				onChunk(llm.StreamChunk{Model: model, Content: ev.Delta.Text})
			}
		case anthropic.MessageDeltaEvent:
			stopReason = string(ev.Delta.StopReason)
		case anthropic.MessageStopEvent:
			if onChunk != nil {
				onChunk(llm.StreamChunk{Model: model, Done: true})
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("anthropic messages stream: %w", err)
	}

	return &llm.ChatResponse{
		Model:      model,
		Message:    llm.Message{Role: llm.RoleAssistant, Content: content.String()},
		StopReason: stopReason,
	}, nil
}

// toParams moves system messages into the top-level system field, which is
// where the Messages API expects them.
func toParams(req *llm.ChatRequest) anthropic.MessageNewParams {
	var (
		system   []anthropic.TextBlockParam
		messages []anthropic.MessageParam
	)
	for _, msg := range req.Messages {
		switch msg.Role {
		case llm.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
		case llm.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	return anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   maxTokens,
		System:      system,
		Messages:    messages,
		Temperature: anthropic.Float(req.Options.Temperature),
	}
}

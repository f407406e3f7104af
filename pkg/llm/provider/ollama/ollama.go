package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/rsum/pkg/llm"
)

// Name is the canonical provider name.
const Name = "ollama"

// DefaultTarget is the local Ollama endpoint.
const DefaultTarget = "http://localhost:11434"

// ErrIncompleteStream is returned when a streamed response ends without a
// chunk carrying done:true.
var ErrIncompleteStream = errors.New("ollama stream ended before done")

// Client implements llm.Client for Ollama's /api/chat endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates an Ollama client. A zero timeout leaves requests bounded only by
// the caller's context.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultTarget
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string {
	return Name
}

func (c *Client) Chat(ctx context.Context, req *llm.ChatRequest, onChunk llm.ChunkFunc) (*llm.ChatResponse, error) {
	payload, err := json.Marshal(toOllamaRequest(req))
	if err != nil {
		return nil, fmt.Errorf("marshal ollama request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create ollama request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if req.Stream {
		return readStream(resp.Body, onChunk)
	}

	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode ollama response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("ollama error: %s", out.Error)
	}
	return toChatResponse(&out, out.Message.Content), nil
}

// readStream consumes NDJSON chunks until one reports done.
func readStream(body io.Reader, onChunk llm.ChunkFunc) (*llm.ChatResponse, error) {
	var content strings.Builder
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var chunk ollamaResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			return nil, fmt.Errorf("decode ollama stream chunk: %w", err)
		}
		if chunk.Error != "" {
			return nil, fmt.Errorf("ollama error: %s", chunk.Error)
		}

		content.WriteString(chunk.Message.Content)
		if onChunk != nil {
			onChunk(llm.StreamChunk{
				Model:   chunk.Model,
				Content: chunk.Message.Content,
				Done:    chunk.Done,
			})
		}

		if chunk.Done {
			return toChatResponse(&chunk, content.String()), nil
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ollama stream: %w", err)
	}
	return nil, ErrIncompleteStream
}

func toOllamaRequest(req *llm.ChatRequest) *ollamaRequest {
	messages := make([]ollamaMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, ollamaMessage{Role: msg.Role, Content: msg.Content})
	}
	return &ollamaRequest{
		Model:    req.Model,
		Messages: messages,
		Stream:   req.Stream,
		Options: ollamaOptions{
			Temperature: req.Options.Temperature,
			Seed:        req.Options.Seed,
			NumCtx:      req.Options.NumCtx,
		},
	}
}

func toChatResponse(resp *ollamaResponse, content string) *llm.ChatResponse {
	return &llm.ChatResponse{
		Model:      resp.Model,
		CreatedAt:  resp.CreatedAt,
		Message:    llm.Message{Role: llm.RoleAssistant, Content: content},
		StopReason: resp.DoneReason,
		Usage: &llm.Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
			TotalDurationNs:  resp.TotalDuration,
		},
	}
}

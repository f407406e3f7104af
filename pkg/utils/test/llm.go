// Package testutils provides scripted model fakes shared by package tests.
package testutils

import (
	"context"
	"strings"
	"sync"

	"github.com/papercomputeco/rsum/pkg/llm"
)

// MockClient is a test llm.Client that records requests and answers with a
// configurable function.
type MockClient struct {
	mu       sync.Mutex
	requests []*llm.ChatRequest

	// Reply produces the model text for a request. Defaults to echoing
	// nothing.
	Reply func(req *llm.ChatRequest) (string, error)
}

// NewMockClient creates a client that answers every request with reply.
func NewMockClient(reply string) *MockClient {
	return &MockClient{
		Reply: func(*llm.ChatRequest) (string, error) { return reply, nil },
	}
}

func (m *MockClient) Name() string {
	return "mock"
}

// Chat records the request and answers via Reply. Streamed requests receive
// the reply split on spaces, one chunk per word.
func (m *MockClient) Chat(_ context.Context, req *llm.ChatRequest, onChunk llm.ChunkFunc) (*llm.ChatResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	text := ""
	if m.Reply != nil {
		var err error
		text, err = m.Reply(req)
		if err != nil {
			return nil, err
		}
	}

	if req.Stream && onChunk != nil {
		words := strings.SplitAfter(text, " ")
		for i, w := range words {
			onChunk(llm.StreamChunk{Model: req.Model, Content: w, Done: i == len(words)-1})
		}
	}

	return &llm.ChatResponse{
		Model:   req.Model,
		Message: llm.Message{Role: llm.RoleAssistant, Content: text},
	}, nil
}

// Requests returns a copy of every recorded request in arrival order.
func (m *MockClient) Requests() []*llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*llm.ChatRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

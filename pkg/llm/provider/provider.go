// Package provider selects an llm.Client implementation by name.
package provider

import (
	"errors"
	"fmt"
	"time"

	"github.com/papercomputeco/rsum/pkg/llm"
	"github.com/papercomputeco/rsum/pkg/llm/provider/anthropic"
	"github.com/papercomputeco/rsum/pkg/llm/provider/ollama"
	"github.com/papercomputeco/rsum/pkg/llm/provider/openai"
	"github.com/papercomputeco/rsum/pkg/llm/provider/vertex"
)

// Supported provider type constants
const (
	Ollama    = ollama.Name
	OpenAI    = openai.Name
	Anthropic = anthropic.Name
	Vertex    = vertex.Name
)

// ErrUnknownProvider is returned by New for an unrecognized provider name.
var ErrUnknownProvider = errors.New("unknown provider")

// Config describes how to reach a model endpoint.
type Config struct {
	// Provider name, one of SupportedProviders()
	Provider string

	// Target is the endpoint base URL. Empty selects the provider default.
	Target string

	// APIKey authenticates against hosted providers.
	APIKey string

	// Timeout bounds a single request. Zero means no client-side timeout.
	Timeout time.Duration
}

// SupportedProviders returns the list of all supported provider type names.
func SupportedProviders() []string {
	return []string{Ollama, OpenAI, Anthropic, Vertex}
}

// DefaultTarget returns the default endpoint for a provider, or "" when the
// provider is unknown or lets its SDK choose.
func DefaultTarget(providerType string) string {
	switch providerType {
	case Ollama:
		return ollama.DefaultTarget
	case OpenAI:
		return openai.DefaultTarget
	case Anthropic:
		return anthropic.DefaultTarget
	default:
		return ""
	}
}

// ResolveTarget returns the endpoint to use for providerType. An empty target
// selects the provider default. So does the Ollama default left in place for
// any other provider, which lets --provider be switched on its own.
func ResolveTarget(providerType, target string) string {
	if target == "" || (providerType != Ollama && target == ollama.DefaultTarget) {
		return DefaultTarget(providerType)
	}
	return target
}

// New creates a new llm.Client for the configured provider.
func New(cfg Config) (llm.Client, error) {
	switch cfg.Provider {
	case Ollama:
		return ollama.New(cfg.Target, cfg.Timeout), nil
	case OpenAI:
		return openai.New(cfg.Target, cfg.APIKey, cfg.Timeout), nil
	case Anthropic:
		return anthropic.New(cfg.Target, cfg.APIKey, cfg.Timeout), nil
	case Vertex:
		return vertex.New(cfg.Target, cfg.APIKey, cfg.Timeout)
	default:
		return nil, fmt.Errorf("%w: %q (supported: %v)", ErrUnknownProvider, cfg.Provider, SupportedProviders())
	}
}

// Package aiprovider abstracts the AI backends (Anthropic, OpenAI-compatible,
// and a local/offline stub) the AI request pipeline dispatches to, behind a
// uniform request/response shape and a circuit breaker per provider.
package aiprovider

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// GenerateTextRequest asks a provider for free-form text completion.
type GenerateTextRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// ClassifyTextRequest asks a provider to classify text into one of Labels.
type ClassifyTextRequest struct {
	Model  string   `json:"model"`
	Text   string   `json:"text"`
	Labels []string `json:"labels"`
}

// ClassifyTextResponse reports the chosen label and a confidence score.
//
// Confidence is a hardcoded placeholder (0.9 for the chosen label, 0.1
// split across the rest) rather than a model-reported probability -
// carried over as-is rather than invented, since no provider in this
// pipeline exposes calibrated classification confidence today.
type ClassifyTextResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// SummarizeTextRequest asks a provider to summarize text to roughly
// MaxSentences sentences.
type SummarizeTextRequest struct {
	Model         string `json:"model"`
	Text          string `json:"text"`
	MaxSentences  int    `json:"max_sentences,omitempty"`
}

// ExtractEntitiesRequest asks a provider to extract named entities from
// text, optionally restricted to EntityTypes.
type ExtractEntitiesRequest struct {
	Model       string   `json:"model"`
	Text        string   `json:"text"`
	EntityTypes []string `json:"entity_types,omitempty"`
}

// Entity is a single extracted named entity.
type Entity struct {
	Text  string `json:"text"`
	Type  string `json:"type"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// GenerateTextResponse is the result of a text generation call.
type GenerateTextResponse struct {
	Text             string `json:"text"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
}

// Provider is implemented by each AI backend.
type Provider interface {
	Name() string
	GenerateText(ctx context.Context, req *GenerateTextRequest) (*GenerateTextResponse, error)
	ClassifyText(ctx context.Context, req *ClassifyTextRequest) (*ClassifyTextResponse, error)
	SummarizeText(ctx context.Context, req *SummarizeTextRequest) (string, error)
	ExtractEntities(ctx context.Context, req *ExtractEntitiesRequest) ([]Entity, error)
}

// Registry holds configured AI providers, keyed by name ("anthropic",
// "openai", "local").
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty AI provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds an AI provider.
func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("ai provider already registered: %s", name)
	}
	r.providers[name] = p
	return nil
}

// Get retrieves a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("ai provider not found: %s", name)
	}
	return p, nil
}

// ModelRegistry resolves a model id (e.g. "claude-3-5-sonnet", "gpt-4o") to
// the name of the Provider that serves it, step 1-2 of the AI request
// pipeline ("resolve model by id in the registry; resolve provider for
// model").
type ModelRegistry map[string]string

// DefaultModelRegistry maps the models priced in DefaultCostTable to the
// provider that serves them.
func DefaultModelRegistry() ModelRegistry {
	return ModelRegistry{
		"claude-3-5-sonnet": "anthropic",
		"claude-3-haiku":    "anthropic",
		"gpt-4o":            "openai",
		"gpt-4o-mini":       "openai",
		"local":             "local",
	}
}

// ResolveProvider returns the provider name registered for model, or an
// error if the model isn't in the registry.
func (m ModelRegistry) ResolveProvider(model string) (string, error) {
	name, ok := m[model]
	if !ok {
		return "", fmt.Errorf("model not found in registry: %s", model)
	}
	return name, nil
}

// List returns registered provider names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

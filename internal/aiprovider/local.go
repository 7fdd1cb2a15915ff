package aiprovider

import (
	"context"
	"strings"
)

// LocalProvider is a deterministic, offline stand-in for a real AI backend,
// used in development and tests so the AI request pipeline can run without
// network access or API keys.
type LocalProvider struct{}

// NewLocalProvider constructs the local/offline AI provider.
func NewLocalProvider() *LocalProvider { return &LocalProvider{} }

func (p *LocalProvider) Name() string { return "local" }

func (p *LocalProvider) GenerateText(ctx context.Context, req *GenerateTextRequest) (*GenerateTextResponse, error) {
	text := "[local] " + req.Prompt
	return &GenerateTextResponse{
		Text:             text,
		PromptTokens:     CountTokens(req.Model, req.Prompt),
		CompletionTokens: CountTokens(req.Model, text),
	}, nil
}

func (p *LocalProvider) ClassifyText(ctx context.Context, req *ClassifyTextRequest) (*ClassifyTextResponse, error) {
	if len(req.Labels) == 0 {
		return &ClassifyTextResponse{}, nil
	}
	return &ClassifyTextResponse{Label: req.Labels[0], Confidence: 0.9}, nil
}

func (p *LocalProvider) SummarizeText(ctx context.Context, req *SummarizeTextRequest) (string, error) {
	words := strings.Fields(req.Text)
	limit := 20
	if len(words) < limit {
		limit = len(words)
	}
	return strings.Join(words[:limit], " "), nil
}

func (p *LocalProvider) ExtractEntities(ctx context.Context, req *ExtractEntitiesRequest) ([]Entity, error) {
	var entities []Entity
	for _, word := range strings.Fields(req.Text) {
		if len(word) > 0 && strings.ToUpper(word[:1]) == word[:1] {
			entities = append(entities, Entity{Text: word, Type: "unknown"})
		}
	}
	return entities, nil
}

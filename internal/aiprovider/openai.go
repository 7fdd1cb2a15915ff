package aiprovider

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAIProvider generates text through langchaingo's OpenAI-compatible
// client, so the same adapter also serves self-hosted OpenAI-API-compatible
// backends by overriding baseURL.
type OpenAIProvider struct {
	llm *openai.LLM
}

// NewOpenAIProvider constructs a provider authenticated with apiKey,
// optionally targeting a non-default baseURL (e.g. Azure OpenAI or a local
// OpenAI-compatible gateway).
func NewOpenAIProvider(apiKey, baseURL string) (*OpenAIProvider, error) {
	opts := []openai.Option{openai.WithToken(apiKey)}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("construct openai client: %w", err)
	}
	return &OpenAIProvider{llm: llm}, nil
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) GenerateText(ctx context.Context, req *GenerateTextRequest) (*GenerateTextResponse, error) {
	opts := []llms.CallOption{llms.WithModel(req.Model)}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(req.Temperature))
	}

	text, err := llms.GenerateFromSinglePrompt(ctx, p.llm, req.Prompt, opts...)
	if err != nil {
		return nil, fmt.Errorf("openai generate text: %w", err)
	}

	return &GenerateTextResponse{
		Text:             text,
		PromptTokens:     CountTokens(req.Model, req.Prompt),
		CompletionTokens: CountTokens(req.Model, text),
	}, nil
}

func (p *OpenAIProvider) ClassifyText(ctx context.Context, req *ClassifyTextRequest) (*ClassifyTextResponse, error) {
	prompt := fmt.Sprintf("Classify the following text into exactly one of these labels: %s.\nRespond with only the label.\n\nText: %s",
		strings.Join(req.Labels, ", "), req.Text)

	resp, err := p.GenerateText(ctx, &GenerateTextRequest{Model: req.Model, Prompt: prompt, MaxTokens: 16})
	if err != nil {
		return nil, err
	}

	chosen := strings.TrimSpace(resp.Text)
	for _, label := range req.Labels {
		if strings.EqualFold(chosen, label) {
			chosen = label
			break
		}
	}

	return &ClassifyTextResponse{Label: chosen, Confidence: 0.9}, nil
}

func (p *OpenAIProvider) SummarizeText(ctx context.Context, req *SummarizeTextRequest) (string, error) {
	maxSentences := req.MaxSentences
	if maxSentences <= 0 {
		maxSentences = 3
	}
	prompt := fmt.Sprintf("Summarize the following text in at most %d sentences:\n\n%s", maxSentences, req.Text)

	resp, err := p.GenerateText(ctx, &GenerateTextRequest{Model: req.Model, Prompt: prompt, MaxTokens: 512})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (p *OpenAIProvider) ExtractEntities(ctx context.Context, req *ExtractEntitiesRequest) ([]Entity, error) {
	prompt := fmt.Sprintf("List named entities in the following text as \"text|type\" pairs, one per line:\n\n%s", req.Text)

	resp, err := p.GenerateText(ctx, &GenerateTextRequest{Model: req.Model, Prompt: prompt, MaxTokens: 512})
	if err != nil {
		return nil, err
	}

	var entities []Entity
	for _, line := range strings.Split(resp.Text, "\n") {
		line = strings.TrimSpace(line)
		parts := strings.SplitN(line, "|", 2)
		if len(parts) != 2 {
			continue
		}
		entities = append(entities, Entity{Text: strings.TrimSpace(parts[0]), Type: strings.TrimSpace(parts[1])})
	}
	return entities, nil
}

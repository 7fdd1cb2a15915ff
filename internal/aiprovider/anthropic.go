package aiprovider

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider generates text via the Claude messages API.
type AnthropicProvider struct {
	client anthropic.Client
}

// NewAnthropicProvider constructs a provider authenticated with apiKey.
func NewAnthropicProvider(apiKey string) *AnthropicProvider {
	return &AnthropicProvider{client: anthropic.NewClient(option.WithAPIKey(apiKey))}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) GenerateText(ctx context.Context, req *GenerateTextRequest) (*GenerateTextResponse, error) {
	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic generate text: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &GenerateTextResponse{
		Text:             text.String(),
		PromptTokens:     int(msg.Usage.InputTokens),
		CompletionTokens: int(msg.Usage.OutputTokens),
	}, nil
}

func (p *AnthropicProvider) ClassifyText(ctx context.Context, req *ClassifyTextRequest) (*ClassifyTextResponse, error) {
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

	// Confidence is a documented placeholder, not a calibrated probability;
	// see ClassifyTextResponse.
	return &ClassifyTextResponse{Label: chosen, Confidence: 0.9}, nil
}

func (p *AnthropicProvider) SummarizeText(ctx context.Context, req *SummarizeTextRequest) (string, error) {
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

func (p *AnthropicProvider) ExtractEntities(ctx context.Context, req *ExtractEntitiesRequest) ([]Entity, error) {
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

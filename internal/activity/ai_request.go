package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adxcore/orchestrator/internal/aiprovider"
	"github.com/adxcore/orchestrator/internal/quota"
)

// AIRequestInput is one call into the AI request pipeline: resolve model,
// resolve provider, check capability quota, dispatch, record usage.
type AIRequestInput struct {
	TenantID   string `json:"tenant_id"`
	UserID     string `json:"user_id"`
	Capability string `json:"capability"`
	Model      string `json:"model"`
	Prompt     string `json:"prompt,omitempty"`
	Text       string `json:"text,omitempty"`
	Labels     []string `json:"labels,omitempty"`
	EntityTypes []string `json:"entity_types,omitempty"`
	MaxTokens  int    `json:"max_tokens,omitempty"`
}

// AIRequestOutput is the pipeline's result plus the usage it recorded.
type AIRequestOutput struct {
	Text             string              `json:"text,omitempty"`
	Label            string              `json:"label,omitempty"`
	Confidence       float64             `json:"confidence,omitempty"`
	Entities         []aiprovider.Entity `json:"entities,omitempty"`
	PromptTokens     int                 `json:"prompt_tokens"`
	CompletionTokens int                 `json:"completion_tokens"`
	EstimatedCostUSD float64             `json:"estimated_cost_usd"`
}

// AIRequest implements the five-step AI request pipeline as a single
// activity: the steps are too tightly coupled (quota check must see the
// same model/capability the dispatch uses) to split across activities
// without re-deriving state.
type AIRequest struct {
	models    aiprovider.ModelRegistry
	providers *aiprovider.Registry
	costs     aiprovider.CostTable
	quota     *quota.Tracker
}

// NewAIRequest constructs the ai_request activity.
func NewAIRequest(models aiprovider.ModelRegistry, providers *aiprovider.Registry, costs aiprovider.CostTable, tracker *quota.Tracker) *AIRequest {
	return &AIRequest{models: models, providers: providers, costs: costs, quota: tracker}
}

func (a *AIRequest) Name() string { return "ai_request" }

func (a *AIRequest) DefaultRetryPolicy() RetryPolicy {
	return DefaultRetryPolicy()
}

func (a *AIRequest) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in AIRequestInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("decode ai_request input: %w", err)
	}

	providerName, err := a.models.ResolveProvider(in.Model)
	if err != nil {
		return nil, err
	}
	provider, err := a.providers.Get(providerName)
	if err != nil {
		return nil, fmt.Errorf("resolve ai provider: %w", err)
	}

	estimatedTokens := aiprovider.CountTokens(in.Model, in.Prompt+in.Text)
	if err := a.quota.CheckAIQuota(ctx, in.TenantID, in.Capability, estimatedTokens); err != nil {
		return nil, err
	}

	requestAt := time.Now().UTC()
	out := AIRequestOutput{}
	var promptTokens, completionTokens int
	var success = true
	var errCode string

	switch in.Capability {
	case "text_classification":
		resp, err := provider.ClassifyText(ctx, &aiprovider.ClassifyTextRequest{Model: in.Model, Text: in.Text, Labels: in.Labels})
		if err != nil {
			success, errCode = false, "provider_error"
		} else {
			out.Label, out.Confidence = resp.Label, resp.Confidence
		}
		promptTokens = aiprovider.CountTokens(in.Model, in.Text)
	case "text_summarization":
		text, err := provider.SummarizeText(ctx, &aiprovider.SummarizeTextRequest{Model: in.Model, Text: in.Text})
		if err != nil {
			success, errCode = false, "provider_error"
		} else {
			out.Text = text
			completionTokens = aiprovider.CountTokens(in.Model, text)
		}
		promptTokens = aiprovider.CountTokens(in.Model, in.Text)
	case "entity_extraction":
		entities, err := provider.ExtractEntities(ctx, &aiprovider.ExtractEntitiesRequest{Model: in.Model, Text: in.Text, EntityTypes: in.EntityTypes})
		if err != nil {
			success, errCode = false, "provider_error"
		} else {
			out.Entities = entities
		}
		promptTokens = aiprovider.CountTokens(in.Model, in.Text)
	default: // text_generation
		resp, err := provider.GenerateText(ctx, &aiprovider.GenerateTextRequest{Model: in.Model, Prompt: in.Prompt, MaxTokens: in.MaxTokens})
		if err != nil {
			success, errCode = false, "provider_error"
		} else {
			out.Text = resp.Text
			promptTokens, completionTokens = resp.PromptTokens, resp.CompletionTokens
		}
	}

	out.PromptTokens, out.CompletionTokens = promptTokens, completionTokens
	out.EstimatedCostUSD = a.costs.EstimateCostUSD(in.Model, promptTokens, completionTokens)

	recErr := a.quota.RecordUsage(ctx, quota.UsageRecord{
		TenantID:         in.TenantID,
		UserID:           in.UserID,
		Model:            in.Model,
		Capability:       in.Capability,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		EstimatedCostUSD: out.EstimatedCostUSD,
		RequestAt:        requestAt,
		ResponseAt:       time.Now().UTC(),
		Success:          success,
		ErrorCode:        errCode,
	})
	if recErr != nil {
		return nil, fmt.Errorf("record ai usage: %w", recErr)
	}
	if !success {
		return nil, fmt.Errorf("ai provider %s failed for capability %s", providerName, in.Capability)
	}

	return json.Marshal(out)
}

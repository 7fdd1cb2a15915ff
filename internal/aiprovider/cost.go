package aiprovider

import (
	"github.com/spf13/viper"
)

// ModelRate is the per-million-token cost for one model.
type ModelRate struct {
	PromptPerMillionUSD     float64
	CompletionPerMillionUSD float64
}

// CostTable maps model name to its per-token pricing. It is sourced from
// viper configuration rather than hardcoded, so pricing can be updated
// without a redeploy; DefaultCostTable supplies the starting rates.
type CostTable map[string]ModelRate

// DefaultCostTable returns the baseline per-token rates.
func DefaultCostTable() CostTable {
	return CostTable{
		"claude-3-5-sonnet": {PromptPerMillionUSD: 3.00, CompletionPerMillionUSD: 15.00},
		"claude-3-haiku":    {PromptPerMillionUSD: 0.25, CompletionPerMillionUSD: 1.25},
		"gpt-4o":            {PromptPerMillionUSD: 2.50, CompletionPerMillionUSD: 10.00},
		"gpt-4o-mini":       {PromptPerMillionUSD: 0.15, CompletionPerMillionUSD: 0.60},
		"local":             {PromptPerMillionUSD: 0, CompletionPerMillionUSD: 0},
	}
}

// LoadCostTable reads ai.cost_table.<model>.prompt_per_million_usd /
// completion_per_million_usd overrides from viper, falling back to
// DefaultCostTable for any model not present in configuration.
func LoadCostTable(v *viper.Viper) CostTable {
	table := DefaultCostTable()
	if v == nil {
		return table
	}

	raw := v.GetStringMap("ai.cost_table")
	for model := range raw {
		prompt := v.GetFloat64("ai.cost_table." + model + ".prompt_per_million_usd")
		completion := v.GetFloat64("ai.cost_table." + model + ".completion_per_million_usd")
		table[model] = ModelRate{PromptPerMillionUSD: prompt, CompletionPerMillionUSD: completion}
	}
	return table
}

// EstimateCostUSD computes the dollar cost of a request/response token pair
// for the given model.
func (t CostTable) EstimateCostUSD(model string, promptTokens, completionTokens int) float64 {
	rate, ok := t[model]
	if !ok {
		return 0
	}
	return float64(promptTokens)/1_000_000*rate.PromptPerMillionUSD +
		float64(completionTokens)/1_000_000*rate.CompletionPerMillionUSD
}

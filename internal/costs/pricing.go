package costs

// Pricing computes monetary cost from token usage. Rates are USD per 1,000
// tokens; zero rates meter usage without attributing cost, which keeps
// accounting working for units whose pricing is unknown.
type Pricing struct {
	PromptPer1K     float64 `toml:"prompt_per_1k" json:"prompt_per_1k"`
	CompletionPer1K float64 `toml:"completion_per_1k" json:"completion_per_1k"`
}

// Cost returns the USD cost for the given token counts.
func (p Pricing) Cost(promptTokens, completionTokens int) float64 {
	return float64(promptTokens)/1000*p.PromptPer1K +
		float64(completionTokens)/1000*p.CompletionPer1K
}
